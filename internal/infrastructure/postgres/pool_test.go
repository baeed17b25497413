package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPoolConfig_ApplicationName(t *testing.T) {
	pc, err := newPoolConfig("postgres://u:p@127.0.0.1:5432/tenancy?sslmode=disable", "tenancy-api")
	require.NoError(t, err)
	assert.Equal(t, "tenancy-api", pc.ConnConfig.RuntimeParams["application_name"])
	assert.Equal(t, int32(20), pc.MaxConns)
	assert.NotNil(t, pc.ConnConfig.DialFunc)

	_, err = newPoolConfig("::no es un dsn::", "x")
	assert.Error(t, err)
}

func TestDatabaseURLWithIPv4_LiteralesSinDNS(t *testing.T) {
	assert.Equal(t, "postgres://u:p@127.0.0.1:5432/db", databaseURLWithIPv4("postgres://u:p@127.0.0.1/db"),
		"sin puerto se asume 5432")
	v6 := "postgres://u:p@[::1]:5432/db"
	assert.Equal(t, v6, databaseURLWithIPv4(v6), "IPv6 literal se deja igual")
}

// ── checkSchema ──────────────────────────────────────────────────────────────

type countRow struct {
	n   int
	err error
}

func (r countRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*int) = r.n
	return nil
}

type rowQuerier struct {
	Querier
	row countRow
}

func (q rowQuerier) QueryRow(context.Context, string, ...any) pgx.Row { return q.row }

func TestCheckSchema(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, checkSchema(ctx, rowQuerier{row: countRow{n: 3}}))
	assert.ErrorIs(t, checkSchema(ctx, rowQuerier{row: countRow{n: 0}}), ErrSchemaNotReady)
	assert.ErrorIs(t, checkSchema(ctx, rowQuerier{row: countRow{err: &pgconn.PgError{Code: "42P01"}}}), ErrSchemaNotReady)

	boom := errors.New("conexión perdida")
	err := checkSchema(ctx, rowQuerier{row: countRow{err: boom}})
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrSchemaNotReady)
}
