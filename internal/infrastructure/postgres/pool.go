package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Tenancy-api/pkg/config"
)

// ErrSchemaNotReady la base responde pero no tiene el catálogo de planes (faltan migraciones).
var ErrSchemaNotReady = errors.New("esquema sin migrar: ejecute `admin migrate up` o active DB_AUTO_MIGRATE")

// NewPool abre el pool, verifica la conexión y que el esquema esté migrado.
// appName se envía como application_name para identificar las sesiones en pg_stat_activity.
func NewPool(ctx context.Context, cfg config.DBConfig, appName string) (*pgxpool.Pool, error) {
	poolConfig, err := newPoolConfig(dsnPreferringIPv4(cfg), appName)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("crear pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}
	if err := checkSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// newPoolConfig límites del pool y dial IPv4. Las transacciones son cortas (una por operación),
// por eso el tope de conexiones es moderado.
func newPoolConfig(dsn, appName string) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}
	if appName != "" {
		pc.ConnConfig.RuntimeParams["application_name"] = appName
	}
	pc.ConnConfig.DialFunc = dialIPv4
	pc.MaxConns = 20
	pc.MinConns = 2
	pc.MaxConnLifetime = time.Hour
	pc.MaxConnIdleTime = 15 * time.Minute
	pc.HealthCheckPeriod = time.Minute
	return pc, nil
}

// checkSchema los planes de sistema los siembra la migración inicial; sin ellos nada funciona.
func checkSchema(ctx context.Context, q Querier) error {
	var n int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM plans WHERE is_system`).Scan(&n); err != nil {
		if pgCode(err) == "42P01" { // undefined_table
			return ErrSchemaNotReady
		}
		return fmt.Errorf("verificar esquema: %w", err)
	}
	if n == 0 {
		return ErrSchemaNotReady
	}
	return nil
}

// dsnPreferringIPv4 DATABASE_URL o el DSN armado, con el host sustituido por su IPv4 si existe
// (en Docker suele faltar IPv6 y algunos proveedores resuelven solo AAAA).
func dsnPreferringIPv4(cfg config.DBConfig) string {
	if cfg.DatabaseURL != "" {
		return databaseURLWithIPv4(cfg.DatabaseURL)
	}
	if ipv4, err := lookupIPv4(cfg.Host); err == nil {
		cfg.Host = ipv4
	}
	return cfg.DSN()
}

func dialIPv4(ctx context.Context, network, addr string) (net.Conn, error) {
	var d net.Dialer
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	ipv4, err := lookupIPv4(host)
	if err != nil {
		return d.DialContext(ctx, network, addr)
	}
	return d.DialContext(ctx, "tcp4", net.JoinHostPort(ipv4, port))
}

// publicResolver respaldo cuando el DNS del contenedor solo devuelve IPv6.
var publicResolver = &net.Resolver{
	PreferGo: true,
	Dial: func(ctx context.Context, _, _ string) (net.Conn, error) {
		var d net.Dialer
		return d.DialContext(ctx, "udp", "8.8.8.8:53")
	},
}

func lookupIPv4(host string) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		if ip.To4() != nil {
			return host, nil
		}
		return "", errors.New("es IPv6")
	}
	for _, r := range []*net.Resolver{net.DefaultResolver, publicResolver} {
		if ip, err := lookupIPv4With(r, host); err == nil {
			return ip, nil
		}
	}
	return "", fmt.Errorf("sin IPv4 para %q", host)
}

func lookupIPv4With(r *net.Resolver, host string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ips, err := r.LookupIP(ctx, "ip4", host)
	if err != nil {
		return "", err
	}
	for _, ip := range ips {
		if ip.To4() != nil {
			return ip.String(), nil
		}
	}
	return "", errors.New("no hay IPv4")
}

func databaseURLWithIPv4(databaseURL string) string {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return databaseURL
	}
	port := u.Port()
	if port == "" {
		port = "5432"
	}
	ipv4, err := lookupIPv4(u.Hostname())
	if err != nil {
		return databaseURL
	}
	u.Host = net.JoinHostPort(ipv4, port)
	return u.String()
}
