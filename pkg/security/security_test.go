package security_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Tenancy-api/pkg/security"
)

func TestNewToken_AleatorioYUrlSafe(t *testing.T) {
	a, err := security.NewToken()
	require.NoError(t, err)
	b, err := security.NewToken()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Len(t, a, 43, "32 bytes en base64url sin padding")
	assert.NotContains(t, a, "+")
	assert.NotContains(t, a, "/")
}

func TestHashToken_Determinista(t *testing.T) {
	assert.Equal(t, security.HashToken("abc"), security.HashToken("abc"))
	assert.NotEqual(t, security.HashToken("abc"), security.HashToken("abd"))
	// SHA-256("abc") en base64
	assert.Equal(t, "ungWv48Bz+pBQUDeXa4iI7ADYaOWF3qctBD/YfIAFa0=", security.HashToken("abc"))
}

func TestPassword_HashYVerificacion(t *testing.T) {
	hash, err := security.HashPassword("secreto-123")
	require.NoError(t, err)

	assert.NotEqual(t, "secreto-123", hash)
	assert.True(t, security.CheckPassword(hash, "secreto-123"))
	assert.False(t, security.CheckPassword(hash, "otro"))
}
