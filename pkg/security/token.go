package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// tokenBytes longitud en bytes de los tokens opacos (256 bits).
const tokenBytes = 32

// NewToken genera un token opaco aleatorio (base64url sin padding).
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("security: generar token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashToken hash determinista (SHA-256, base64) de un token en claro. Es lo único que se persiste.
func HashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return base64.StdEncoding.EncodeToString(sum[:])
}
