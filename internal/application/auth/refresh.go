package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Tenancy-api/internal/domain"
	"github.com/jhoicas/Tenancy-api/internal/domain/entity"
	"github.com/jhoicas/Tenancy-api/internal/domain/repository"
	"github.com/jhoicas/Tenancy-api/pkg/security"
)

// RefreshTokenService emite, rota y revoca refresh tokens.
// Trabaja sobre el repositorio que recibe, así que participa de la transacción del llamador.
type RefreshTokenService struct {
	ttl time.Duration
	now func() time.Time
}

// NewRefreshTokenService construye el servicio con la vida configurada de los tokens.
func NewRefreshTokenService(ttl time.Duration) *RefreshTokenService {
	return &RefreshTokenService{ttl: ttl, now: time.Now}
}

// SetClock reemplaza el reloj (tests).
func (s *RefreshTokenService) SetClock(now func() time.Time) { s.now = now }

// Issue crea un token para userID y devuelve el valor en claro y su expiración.
func (s *RefreshTokenService) Issue(ctx context.Context, repo repository.RefreshTokenRepository, userID string) (string, time.Time, error) {
	plain, err := security.NewToken()
	if err != nil {
		return "", time.Time{}, err
	}
	now := s.now().UTC()
	tok := &entity.RefreshToken{
		ID:        uuid.New().String(),
		UserID:    userID,
		TokenHash: security.HashToken(plain),
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := repo.Create(ctx, tok); err != nil {
		return "", time.Time{}, fmt.Errorf("issue refresh token: %w", err)
	}
	return plain, tok.ExpiresAt, nil
}

// Rotate revoca el token presentado y emite uno nuevo para el mismo usuario.
// Un token expirado se rechaza sin tocarlo. Si otra rotación gana la carrera, Revoke falla
// con ErrInvalidRefreshToken y el llamador debe descartar la transacción.
func (s *RefreshTokenService) Rotate(ctx context.Context, repo repository.RefreshTokenRepository, plain string) (userID, newPlain string, expiresAt time.Time, err error) {
	tok, err := repo.GetActiveByHash(ctx, security.HashToken(plain))
	if err != nil {
		return "", "", time.Time{}, err
	}
	if tok == nil {
		return "", "", time.Time{}, domain.ErrInvalidRefreshToken
	}
	now := s.now().UTC()
	if tok.IsExpired(now) {
		return "", "", time.Time{}, domain.ErrExpiredRefreshToken
	}
	tok.Revoke(now)
	if err := repo.Revoke(ctx, tok); err != nil {
		return "", "", time.Time{}, err
	}
	newPlain, expiresAt, err = s.Issue(ctx, repo, tok.UserID)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return tok.UserID, newPlain, expiresAt, nil
}

// Revoke revoca el token de userID. Un token ajeno o inexistente es ErrInvalidRefreshToken;
// uno ya revocado no cambia (la revocación original se conserva).
func (s *RefreshTokenService) Revoke(ctx context.Context, repo repository.RefreshTokenRepository, plain, userID string) error {
	tok, err := repo.GetByHashAndUser(ctx, security.HashToken(plain), userID)
	if err != nil {
		return err
	}
	if tok == nil {
		return domain.ErrInvalidRefreshToken
	}
	if tok.IsRevoked() {
		return nil
	}
	tok.Revoke(s.now().UTC())
	return repo.Revoke(ctx, tok)
}
