package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Tenancy-api/internal/application/dto"
	"github.com/jhoicas/Tenancy-api/internal/application/ports"
	"github.com/jhoicas/Tenancy-api/internal/domain"
	"github.com/jhoicas/Tenancy-api/internal/domain/entity"
	"github.com/jhoicas/Tenancy-api/internal/metrics"
	"github.com/jhoicas/Tenancy-api/pkg/jwt"
	"github.com/jhoicas/Tenancy-api/pkg/logger"
	"github.com/jhoicas/Tenancy-api/pkg/security"
	"github.com/jhoicas/Tenancy-api/pkg/validation"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: registro, login, rotación y logout.
type AuthUseCase struct {
	tx            ports.TxRunner
	refresh       *RefreshTokenService
	jwtCfg        JWTConfig
	defaultPlanID string
	log           *logger.Logger
	metrics       *metrics.Metrics
	now           func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
// Si defaultPlanID no está vacío, cada usuario nuevo queda suscrito a ese plan.
func NewAuthUseCase(tx ports.TxRunner, refresh *RefreshTokenService, jwtCfg JWTConfig, defaultPlanID string, log *logger.Logger, m *metrics.Metrics) *AuthUseCase {
	return &AuthUseCase{
		tx:            tx,
		refresh:       refresh,
		jwtCfg:        jwtCfg,
		defaultPlanID: defaultPlanID,
		log:           logger.OrNop(log).Component("auth"),
		metrics:       m,
		now:           time.Now,
	}
}

// SetClock reemplaza el reloj (tests).
func (uc *AuthUseCase) SetClock(now func() time.Time) {
	uc.now = now
	uc.refresh.SetClock(now)
}

// Register crea el usuario, lo suscribe al plan por defecto y emite el par de credenciales.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := validation.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, domain.ErrInvalidInput
	}
	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var (
		user      *entity.User
		plain     string
		expiresAt time.Time
	)
	err = uc.tx.Run(ctx, func(r ports.Repos) error {
		existing, err := r.Users.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrEmailAlreadyExists
		}
		now := uc.now().UTC()
		user = &entity.User{
			ID:           uuid.New().String(),
			Email:        email,
			PasswordHash: hash,
			CreatedAt:    now,
		}
		if err := r.Users.Create(ctx, user); err != nil {
			return err
		}
		if uc.defaultPlanID != "" {
			plan, err := r.Plans.GetByID(ctx, uc.defaultPlanID)
			if err != nil {
				return err
			}
			if plan == nil {
				return fmt.Errorf("plan por defecto %s: %w", uc.defaultPlanID, domain.ErrPlanNotFound)
			}
			sub := entity.NewSubscription(uuid.New().String(), user.ID, plan.ID, entity.ReasonRegister, now)
			if err := r.Subscriptions.Create(ctx, sub); err != nil {
				return err
			}
		}
		plain, expiresAt, err = uc.refresh.Issue(ctx, r.RefreshTokens, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", user.ID).Str("plan_id", uc.defaultPlanID).Msg("usuario registrado")
	return uc.authResponse(user, plain, expiresAt)
}

// Login verifica email/password y emite un nuevo par de credenciales.
// Email inexistente y password incorrecto responden igual (ErrInvalidCredentials).
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.AuthResponse, error) {
	email := validation.NormalizeEmail(in.Email)

	var (
		user      *entity.User
		plain     string
		expiresAt time.Time
	)
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		user, err = r.Users.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if user == nil || !security.CheckPassword(user.PasswordHash, in.Password) {
			return domain.ErrInvalidCredentials
		}
		plain, expiresAt, err = uc.refresh.Issue(ctx, r.RefreshTokens, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return uc.authResponse(user, plain, expiresAt)
}

// Refresh rota el refresh token presentado y emite un access token nuevo.
func (uc *AuthUseCase) Refresh(ctx context.Context, in dto.RefreshRequest) (*dto.AuthResponse, error) {
	var (
		user      *entity.User
		plain     string
		expiresAt time.Time
	)
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		userID, newPlain, exp, err := uc.refresh.Rotate(ctx, r.RefreshTokens, in.RefreshToken)
		if err != nil {
			return err
		}
		user, err = r.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.ErrInvalidRefreshToken
		}
		plain, expiresAt = newPlain, exp
		return nil
	})
	switch {
	case err == nil:
		uc.metrics.RecordRefreshRotation("ok")
	case errors.Is(err, domain.ErrExpiredRefreshToken):
		uc.metrics.RecordRefreshRotation("expired")
		return nil, err
	case errors.Is(err, domain.ErrInvalidRefreshToken):
		uc.metrics.RecordRefreshRotation("invalid")
		return nil, err
	default:
		return nil, err
	}
	uc.log.Debug().Str("user_id", user.ID).Msg("refresh token rotado")
	return uc.authResponse(user, plain, expiresAt)
}

// Logout revoca un refresh token del usuario autenticado.
func (uc *AuthUseCase) Logout(ctx context.Context, userID string, in dto.LogoutRequest) error {
	return uc.tx.Run(ctx, func(r ports.Repos) error {
		return uc.refresh.Revoke(ctx, r.RefreshTokens, in.RefreshToken, userID)
	})
}

// Me devuelve la identidad del usuario autenticado.
func (uc *AuthUseCase) Me(ctx context.Context, userID string) (*dto.MeResponse, error) {
	var user *entity.User
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		user, err = r.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dto.MeResponse{UserID: user.ID, Email: user.Email, IsAdmin: user.IsAdmin}, nil
}

// EnsureAdmin crea el usuario administrador o, si el email ya existe, lo promueve y le fija el password.
// Lo usa el comando seed-admin.
func (uc *AuthUseCase) EnsureAdmin(ctx context.Context, email, password string) (created bool, err error) {
	email = validation.NormalizeEmail(email)
	if email == "" || password == "" {
		return false, domain.ErrInvalidInput
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	err = uc.tx.Run(ctx, func(r ports.Repos) error {
		u, err := r.Users.GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if u != nil {
			u.IsAdmin = true
			u.PasswordHash = hash
			return r.Users.Update(ctx, u)
		}
		created = true
		return r.Users.Create(ctx, &entity.User{
			ID:           uuid.New().String(),
			Email:        email,
			PasswordHash: hash,
			IsAdmin:      true,
			CreatedAt:    uc.now().UTC(),
		})
	})
	if err != nil {
		return false, err
	}
	uc.log.Info().Str("email", email).Bool("created", created).Msg("administrador asegurado")
	return created, nil
}

func (uc *AuthUseCase) authResponse(u *entity.User, refreshToken string, refreshExp time.Time) (*dto.AuthResponse, error) {
	access, err := jwt.Generate(uc.jwtCfg.Secret, u.ID, u.Email, u.IsAdmin, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		UserID:           u.ID,
		Email:            u.Email,
		IsAdmin:          u.IsAdmin,
		AccessToken:      access,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExp.UTC().Format(time.RFC3339),
	}, nil
}
