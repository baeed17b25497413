package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Tenancy-api/internal/application/dto"
	"github.com/jhoicas/Tenancy-api/internal/domain"
	"github.com/jhoicas/Tenancy-api/pkg/logger"
	"github.com/jhoicas/Tenancy-api/pkg/validation"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// errorTable traduce los errores de dominio a status HTTP y código. El orden importa solo
// si un error envolviera a otro de la tabla.
var errorTable = []errorMapping{
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrInvalidCredentials, fiber.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{domain.ErrInvalidRefreshToken, fiber.StatusUnauthorized, "INVALID_REFRESH_TOKEN"},
	{domain.ErrExpiredRefreshToken, fiber.StatusUnauthorized, "EXPIRED_REFRESH_TOKEN"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},

	{domain.ErrUserNotFound, fiber.StatusNotFound, "USER_NOT_FOUND"},
	{domain.ErrPlanNotFound, fiber.StatusNotFound, "PLAN_NOT_FOUND"},
	{domain.ErrSubscriptionNotFound, fiber.StatusNotFound, "SUBSCRIPTION_NOT_FOUND"},
	{domain.ErrBusinessNotFound, fiber.StatusNotFound, "BUSINESS_NOT_FOUND"},
	{domain.ErrMemberNotFound, fiber.StatusNotFound, "MEMBER_NOT_FOUND"},
	{domain.ErrInviteNotFound, fiber.StatusNotFound, "INVITE_NOT_FOUND"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},

	{domain.ErrEmailAlreadyExists, fiber.StatusConflict, "EMAIL_EXISTS"},
	{domain.ErrPlanNameExists, fiber.StatusConflict, "PLAN_NAME_EXISTS"},
	{domain.ErrPlanSystemProtected, fiber.StatusConflict, "PLAN_SYSTEM_PROTECTED"},
	{domain.ErrDowngradeBlocked, fiber.StatusConflict, "DOWNGRADE_BLOCKED"},
	{domain.ErrBusinessLimitReached, fiber.StatusConflict, "BUSINESS_LIMIT_REACHED"},
	{domain.ErrMemberLimitReached, fiber.StatusConflict, "MEMBER_LIMIT_REACHED"},
	{domain.ErrOwnerProtected, fiber.StatusConflict, "OWNER_PROTECTED"},
	{domain.ErrInvalidStatus, fiber.StatusConflict, "INVALID_STATUS"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},

	{domain.ErrInvalidToken, fiber.StatusBadRequest, "INVALID_TOKEN"},
	{domain.ErrInviteExpired, fiber.StatusGone, "INVITE_EXPIRED"},
}

// writeError responde con el status y código del error de dominio. Lo desconocido es 500 y se registra.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: m.err.Error()})
		}
	}
	logger.OrNop(log).Error().Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

// bind parsea el cuerpo JSON y valida el DTO. Si falla ya escribió la respuesta 400 y devuelve false.
func bind(c *fiber.Ctx, out any) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    "INVALID_BODY",
			Message: "cuerpo inválido",
			Details: validation.ToDetails(err),
		})
	}
	if err := validation.Struct(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    "VALIDATION",
			Message: "datos inválidos",
			Details: validation.ToDetails(err),
		})
	}
	return true, nil
}
