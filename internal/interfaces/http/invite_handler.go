package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Tenancy-api/internal/application/dto"
	"github.com/jhoicas/Tenancy-api/internal/application/invite"
	"github.com/jhoicas/Tenancy-api/internal/domain"
	"github.com/jhoicas/Tenancy-api/pkg/logger"
)

// InviteHandler invitaciones a negocios (protegido).
type InviteHandler struct {
	uc          *invite.InviteUseCase
	exposeToken bool
	log         *logger.Logger
}

// NewInviteHandler construye el handler. exposeToken devuelve el token en claro en la respuesta
// de creación (solo desarrollo).
func NewInviteHandler(uc *invite.InviteUseCase, exposeToken bool, log *logger.Logger) *InviteHandler {
	return &InviteHandler{uc: uc, exposeToken: exposeToken, log: log}
}

// Create godoc
// @Summary      Invitar a un negocio
// @Description  Solo owner o admin activos. El token se entrega por correo.
// @Tags         invites
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInviteRequest  true  "business_id, invited_email, role_to_grant"
// @Success      201   {object}  dto.CreateInviteResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/invites [post]
func (h *InviteHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInviteRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	inv, token, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.CreateInviteResponse{Invite: *inv}
	if h.exposeToken {
		out.Token = token
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Revoke godoc
// @Summary      Revocar invitación
// @Tags         invites
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la invitación"
// @Success      200  {object}  dto.MessageResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/invites/{id}/revoke [post]
func (h *InviteHandler) Revoke(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return writeError(c, h.log, domain.ErrInviteNotFound)
	}
	if err := h.uc.Revoke(c.UserContext(), GetUserID(c), id); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.MessageResponse{Message: "invitación revocada"})
}

// Accept godoc
// @Summary      Aceptar invitación
// @Description  Cualquier usuario autenticado con el token se une al negocio con el rol otorgado.
// @Tags         invites
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AcceptInviteRequest  true  "token"
// @Success      200   {object}  dto.BusinessResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      410   {object}  dto.ErrorResponse
// @Router       /api/invites/accept [post]
func (h *InviteHandler) Accept(c *fiber.Ctx) error {
	var in dto.AcceptInviteRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.uc.Accept(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
