package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Tenancy-api/internal/application/dto"
	"github.com/jhoicas/Tenancy-api/internal/application/usecase"
	"github.com/jhoicas/Tenancy-api/internal/domain"
	"github.com/jhoicas/Tenancy-api/pkg/logger"
)

// BusinessHandler negocios y membresías (protegido).
type BusinessHandler struct {
	uc  *usecase.BusinessUseCase
	log *logger.Logger
}

// NewBusinessHandler construye el handler.
func NewBusinessHandler(uc *usecase.BusinessUseCase, log *logger.Logger) *BusinessHandler {
	return &BusinessHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear negocio
// @Tags         businesses
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateBusinessRequest  true  "name"
// @Success      201   {object}  dto.BusinessResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/businesses [post]
func (h *BusinessHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateBusinessRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMine godoc
// @Summary      Mis negocios
// @Tags         businesses
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.BusinessResponse
// @Router       /api/businesses/mine [get]
func (h *BusinessHandler) ListMine(c *fiber.Ctx) error {
	out, err := h.uc.ListMine(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener negocio
// @Tags         businesses
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del negocio"
// @Success      200  {object}  dto.BusinessResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/businesses/{id} [get]
func (h *BusinessHandler) GetByID(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return writeError(c, h.log, domain.ErrBusinessNotFound)
	}
	out, err := h.uc.GetByID(c.UserContext(), GetUserID(c), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// AddMember godoc
// @Summary      Agregar miembro
// @Description  Agrega o reactiva la membresía. Solo el owner.
// @Tags         businesses
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID del negocio"
// @Param        body  body  dto.AddMemberRequest  true  "user_id, role"
// @Success      200   {object}  dto.BusinessResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/businesses/{id}/members [post]
func (h *BusinessHandler) AddMember(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return writeError(c, h.log, domain.ErrBusinessNotFound)
	}
	var in dto.AddMemberRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.uc.AddMember(c.UserContext(), GetUserID(c), id, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// RemoveMember godoc
// @Summary      Desactivar miembro
// @Tags         businesses
// @Security     Bearer
// @Produce      json
// @Param        id      path  string  true  "ID del negocio"
// @Param        userId  path  string  true  "ID del usuario miembro"
// @Success      200  {object}  dto.BusinessResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/businesses/{id}/members/{userId} [delete]
func (h *BusinessHandler) RemoveMember(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return writeError(c, h.log, domain.ErrBusinessNotFound)
	}
	userID, ok := pathID(c, "userId")
	if !ok {
		return writeError(c, h.log, domain.ErrMemberNotFound)
	}
	out, err := h.uc.RemoveMember(c.UserContext(), GetUserID(c), id, userID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// ChangeMemberRole godoc
// @Summary      Cambiar rol de un miembro
// @Tags         businesses
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id      path  string                       true  "ID del negocio"
// @Param        userId  path  string                       true  "ID del usuario miembro"
// @Param        body    body  dto.ChangeMemberRoleRequest  true  "role"
// @Success      200  {object}  dto.BusinessResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/businesses/{id}/members/{userId}/role [put]
func (h *BusinessHandler) ChangeMemberRole(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return writeError(c, h.log, domain.ErrBusinessNotFound)
	}
	userID, ok := pathID(c, "userId")
	if !ok {
		return writeError(c, h.log, domain.ErrMemberNotFound)
	}
	var in dto.ChangeMemberRoleRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.uc.ChangeMemberRole(c.UserContext(), GetUserID(c), id, userID, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
