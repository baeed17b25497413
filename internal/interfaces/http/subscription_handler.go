package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Tenancy-api/internal/application/dto"
	"github.com/jhoicas/Tenancy-api/internal/application/subscription"
	"github.com/jhoicas/Tenancy-api/pkg/logger"
)

// SubscriptionHandler cambio de plan e historial de suscripciones del usuario autenticado.
type SubscriptionHandler struct {
	uc  *subscription.SubscriptionUseCase
	log *logger.Logger
}

// NewSubscriptionHandler construye el handler.
func NewSubscriptionHandler(uc *subscription.SubscriptionUseCase, log *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{uc: uc, log: log}
}

// ChangePlan godoc
// @Summary      Cambiar de plan
// @Description  Cierra la suscripción activa y abre una nueva. Si el plan destino no admite los recursos
// @Description  actuales, según la política configurada se rechaza (block) o se desactivan negocios y miembros (enforce).
// @Tags         subscriptions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ChangePlanRequest  true  "plan_id"
// @Success      200   {object}  dto.ChangePlanResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/subscriptions/change-plan [post]
func (h *SubscriptionHandler) ChangePlan(c *fiber.Ctx) error {
	var in dto.ChangePlanRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.uc.ChangePlan(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Active godoc
// @Summary      Suscripción activa
// @Tags         subscriptions
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SubscriptionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/subscriptions/me/active [get]
func (h *SubscriptionHandler) Active(c *fiber.Ctx) error {
	out, err := h.uc.GetActive(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// History godoc
// @Summary      Historial de suscripciones
// @Tags         subscriptions
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.SubscriptionResponse
// @Router       /api/subscriptions/me/history [get]
func (h *SubscriptionHandler) History(c *fiber.Ctx) error {
	out, err := h.uc.History(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
