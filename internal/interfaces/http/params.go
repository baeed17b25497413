package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// pathID lee un parámetro de ruta que debe ser UUID. Un valor mal formado no puede existir en el
// almacenamiento, así que el llamador lo trata como no encontrado.
func pathID(c *fiber.Ctx, name string) (string, bool) {
	id := c.Params(name)
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}
