package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Tenancy-api/internal/application/dto"
	"github.com/jhoicas/Tenancy-api/pkg/logger"
)

// redisTimeout evita que una caída de Redis frene las peticiones.
const redisTimeout = 200 * time.Millisecond

// Config parámetros del limitador.
type Config struct {
	Max    int
	Window time.Duration
	// Prefix separa los contadores de distintos grupos de rutas.
	Prefix string
}

// New middleware Fiber de ventana fija por IP. Si counter es nil o la configuración no es válida
// el middleware deja pasar todo. Un error de Redis también deja pasar (fail-open).
func New(counter Counter, cfg Config, log *logger.Logger) fiber.Handler {
	if counter == nil || cfg.Max <= 0 || cfg.Window <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	log = logger.OrNop(log).Component("ratelimit")
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "rl"
	}

	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodOptions {
			return c.Next()
		}
		key := prefix + ":ip:" + c.IP()

		ctx, cancel := context.WithTimeout(c.UserContext(), redisTimeout)
		count, ttl, err := counter.Incr(ctx, key, cfg.Window)
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("rate limit no disponible; se deja pasar")
			return c.Next()
		}

		resetSec := int(ttl.Seconds())
		if resetSec < 0 {
			resetSec = 0
		}
		remaining := cfg.Max - int(count)
		if remaining < 0 {
			remaining = 0
		}
		c.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Max))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Set("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if int(count) > cfg.Max {
			if resetSec > 0 {
				c.Set(fiber.HeaderRetryAfter, strconv.Itoa(resetSec))
			}
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Code:    "RATE_LIMITED",
				Message: "demasiadas peticiones, intente más tarde",
			})
		}
		return c.Next()
	}
}
