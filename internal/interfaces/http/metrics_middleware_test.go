package http_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/Tenancy-api/internal/interfaces/http"
	"github.com/jhoicas/Tenancy-api/internal/metrics"
)

func TestRequestMetrics_UsaElPatronDeRuta(t *testing.T) {
	reg := prometheus.NewRegistry()
	app := fiber.New()
	app.Use(apphttp.RequestMetrics(metrics.New(reg)))
	app.Get("/items/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	for _, id := range []string{"1", "2"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	}

	expected := `
# HELP tenancy_http_requests_total Total HTTP requests handled by the API
# TYPE tenancy_http_requests_total counter
tenancy_http_requests_total{method="GET",route="/items/:id",status="204"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "tenancy_http_requests_total"))
}
