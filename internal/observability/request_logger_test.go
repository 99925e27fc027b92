package observability

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLoggerAssignsIDAndRecords(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	metrics := NewMetrics()

	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), metrics))
	app.Get("/ping/:id", func(c *fiber.Ctx) error {
		require.NotEmpty(t, RequestIDFromContext(c))
		return c.SendStatus(fiber.StatusTeapot)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/ping/7", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusTeapot, resp.StatusCode)
	require.Len(t, resp.Header.Get(RequestIDHeader), 26)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	require.Equal(t, int64(fiber.StatusTeapot), entry.ContextMap()["status"])
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.httpRequests.WithLabelValues("GET", "/ping/:id", "418")))
}

func TestRequestLoggerKeepsIncomingID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), nil))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-id")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, "upstream-id", resp.Header.Get(RequestIDHeader))
}

func TestNewRequestIDIsMonotonic(t *testing.T) {
	a := NewRequestID()
	b := NewRequestID()
	require.Less(t, a, b)
}
