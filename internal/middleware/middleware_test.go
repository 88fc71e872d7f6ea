package middleware_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"tienda/internal/metrics"
	"tienda/internal/middleware"
	"tienda/internal/models"
	"tienda/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func newAuthApp(t *testing.T) (*fiber.App, *services.AuthService) {
	t.Helper()
	auth := services.NewAuthService(nil, "middleware_secret", time.Hour)
	app := fiber.New()
	app.Get("/me", middleware.AuthRequired(auth), func(c *fiber.Ctx) error {
		claims, ok := middleware.ClaimsFrom(c)
		require.True(t, ok)
		return c.JSON(fiber.Map{"user_id": claims.UserID, "role": claims.Role})
	})
	app.Get("/admin", middleware.AuthRequired(auth), middleware.AdminRequired(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app, auth
}

func TestAuthRequired(t *testing.T) {
	app, auth := newAuthApp(t)
	token, err := auth.IssueToken(5, models.RoleClient)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Token " + token, fiber.StatusUnauthorized},
		{"garbage token", "Bearer not-a-token", fiber.StatusUnauthorized},
		{"valid token", "Bearer " + token, fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestAdminRequired(t *testing.T) {
	app, auth := newAuthApp(t)
	client, _ := auth.IssueToken(5, models.RoleClient)
	admin, _ := auth.IssueToken(1, models.RoleAdministrator)

	req := httptest.NewRequest(fiber.MethodGet, "/admin", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+client)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(fiber.MethodGet, "/admin", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+admin)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestRateLimiter(t *testing.T) {
	app := fiber.New()
	app.Post("/login", middleware.NewRateLimiter(60, 2).Handler(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/login", nil), -1)
		require.NoError(t, err)
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{fiber.StatusOK, fiber.StatusOK, fiber.StatusTooManyRequests}, codes)
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.RequestLogger(), middleware.Metrics())
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	app.Get("/boom", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "teapot") })

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ping", nil), -1)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Header.Get(middleware.HeaderRequestID))

	req := httptest.NewRequest(fiber.MethodGet, "/ping", nil)
	req.Header.Set(middleware.HeaderRequestID, "fixed-id")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", resp.Header.Get(middleware.HeaderRequestID))

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/boom", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
}

func TestCache_DisabledPassesThrough(t *testing.T) {
	calls := 0
	cache := middleware.NewCache(nil, 0)
	app := fiber.New()
	app.Get("/products", cache.Handler(), func(c *fiber.Ctx) error {
		calls++
		return c.JSON([]string{})
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/products", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Empty(t, resp.Header.Get("X-Cache"))
	}
	assert.Equal(t, 2, calls)
	assert.NoError(t, cache.Invalidate(context.Background()))
}

func TestCache_UnreachableRedisFallsThrough(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	cache := middleware.NewCache(rdb, time.Minute)
	app := fiber.New()
	app.Get("/products", cache.Handler(), func(c *fiber.Ctx) error {
		return c.JSON([]string{"bear"})
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/products", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "MISS", resp.Header.Get("X-Cache"))
}

func TestMetrics_LabelsSurviveBufferReuse(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.Metrics())
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }
	app.Get("/widgets/:id", ok)
	app.Put("/widgets/:id", ok)
	app.Delete("/widgets/:id", ok)

	methods := []string{fiber.MethodGet, fiber.MethodDelete, fiber.MethodPut}
	for i := 0; i < 30; i++ {
		for _, m := range methods {
			resp, err := app.Test(httptest.NewRequest(m, fmt.Sprintf("/widgets/%d", i), nil), -1)
			require.NoError(t, err)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
		}
		// unmatched paths are labelled by their raw path
		_, err := app.Test(httptest.NewRequest(fiber.MethodGet, fmt.Sprintf("/nowhere/%d", i), nil), -1)
		require.NoError(t, err)
	}

	families, err := metrics.Registry.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "tienda_http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["route"] == "/widgets/:id" {
				counts[labels["method"]] += m.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, map[string]float64{fiber.MethodGet: 30, fiber.MethodDelete: 30, fiber.MethodPut: 30}, counts)
}
