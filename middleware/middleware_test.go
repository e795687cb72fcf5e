package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func send(t *testing.T, app *fiber.App, req *http.Request) (int, string) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestServiceTokenMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/s/ping", ServiceTokenMiddleware("secret", nil), func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "Bearer nope", http.StatusUnauthorized},
		{"bearer", "Bearer secret", http.StatusOK},
		{"raw", "secret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/s/ping", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			status, _ := send(t, app, req)
			assert.Equal(t, tt.want, status)
		})
	}
}

func TestServiceTokenMiddleware_Unconfigured(t *testing.T) {
	app := fiber.New()
	app.Get("/s/ping", ServiceTokenMiddleware("", nil), func(c *fiber.Ctx) error {
		return c.SendString("pong")
	})
	req := httptest.NewRequest("GET", "/s/ping", nil)
	req.Header.Set("Authorization", "Bearer ")

	status, body := send(t, app, req)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, body, "no service token configured")
}

func TestMemberContextMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(MemberContextMiddleware(nil))
	handler := func(c *fiber.Ctx) error {
		return c.SendString(MemberID(c) + "|" + MemberName(c) + "|" + strings.Join(MemberRoles(c), ","))
	}
	app.Get("/public", handler)
	app.Get("/s/private", handler)
	app.Get("/s/officers", RequireRole("officer", "founder"), handler)

	status, body := send(t, app, httptest.NewRequest("GET", "/public", nil))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "||", body)

	status, _ = send(t, app, httptest.NewRequest("GET", "/s/private", nil))
	assert.Equal(t, http.StatusUnauthorized, status)

	req := httptest.NewRequest("GET", "/s/private", nil)
	req.Header.Set("X-Member-ID", "g1-m003")
	req.Header.Set("X-Member-Roles", " officer, ,council ")
	status, body = send(t, app, req)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "g1-m003|g1-m003|officer,council", body)

	req = httptest.NewRequest("GET", "/s/officers", nil)
	req.Header.Set("X-Member-ID", "g1-m001")
	req.Header.Set("X-Member-Name", "Alice")
	req.Header.Set("X-Member-Roles", "prospect")
	status, _ = send(t, app, req)
	assert.Equal(t, http.StatusForbidden, status)

	req.Header.Set("X-Member-Roles", "prospect,founder")
	status, body = send(t, app, req)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "g1-m001|Alice|prospect,founder", body)
}

func TestStreamAuthMiddleware(t *testing.T) {
	app := fiber.New()
	app.Get("/stream", StreamAuthMiddleware("secret", nil), func(c *fiber.Ctx) error {
		return c.SendString(MemberID(c))
	})

	status, _ := send(t, app, httptest.NewRequest("GET", "/stream?token=secret", nil))
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = send(t, app, httptest.NewRequest("GET", "/stream?token=bad&member_id=m1", nil))
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := send(t, app, httptest.NewRequest("GET", "/stream?token=secret&member_id=m1", nil))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "m1", body)
}
