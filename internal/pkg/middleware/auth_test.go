package middleware

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaguita/iglesia-backend/app/models"
	"github.com/yaguita/iglesia-backend/internal/pkg/auth"
	"github.com/yaguita/iglesia-backend/internal/pkg/usercontext"
)

func newAuthApp(tokens *auth.Manager) *fiber.App {
	app := fiber.New()
	app.Use(Authenticate(tokens))
	app.Get("/public", func(c *fiber.Ctx) error {
		return c.SendString(usercontext.GetUserID(c))
	})
	app.Get("/member", RequireAuth, func(c *fiber.Ctx) error {
		return c.SendString(usercontext.GetEmail(c))
	})
	app.Get("/admin", RequireAdmin, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func bearer(t *testing.T, tokens *auth.Manager, role string) string {
	t.Helper()
	token, err := tokens.Issue(&models.User{ID: "u-1", Email: "membre@iglesia.org", Role: role})
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewManager("test-secret", time.Hour)
	app := newAuthApp(tokens)

	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"public without token", "/public", "", fiber.StatusOK},
		{"public with bad token", "/public", "Bearer broken", fiber.StatusOK},
		{"member without token", "/member", "", fiber.StatusForbidden},
		{"member with bad token", "/member", "Bearer broken", fiber.StatusUnauthorized},
		{"member with token", "/member", bearer(t, tokens, models.ROLE_MEMBER), fiber.StatusOK},
		{"member with lowercase scheme", "/member", "bearer " + bearer(t, tokens, models.ROLE_MEMBER)[7:], fiber.StatusOK},
		{"admin as member", "/admin", bearer(t, tokens, models.ROLE_MEMBER), fiber.StatusForbidden},
		{"admin without token", "/admin", "", fiber.StatusForbidden},
		{"admin with bad token", "/admin", "Bearer broken", fiber.StatusUnauthorized},
		{"admin as admin", "/admin", bearer(t, tokens, models.ROLE_ADMIN), fiber.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestAuthenticateSetsIdentity(t *testing.T) {
	tokens := auth.NewManager("test-secret", time.Hour)
	app := newAuthApp(tokens)

	req := httptest.NewRequest("GET", "/public", nil)
	req.Header.Set("Authorization", bearer(t, tokens, models.ROLE_MEMBER))
	resp, err := app.Test(req)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "u-1", string(body))
}
