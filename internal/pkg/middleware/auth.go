package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/yaguita/iglesia-backend/app/models"
	"github.com/yaguita/iglesia-backend/internal/pkg/auth"
	"github.com/yaguita/iglesia-backend/internal/pkg/usercontext"
)

// Authenticate resolves an optional bearer token into the user context. An
// invalid token leaves the request anonymous and is reported by RequireAuth.
func Authenticate(tokens *auth.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := extractBearerToken(c)
		if raw == "" {
			usercontext.SetUserContext(c, usercontext.UserContext{})
			return c.Next()
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			c.Locals(usercontext.KeyTokenInvalid, true)
			usercontext.SetUserContext(c, usercontext.UserContext{})
			return c.Next()
		}

		usercontext.SetUserContext(c, usercontext.UserContext{
			UserID:     claims.UserID,
			Email:      claims.Subject,
			Role:       claims.Role,
			IsLoggedIn: true,
			IsAdmin:    claims.Role == models.ROLE_ADMIN,
		})
		return c.Next()
	}
}

// RequireAuth rejects anonymous requests: 401 for a bad token, 403 when no
// token was sent at all.
func RequireAuth(c *fiber.Ctx) error {
	if usercontext.IsLoggedIn(c) {
		return c.Next()
	}
	if invalid, ok := c.Locals(usercontext.KeyTokenInvalid).(bool); ok && invalid {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "Token invalide ou expiré",
		})
	}
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"error":   "forbidden",
		"message": "Not authenticated",
	})
}

// RequireAdmin ensures a logged-in admin
func RequireAdmin(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return RequireAuth(c)
	}
	if !usercontext.IsAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "forbidden",
			"message": "Accès administrateur requis",
		})
	}
	return c.Next()
}

func extractBearerToken(c *fiber.Ctx) string {
	h := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}
