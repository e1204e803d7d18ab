package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/legacy-vault/legacy_vault/internal/auth"
	"github.com/legacy-vault/legacy_vault/internal/identity"
)

// Auth validates the bearer session token and loads the subject.
// Handlers read the authenticated owner id from c.Locals("user_id").
func Auth(tokens *auth.TokenService, repo identity.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		tokenStr := strings.TrimSpace(authz[len("Bearer "):])
		userID, err := tokens.Parse(tokenStr)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}

		if _, err := repo.FindByID(c.UserContext(), userID); err != nil {
			return fiber.NewError(http.StatusUnauthorized, "unknown user")
		}

		c.Locals("user_id", userID)
		return c.Next()
	}
}

// UserID reads the authenticated owner id set by Auth.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}
