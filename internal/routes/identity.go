package routes

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/legacy-vault/legacy_vault/internal/auth"
	"github.com/legacy-vault/legacy_vault/internal/dms"
	"github.com/legacy-vault/legacy_vault/internal/identity"
)

// RegisterIdentityRoutes wires registration and login.
func RegisterIdentityRoutes(r fiber.Router, svc *identity.Service, tokens *auth.TokenService, engine *dms.Engine) {
	r.Post("/auth/register", func(c *fiber.Ctx) error {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
			Name     string `json:"name"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		user, err := svc.Register(c.UserContext(), identity.Credentials{
			Email:    req.Email,
			Password: req.Password,
			Name:     req.Name,
		})
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		token, err := tokens.Issue(user.ID)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, "could not issue session token")
		}

		return c.Status(http.StatusCreated).JSON(fiber.Map{
			"user_id": user.ID,
			"email":   user.Email,
			"token":   token,
		})
	})

	r.Post("/auth/login", func(c *fiber.Ctx) error {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		user, err := svc.Authenticate(c.UserContext(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, identity.ErrInvalidCredentials) {
				return fiber.NewError(http.StatusUnauthorized, err.Error())
			}
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}

		// A successful login is authenticated activity.
		_ = engine.Heartbeat(c.UserContext(), user.ID)

		token, err := tokens.Issue(user.ID)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, "could not issue session token")
		}

		return c.JSON(fiber.Map{
			"user_id":    user.ID,
			"email":      user.Email,
			"name":       user.Name,
			"dms_status": user.DMSStatus,
			"token":      token,
		})
	})
}
