package routes

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/legacy-vault/legacy_vault/internal/beneficiary"
	"github.com/legacy-vault/legacy_vault/internal/config"
	"github.com/legacy-vault/legacy_vault/internal/vaultgate"
	"github.com/legacy-vault/legacy_vault/internal/verification"
)

// RegisterClaimRoutes wires the beneficiary-facing surface: claiming an
// access key, the provider webhook and the vault itself. All of it is
// unauthenticated; the access key is the credential.
func RegisterClaimRoutes(
	r fiber.Router,
	cfg config.Config,
	manager *verification.Manager,
	gate *vaultgate.Gate,
	claimLimiter fiber.Handler,
	logger *slog.Logger,
) {
	r.Post("/claim", claimLimiter, func(c *fiber.Ctx) error {
		var req struct {
			AccessKey string `json:"access_key"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if req.AccessKey == "" {
			return fiber.NewError(http.StatusBadRequest, "access_key is required")
		}

		result, err := manager.Start(c.UserContext(), req.AccessKey)
		if err != nil {
			switch {
			case errors.Is(err, beneficiary.ErrNotFound):
				return fiber.NewError(http.StatusNotFound, "unknown access key")
			case errors.Is(err, verification.ErrOwnerActive):
				return fiber.NewError(http.StatusForbidden, "the vault owner is still active")
			default:
				return fiber.NewError(http.StatusBadGateway, "verification is temporarily unavailable")
			}
		}

		if result.AlreadyVerified {
			return c.JSON(fiber.Map{
				"verified":    true,
				"redirect_to": result.RedirectTo,
			})
		}
		return c.JSON(fiber.Map{
			"verified":      false,
			"session_id":    result.SessionID,
			"client_secret": result.ClientSecret,
		})
	})

	r.Post("/webhooks/verification", func(c *fiber.Ctx) error {
		event, err := verification.ParseEvent(
			c.Body(),
			c.Get("Stripe-Signature"),
			[]byte(cfg.VerifyWebhookSecret),
			verification.DefaultTolerance,
		)
		if err != nil {
			logger.Warn("webhook rejected", slog.Any("error", err))
			return fiber.NewError(http.StatusBadRequest, "invalid webhook")
		}

		if err := manager.HandleEvent(c.UserContext(), event); err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"received": true})
	})

	r.Get("/vault/:accessKey", func(c *fiber.Ctx) error {
		contents, err := gate.Resolve(c.UserContext(), c.Params("accessKey"))
		if err != nil {
			switch {
			case errors.Is(err, beneficiary.ErrNotFound):
				return fiber.NewError(http.StatusNotFound, "unknown access key")
			case errors.Is(err, vaultgate.ErrOwnerActive):
				return fiber.NewError(http.StatusForbidden, "the vault owner is still active")
			case errors.Is(err, vaultgate.ErrNotVerified):
				return fiber.NewError(http.StatusForbidden, "identity verification is required")
			default:
				return fiber.NewError(http.StatusInternalServerError, err.Error())
			}
		}
		return c.JSON(contents)
	})
}
