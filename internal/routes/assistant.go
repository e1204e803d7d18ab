package routes

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/legacy-vault/legacy_vault/internal/assistant"
)

// RegisterAssistantRoutes wires the optional AI planning helper.
func RegisterAssistantRoutes(r fiber.Router, svc *assistant.Service) {
	r.Post("/assistant/ask", func(c *fiber.Ctx) error {
		var req struct {
			Question string `json:"question"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		answer, err := svc.Ask(c.UserContext(), req.Question)
		if err != nil {
			return assistantError(err)
		}
		return c.JSON(fiber.Map{"answer": answer})
	})

	r.Post("/assistant/categorize", func(c *fiber.Ctx) error {
		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		category, err := svc.CategorizeAsset(c.UserContext(), req.Name, req.Description)
		if err != nil {
			return assistantError(err)
		}
		return c.JSON(fiber.Map{"type": category})
	})

	r.Post("/assistant/message", func(c *fiber.Ctx) error {
		var req struct {
			RecipientName string `json:"recipient_name"`
			Relationship  string `json:"relationship"`
			Notes         string `json:"notes"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		message, err := svc.GenerateMessage(c.UserContext(), req.RecipientName, req.Relationship, req.Notes)
		if err != nil {
			return assistantError(err)
		}
		return c.JSON(fiber.Map{"message": message})
	})
}

func assistantError(err error) error {
	switch {
	case errors.Is(err, assistant.ErrBlocked):
		return fiber.NewError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, assistant.ErrUnavailable):
		return fiber.NewError(http.StatusServiceUnavailable, "assistant is not configured")
	default:
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
}
