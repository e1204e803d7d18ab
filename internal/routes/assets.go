package routes

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/legacy-vault/legacy_vault/internal/asset"
	"github.com/legacy-vault/legacy_vault/internal/middleware"
)

// RegisterAssetRoutes wires encrypted asset management. Payloads arrive
// already encrypted; the server never sees plaintext.
func RegisterAssetRoutes(r fiber.Router, svc *asset.Service) {
	r.Post("/assets", func(c *fiber.Ctx) error {
		var req struct {
			Name       string `json:"name"`
			Type       string `json:"type"`
			Platform   string `json:"platform"`
			Ciphertext string `json:"ciphertext"`
			IV         string `json:"iv"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		a, err := svc.Add(c.UserContext(), asset.AddInput{
			UserID:     middleware.UserID(c),
			Name:       req.Name,
			Type:       req.Type,
			Platform:   req.Platform,
			Ciphertext: req.Ciphertext,
			IV:         req.IV,
		})
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		return c.Status(http.StatusCreated).JSON(fiber.Map{
			"id":         a.ID,
			"name":       a.Name,
			"type":       a.Type,
			"platform":   a.Platform,
			"created_at": a.CreatedAt,
		})
	})

	r.Get("/assets", func(c *fiber.Ctx) error {
		assets, err := svc.List(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		out := make([]fiber.Map, 0, len(assets))
		for _, a := range assets {
			out = append(out, fiber.Map{
				"id":         a.ID,
				"name":       a.Name,
				"type":       a.Type,
				"platform":   a.Platform,
				"ciphertext": a.Ciphertext,
				"iv":         a.IV,
				"created_at": a.CreatedAt,
			})
		}
		return c.JSON(fiber.Map{"assets": out})
	})

	r.Delete("/assets/:assetId", func(c *fiber.Ctx) error {
		err := svc.Remove(c.UserContext(), middleware.UserID(c), c.Params("assetId"))
		if err != nil {
			if errors.Is(err, asset.ErrNotFound) {
				return fiber.NewError(http.StatusNotFound, "asset not found")
			}
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(http.StatusNoContent)
	})
}
