package routes

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/legacy-vault/legacy_vault/internal/beneficiary"
	"github.com/legacy-vault/legacy_vault/internal/identity"
	"github.com/legacy-vault/legacy_vault/internal/middleware"
)

// RegisterBeneficiaryRoutes wires beneficiary management for the owner.
func RegisterBeneficiaryRoutes(r fiber.Router, svc *beneficiary.Service, identitySvc *identity.Service) {
	r.Post("/beneficiaries", func(c *fiber.Ctx) error {
		var req struct {
			Name         string `json:"name"`
			Email        string `json:"email"`
			Relationship string `json:"relationship"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		uid := middleware.UserID(c)
		owner, err := identitySvc.Get(c.UserContext(), uid)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "user not found")
		}

		b, err := svc.Add(c.UserContext(), beneficiary.AddInput{
			UserID:       uid,
			OwnerName:    owner.Name,
			Name:         req.Name,
			Email:        req.Email,
			Relationship: req.Relationship,
		})
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		return c.Status(http.StatusCreated).JSON(fiber.Map{
			"id":                  b.ID,
			"name":                b.Name,
			"email":               b.Email,
			"relationship":        b.Relationship,
			"verification_status": b.VerificationStatus,
			"created_at":          b.CreatedAt,
		})
	})

	r.Get("/beneficiaries", func(c *fiber.Ctx) error {
		list, err := svc.List(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		out := make([]fiber.Map, 0, len(list))
		for _, b := range list {
			out = append(out, fiber.Map{
				"id":                  b.ID,
				"name":                b.Name,
				"email":               b.Email,
				"relationship":        b.Relationship,
				"verification_status": b.VerificationStatus,
				"access_granted_at":   b.AccessGrantedAt,
				"created_at":          b.CreatedAt,
			})
		}
		return c.JSON(fiber.Map{"beneficiaries": out})
	})

	r.Delete("/beneficiaries/:beneficiaryId", func(c *fiber.Ctx) error {
		err := svc.Remove(c.UserContext(), middleware.UserID(c), c.Params("beneficiaryId"))
		if err != nil {
			if errors.Is(err, beneficiary.ErrNotFound) {
				return fiber.NewError(http.StatusNotFound, "beneficiary not found")
			}
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(http.StatusNoContent)
	})
}
