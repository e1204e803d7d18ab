package routes

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/legacy-vault/legacy_vault/internal/activity"
	"github.com/legacy-vault/legacy_vault/internal/asset"
	"github.com/legacy-vault/legacy_vault/internal/beneficiary"
	"github.com/legacy-vault/legacy_vault/internal/dms"
	"github.com/legacy-vault/legacy_vault/internal/identity"
	"github.com/legacy-vault/legacy_vault/internal/middleware"
)

// RegisterDashboardRoutes wires the owner's profile, DMS controls and
// the dashboard summary.
func RegisterDashboardRoutes(
	r fiber.Router,
	identitySvc *identity.Service,
	engine *dms.Engine,
	activitySvc *activity.Service,
	assetSvc *asset.Service,
	beneficiarySvc *beneficiary.Service,
) {
	r.Get("/me", func(c *fiber.Ctx) error {
		user, err := identitySvc.Get(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "user not found")
		}
		return c.JSON(fiber.Map{
			"user_id":         user.ID,
			"email":           user.Email,
			"name":            user.Name,
			"dms_status":      user.DMSStatus,
			"dms_period_days": user.DMSPeriodDays,
			"last_active_at":  user.LastActiveAt,
			"emergency_email": user.EmergencyEmail,
			"created_at":      user.CreatedAt,
		})
	})

	r.Get("/dashboard", func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		uid := middleware.UserID(c)

		user, err := identitySvc.Get(ctx, uid)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "user not found")
		}
		assets, err := assetSvc.List(ctx, uid)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		beneficiaries, err := beneficiarySvc.List(ctx, uid)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		recent, err := activitySvc.Recent(ctx, uid, 10)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}

		verified := 0
		for _, b := range beneficiaries {
			if b.VerificationStatus == beneficiary.StatusVerified {
				verified++
			}
		}

		entries := make([]fiber.Map, 0, len(recent))
		for _, e := range recent {
			entries = append(entries, fiber.Map{
				"type":       e.Type,
				"message":    e.Message,
				"created_at": e.CreatedAt,
			})
		}

		return c.JSON(fiber.Map{
			"dms_status":             user.DMSStatus,
			"dms_period_days":        user.DMSPeriodDays,
			"last_active_at":         user.LastActiveAt,
			"asset_count":            len(assets),
			"beneficiary_count":      len(beneficiaries),
			"verified_beneficiaries": verified,
			"recent_activity":        entries,
		})
	})

	r.Put("/settings", func(c *fiber.Ctx) error {
		var req struct {
			PeriodDays     int    `json:"dms_period_days"`
			EmergencyEmail string `json:"emergency_email"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}

		uid := middleware.UserID(c)
		if err := identitySvc.UpdateSettings(c.UserContext(), uid, req.PeriodDays, req.EmergencyEmail); err != nil {
			if errors.Is(err, identity.ErrNotFound) {
				return fiber.NewError(http.StatusNotFound, "user not found")
			}
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		return c.JSON(fiber.Map{"updated": true})
	})

	r.Post("/heartbeat", func(c *fiber.Ctx) error {
		if err := engine.Heartbeat(c.UserContext(), middleware.UserID(c)); err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"status": "recorded"})
	})

	r.Post("/reactivate", func(c *fiber.Ctx) error {
		done, err := engine.Reactivate(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		if !done {
			return fiber.NewError(http.StatusConflict, "switch is not triggered")
		}
		return c.JSON(fiber.Map{"dms_status": identity.StatusActive})
	})

	r.Get("/activity", func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 20)
		recent, err := activitySvc.Recent(c.UserContext(), middleware.UserID(c), limit)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		entries := make([]fiber.Map, 0, len(recent))
		for _, e := range recent {
			entries = append(entries, fiber.Map{
				"id":         e.ID,
				"type":       e.Type,
				"message":    e.Message,
				"created_at": e.CreatedAt,
			})
		}
		return c.JSON(fiber.Map{"activity": entries})
	})
}
