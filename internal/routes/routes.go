package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/legacy-vault/legacy_vault/internal/activity"
	"github.com/legacy-vault/legacy_vault/internal/assistant"
	"github.com/legacy-vault/legacy_vault/internal/asset"
	"github.com/legacy-vault/legacy_vault/internal/auth"
	"github.com/legacy-vault/legacy_vault/internal/beneficiary"
	"github.com/legacy-vault/legacy_vault/internal/config"
	"github.com/legacy-vault/legacy_vault/internal/dms"
	"github.com/legacy-vault/legacy_vault/internal/email"
	"github.com/legacy-vault/legacy_vault/internal/identity"
	"github.com/legacy-vault/legacy_vault/internal/middleware"
	"github.com/legacy-vault/legacy_vault/internal/vaultgate"
	"github.com/legacy-vault/legacy_vault/internal/verification"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. It returns
// the DMS engine so main can run the periodic sweeper alongside the
// HTTP server.
func Setup(app *fiber.App, d Deps) (*dms.Engine, error) {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !isDev(d.Cfg.Env) {
		if d.DB == nil {
			return nil, fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.Env)
		}
		if d.Cache == nil {
			return nil, fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.Env)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	// Health
	RegisterHealthRoutes(app, d)

	// Repositories, Postgres-backed when a pool is present.
	var (
		userRepo        identity.Repository
		assetRepo       asset.Repository
		beneficiaryRepo beneficiary.Repository
		activityRepo    activity.Repository
	)
	if d.DB != nil {
		userRepo = identity.NewPostgresRepository(d.DB)
		assetRepo = asset.NewPostgresRepository(d.DB)
		beneficiaryRepo = beneficiary.NewPostgresRepository(d.DB)
		activityRepo = activity.NewPostgresRepository(d.DB)
	} else {
		userRepo = identity.NewMemoryRepository()
		assetRepo = asset.NewMemoryRepository()
		beneficiaryRepo = beneficiary.NewMemoryRepository()
		activityRepo = activity.NewMemoryRepository()
	}

	// Optional integrations get an explicit fallback at startup.
	var mailer email.Mailer
	if d.Cfg.EmailConfigured() {
		mailer = email.NewAPIMailer(d.Cfg.EmailAPIKey, d.Cfg.EmailAPIURL, d.Cfg.EmailFrom)
	} else {
		mailer = email.NewLoggerMailer(d.Logger)
	}
	var provider verification.Provider
	if d.Cfg.VerificationConfigured() {
		provider = verification.NewHTTPProvider(d.Cfg.VerifyAPIKey, d.Cfg.VerifyAPIURL)
	} else {
		provider = verification.StaticProvider{}
	}
	var aiClient assistant.Client
	if d.Cfg.AIConfigured() {
		aiClient = assistant.NewHTTPClient(d.Cfg.AIAPIKey, d.Cfg.AIAPIURL, d.Cfg.AIModel)
	} else {
		aiClient = assistant.Unavailable{}
	}

	// Services
	activitySvc := activity.NewService(activityRepo, d.Logger)
	identitySvc := identity.NewService(userRepo)
	assetSvc := asset.NewService(assetRepo, activitySvc)
	beneficiarySvc := beneficiary.NewService(beneficiaryRepo, mailer, activitySvc, d.Logger)
	tokens := auth.NewTokenService(d.Cfg.JWTSecret, d.Cfg.SessionTTL)
	engine := dms.NewEngine(userRepo, beneficiaryRepo, mailer, activitySvc, d.Cfg.ClaimURL, d.Logger)
	manager := verification.NewManager(beneficiaryRepo, userRepo, provider, mailer,
		activitySvc, d.Cfg.VaultURL, d.Logger)
	gate := vaultgate.NewGate(beneficiaryRepo, userRepo, assetSvc, activitySvc, d.Logger)
	assistantSvc := assistant.NewService(aiClient, d.Logger)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	RegisterIdentityRoutes(api, identitySvc, tokens, engine)
	claimLimiter := middleware.ClaimRateLimit(d.Cache, 5)
	RegisterClaimRoutes(api, d.Cfg, manager, gate, claimLimiter, d.Logger)

	// Protected routes
	authmw := middleware.Auth(tokens, userRepo)
	protected := api.Group("", authmw)
	RegisterDashboardRoutes(protected, identitySvc, engine, activitySvc, assetSvc, beneficiarySvc)
	RegisterAssetRoutes(protected, assetSvc)
	RegisterBeneficiaryRoutes(protected, beneficiarySvc, identitySvc)
	RegisterAssistantRoutes(protected, assistantSvc)

	return engine, nil
}

func isDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}
