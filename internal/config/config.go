package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName        = "LegacyVault"
	defaultAppEnv         = "development"
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultBaseURL        = "http://localhost:8080"
	defaultShutdownDelay  = 10 * time.Second
	defaultIdempotencyTTL = 24 * time.Hour
	defaultSessionTTL     = 24 * time.Hour
	defaultSweepInterval  = time.Hour
	defaultEmailAPIURL    = "https://api.resend.com"
	defaultEmailFrom      = "Legacy Vault <onboarding@resend.dev>"
	defaultAIAPIURL       = "https://api.groq.com/openai/v1"
	defaultAIModel        = "llama-3.1-70b-versatile"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string
	Env            string
	Port           string
	LogLevel       string
	BaseURL        string
	DatabaseURL    string
	RedisURL       string
	JWTSecret      string
	SessionTTL     time.Duration
	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration
	SweepInterval  time.Duration

	// Optional integrations. When a key is empty the corresponding
	// component is wired with an explicit stub at startup, never
	// lazily on first use.
	EmailAPIKey         string
	EmailAPIURL         string
	EmailFrom           string
	VerifyAPIKey        string
	VerifyAPIURL        string
	VerifyWebhookSecret string
	AIAPIKey            string
	AIAPIURL            string
	AIModel             string
}

// Load reads configuration from the environment and validates required
// credentials up front so a missing secret fails at boot, not on first use.
func Load() (Config, error) {
	cfg := Config{
		AppName:        getEnv("APP_NAME", defaultAppName),
		Env:            strings.ToLower(getEnv("APP_ENV", defaultAppEnv)),
		Port:           getEnv("PORT", defaultPort),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		BaseURL:        strings.TrimRight(getEnv("BASE_URL", defaultBaseURL), "/"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		SessionTTL:     defaultSessionTTL,
		ShutdownPeriod: defaultShutdownDelay,
		IdempotencyTTL: defaultIdempotencyTTL,
		SweepInterval:  defaultSweepInterval,

		EmailAPIKey:         os.Getenv("EMAIL_API_KEY"),
		EmailAPIURL:         strings.TrimRight(getEnv("EMAIL_API_URL", defaultEmailAPIURL), "/"),
		EmailFrom:           getEnv("EMAIL_FROM", defaultEmailFrom),
		VerifyAPIKey:        os.Getenv("VERIFY_API_KEY"),
		VerifyAPIURL:        strings.TrimRight(os.Getenv("VERIFY_API_URL"), "/"),
		VerifyWebhookSecret: os.Getenv("VERIFY_WEBHOOK_SECRET"),
		AIAPIKey:            os.Getenv("AI_API_KEY"),
		AIAPIURL:            strings.TrimRight(getEnv("AI_API_URL", defaultAIAPIURL), "/"),
		AIModel:             getEnv("AI_MODEL", defaultAIModel),
	}

	var err error
	if cfg.SessionTTL, err = durationEnv("SESSION_TTL", cfg.SessionTTL); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownPeriod, err = durationEnv("SHUTDOWN_TIMEOUT", cfg.ShutdownPeriod); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationEnv("IDEMPOTENCY_TTL", cfg.IdempotencyTTL); err != nil {
		return Config{}, err
	}
	if cfg.SweepInterval, err = durationEnv("DMS_SWEEP_INTERVAL", cfg.SweepInterval); err != nil {
		return Config{}, err
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL must be set")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("REDIS_URL must be set")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET must be set")
	}
	if cfg.VerifyAPIKey != "" && cfg.VerifyAPIURL == "" {
		return Config{}, fmt.Errorf("VERIFY_API_URL must be set when VERIFY_API_KEY is configured")
	}
	if cfg.VerifyAPIKey != "" && cfg.VerifyWebhookSecret == "" {
		return Config{}, fmt.Errorf("VERIFY_WEBHOOK_SECRET must be set when VERIFY_API_KEY is configured")
	}

	return cfg, nil
}

// EmailConfigured reports whether a real transactional email sender is available.
func (c Config) EmailConfigured() bool {
	return c.EmailAPIKey != ""
}

// VerificationConfigured reports whether the external identity provider is available.
func (c Config) VerificationConfigured() bool {
	return c.VerifyAPIKey != ""
}

// AIConfigured reports whether the text-completion service is available.
func (c Config) AIConfigured() bool {
	return c.AIAPIKey != ""
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// ClaimURL builds the public claim link emailed to a beneficiary.
func (c Config) ClaimURL(accessKey string) string {
	return fmt.Sprintf("%s/claim?key=%s", c.BaseURL, accessKey)
}

// VaultURL builds the public vault link for a verified beneficiary.
func (c Config) VaultURL(accessKey string) string {
	return fmt.Sprintf("%s/vault/%s", c.BaseURL, accessKey)
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	if v := os.Getenv(key + "_SECONDS"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s_SECONDS: %w", key, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		return d, nil
	}
	return fallback, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
