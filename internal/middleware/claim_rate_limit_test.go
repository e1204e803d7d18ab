package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func setupClaimApp(t *testing.T, maxPerMin int) (*fiber.App, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	app := fiber.New()
	app.Post("/claim", ClaimRateLimit(cache, maxPerMin), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	cleanup := func() {
		cache.Close()
		mr.Close()
	}

	return app, cleanup
}

func TestClaimRateLimitBlocksAfterLimit(t *testing.T) {
	app, cleanup := setupClaimApp(t, 3)
	defer cleanup()

	body := `{"access_key":"deadbeef"}`
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(fiber.MethodPost, "/claim", strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("request %d: expected 200 got %d", i, resp.StatusCode)
		}
	}

	req := httptest.NewRequest(fiber.MethodPost, "/claim", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("over-limit request: %v", err)
	}
	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", resp.StatusCode)
	}
}

func TestClaimRateLimitIsPerKey(t *testing.T) {
	app, cleanup := setupClaimApp(t, 1)
	defer cleanup()

	for _, key := range []string{"key-one", "key-two"} {
		req := httptest.NewRequest(fiber.MethodPost, "/claim",
			strings.NewReader(`{"access_key":"`+key+`"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request for %s: %v", key, err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("key %s should have its own budget, got %d", key, resp.StatusCode)
		}
	}
}

func TestClaimRateLimitFailsOpenWithoutRedis(t *testing.T) {
	app := fiber.New()
	app.Post("/claim", ClaimRateLimit(nil, 1), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(fiber.MethodPost, "/claim", strings.NewReader(`{}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("expected fail-open 200, got %d", resp.StatusCode)
		}
	}
}
