package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// ClaimRateLimit throttles claim attempts per access key, or per IP
// when no key is supplied, using Redis if available. Access keys are
// unguessable but long-lived, so brute forcing must stay expensive.
func ClaimRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next() // no-op without Redis
		}
		var req struct {
			AccessKey string `json:"access_key"`
		}
		_ = c.BodyParser(&req)
		key := strings.TrimSpace(req.AccessKey)
		if key == "" {
			key = c.IP()
		}
		rlKey := "rl:claim:" + key
		cnt, err := cache.Incr(c.UserContext(), rlKey).Result()
		if err == nil && cnt == 1 {
			cache.Expire(c.UserContext(), rlKey, time.Minute)
		}
		if err != nil {
			return c.Next() // fail-open on cache errors
		}
		if cnt > int64(maxPerMin) {
			return fiber.NewError(http.StatusTooManyRequests, "too many claim attempts, try again later")
		}
		return c.Next()
	}
}
