package middleware

import (
	"time"

	"github.com/frostlab63/sparkapply-sub000/internal/logger"
	"github.com/frostlab63/sparkapply-sub000/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimiter allows max requests per expiration window. Requests on routes
// with a :userId param are counted per user, everything else per client IP.
func RateLimiter(max int, expiration time.Duration) fiber.Handler {
	if max == 0 {
		max = 50
	}
	if expiration == 0 {
		expiration = 1 * time.Minute
	}
	return limiter.New(limiter.Config{
		Max:          max,
		Expiration:   expiration,
		KeyGenerator: rateLimitKey,
		LimitReached: func(c *fiber.Ctx) error {
			logger.Ctx(c.UserContext()).Warn().
				Str("key", rateLimitKey(c)).
				Str("path", c.Path()).
				Msg("rate limit reached")
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusTooManyRequests,
				Message: "Too many requests",
			})
		},
		LimiterMiddleware: limiter.SlidingWindow{},
	})
}

func rateLimitKey(c *fiber.Ctx) string {
	if userID := c.Params("userId"); userID != "" {
		return "user:" + userID
	}
	return "ip:" + c.IP()
}
