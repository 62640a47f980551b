package middleware

import (
	"context"
	"time"

	"github.com/frostlab63/sparkapply-sub000/internal/logger"
	"github.com/frostlab63/sparkapply-sub000/internal/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const RequestIDHeader = fiber.HeaderXRequestID

// RequestLogger tags every request with a request id, stores a logger carrying
// it in the user context and records the request duration.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := c.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDHeader, requestID)

		l := logger.Logger.With().Str("request_id", requestID).Logger()
		c.SetUserContext(logger.WithContext(c.UserContext(), l))

		err := c.Next()
		if err != nil {
			// The error handler has to run first so the logged status is final.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		elapsed := time.Since(start)
		route := c.Route().Path
		metrics.RecordAPIRequest(c.Method(), route, status, elapsed)

		event := l.Info()
		switch {
		case status >= 500:
			event = l.Error()
		case status >= 400:
			event = l.Warn()
		}
		event.Str("method", c.Method()).
			Str("path", route).
			Int("status", status).
			Dur("duration", elapsed).
			Msg("HTTP request")
		return nil
	}
}

// Timeout bounds the user context of every request. Handlers pass it to
// usecases which stop waiting on collaborators once it expires.
func Timeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if d <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}
