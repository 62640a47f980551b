package handler

import (
	"github.com/frostlab63/sparkapply-sub000/internal/apperror"
	"github.com/frostlab63/sparkapply-sub000/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func userIDParam(c *fiber.Ctx) (string, error) {
	id := c.Params("userId")
	if id == "" || len(id) > 64 {
		return "", apperror.Validation("invalid user id")
	}
	return id, nil
}

func jobIDParam(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("jobId"))
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid job id %q", c.Params("jobId"))
	}
	return id, nil
}

// parseQuery binds and validates query parameters into q.
func parseQuery(c *fiber.Ctx, q any) error {
	if err := c.QueryParser(q); err != nil {
		return apperror.Validation("invalid query parameters: %v", err)
	}
	return util.ValidateStruct(q)
}

// parseBody binds and validates the JSON body into req. An empty body leaves
// req at its zero value.
func parseBody(c *fiber.Ctx, req any) error {
	if len(c.Body()) == 0 {
		return util.ValidateStruct(req)
	}
	if err := c.BodyParser(req); err != nil {
		return apperror.Validation("invalid request body: %v", err)
	}
	return util.ValidateStruct(req)
}

func withMiddleware(mw []fiber.Handler, h fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(mw)+1)
	out = append(out, mw...)
	return append(out, h)
}
