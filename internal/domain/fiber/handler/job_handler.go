package handler

import (
	"context"
	"time"

	"github.com/frostlab63/sparkapply-sub000/internal/middleware"
	"github.com/frostlab63/sparkapply-sub000/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type JobIndexer interface {
	IndexJob(ctx context.Context, jobID uuid.UUID) error
}

type JobHandler struct {
	indexer JobIndexer
}

func NewJobHandler(indexer JobIndexer) *JobHandler {
	return &JobHandler{indexer: indexer}
}

func (h *JobHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/jobs/:jobId/embedding", middleware.RateLimiter(10, time.Minute), h.CreateEmbedding)
}

func (h *JobHandler) CreateEmbedding(c *fiber.Ctx) error {
	jobID, err := jobIDParam(c)
	if err != nil {
		return util.HandleError(c, "failed to create job embedding", err)
	}
	if err := h.indexer.IndexJob(c.UserContext(), jobID); err != nil {
		return util.HandleError(c, "failed to create job embedding", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Success create job embedding",
		Data:    fiber.Map{"job_id": jobID},
	})
}
