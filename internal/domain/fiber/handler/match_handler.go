package handler

import (
	"context"
	"time"

	"github.com/frostlab63/sparkapply-sub000/internal/dto"
	"github.com/frostlab63/sparkapply-sub000/internal/model"
	"github.com/frostlab63/sparkapply-sub000/internal/response"
	"github.com/frostlab63/sparkapply-sub000/internal/usecase"
	"github.com/frostlab63/sparkapply-sub000/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type MatchService interface {
	DefaultGenerateOptions() usecase.GenerateOptions
	GenerateMatches(ctx context.Context, userID string, opts usecase.GenerateOptions) ([]model.JobMatch, error)
	RefreshMatches(ctx context.Context, userID string) ([]model.JobMatch, error)
	RecordAction(ctx context.Context, userID string, jobID uuid.UUID, in usecase.ActionInput) (*model.JobMatch, error)
	MarkShown(ctx context.Context, userID string, jobIDs []uuid.UUID) (int64, error)
	ListMatches(ctx context.Context, userID string, f usecase.ListFilter) ([]model.JobMatch, *response.Pagination, error)
	Deactivate(ctx context.Context, userID string, jobID uuid.UUID) error
	Analytics(ctx context.Context, userID string) (*usecase.MatchAnalytics, error)
	Stats(ctx context.Context, userID string) (*usecase.MatchStats, error)
}

type MatchHandler struct {
	uc  MatchService
	now func() time.Time
}

func NewMatchHandler(uc MatchService) *MatchHandler {
	return &MatchHandler{uc: uc, now: time.Now}
}

// RegisterRoutes mounts the match routes. perUser runs inside the
// /matches/:userId group, so it can read the userId param.
func (h *MatchHandler) RegisterRoutes(router fiber.Router, perUser ...fiber.Handler) {
	g := router.Group("/matches/:userId", perUser...)
	g.Get("/", h.List)
	g.Post("/generate", h.Generate)
	g.Post("/refresh", h.Refresh)
	g.Post("/shown", h.MarkShown)
	g.Get("/analytics", h.Analytics)
	g.Get("/stats", h.Stats)
	g.Post("/jobs/:jobId/action", h.RecordAction)
	g.Delete("/jobs/:jobId", h.Deactivate)
}

func (h *MatchHandler) List(c *fiber.Ctx) error {
	userID, err := userIDParam(c)
	if err != nil {
		return util.HandleError(c, "failed to list matches", err)
	}
	var q dto.ListMatchesQuery
	if err := parseQuery(c, &q); err != nil {
		return util.HandleError(c, "failed to list matches", err)
	}

	matches, page, err := h.uc.ListMatches(c.UserContext(), userID, usecase.ListFilter{
		MinScore:    q.MinScore,
		Action:      q.Action,
		OnlyUnshown: q.Unshown,
		Page:        q.Page,
		PageSize:    q.PageSize,
	})
	if err != nil {
		return util.HandleError(c, "failed to list matches", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success get matches",
		Data:       dto.NewMatchDTOs(matches, h.now()),
		Pagination: page,
	})
}

func (h *MatchHandler) Generate(c *fiber.Ctx) error {
	userID, err := userIDParam(c)
	if err != nil {
		return util.HandleError(c, "failed to generate matches", err)
	}
	var req dto.GenerateMatchesRequest
	if err := parseBody(c, &req); err != nil {
		return util.HandleError(c, "failed to generate matches", err)
	}

	opts := h.uc.DefaultGenerateOptions()
	if req.Limit > 0 {
		opts.Limit = req.Limit
	}
	if req.MinScore != nil {
		opts.MinScore = *req.MinScore
	}
	if req.ExcludeApplied != nil {
		opts.ExcludeApplied = *req.ExcludeApplied
	}
	opts.IncludeExpired = req.IncludeExpired

	matches, err := h.uc.GenerateMatches(c.UserContext(), userID, opts)
	if err != nil {
		return util.HandleError(c, "failed to generate matches", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Success generate matches",
		Data:    dto.NewMatchDTOs(matches, h.now()),
		Meta:    fiber.Map{"count": len(matches)},
	})
}

func (h *MatchHandler) Refresh(c *fiber.Ctx) error {
	userID, err := userIDParam(c)
	if err != nil {
		return util.HandleError(c, "failed to refresh matches", err)
	}
	matches, err := h.uc.RefreshMatches(c.UserContext(), userID)
	if err != nil {
		return util.HandleError(c, "failed to refresh matches", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success refresh matches",
		Data:    dto.NewMatchDTOs(matches, h.now()),
		Meta:    fiber.Map{"count": len(matches)},
	})
}

func (h *MatchHandler) RecordAction(c *fiber.Ctx) error {
	userID, err := userIDParam(c)
	if err != nil {
		return util.HandleError(c, "failed to record action", err)
	}
	jobID, err := jobIDParam(c)
	if err != nil {
		return util.HandleError(c, "failed to record action", err)
	}
	var req dto.MatchActionRequest
	if err := parseBody(c, &req); err != nil {
		return util.HandleError(c, "failed to record action", err)
	}

	m, err := h.uc.RecordAction(c.UserContext(), userID, jobID, usecase.ActionInput{
		Action:        req.Action,
		FeedbackScore: req.FeedbackScore,
		FeedbackText:  req.FeedbackText,
	})
	if err != nil {
		return util.HandleError(c, "failed to record action", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success record action",
		Data:    dto.NewMatchDTO(*m, h.now()),
	})
}

func (h *MatchHandler) MarkShown(c *fiber.Ctx) error {
	userID, err := userIDParam(c)
	if err != nil {
		return util.HandleError(c, "failed to mark matches as shown", err)
	}
	var req dto.MarkShownRequest
	if err := parseBody(c, &req); err != nil {
		return util.HandleError(c, "failed to mark matches as shown", err)
	}
	ids := make([]uuid.UUID, 0, len(req.JobIDs))
	for _, s := range req.JobIDs {
		ids = append(ids, uuid.MustParse(s))
	}

	n, err := h.uc.MarkShown(c.UserContext(), userID, ids)
	if err != nil {
		return util.HandleError(c, "failed to mark matches as shown", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success mark matches as shown",
		Data:    fiber.Map{"updated": n},
	})
}

func (h *MatchHandler) Deactivate(c *fiber.Ctx) error {
	userID, err := userIDParam(c)
	if err != nil {
		return util.HandleError(c, "failed to deactivate match", err)
	}
	jobID, err := jobIDParam(c)
	if err != nil {
		return util.HandleError(c, "failed to deactivate match", err)
	}
	if err := h.uc.Deactivate(c.UserContext(), userID, jobID); err != nil {
		return util.HandleError(c, "failed to deactivate match", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success deactivate match",
	})
}

func (h *MatchHandler) Analytics(c *fiber.Ctx) error {
	userID, err := userIDParam(c)
	if err != nil {
		return util.HandleError(c, "failed to get match analytics", err)
	}
	a, err := h.uc.Analytics(c.UserContext(), userID)
	if err != nil {
		return util.HandleError(c, "failed to get match analytics", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get match analytics",
		Data:    a,
	})
}

func (h *MatchHandler) Stats(c *fiber.Ctx) error {
	userID, err := userIDParam(c)
	if err != nil {
		return util.HandleError(c, "failed to get match stats", err)
	}
	s, err := h.uc.Stats(c.UserContext(), userID)
	if err != nil {
		return util.HandleError(c, "failed to get match stats", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get match stats",
		Data:    s,
	})
}
