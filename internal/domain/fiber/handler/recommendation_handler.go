package handler

import (
	"context"

	"github.com/frostlab63/sparkapply-sub000/internal/dto"
	"github.com/frostlab63/sparkapply-sub000/internal/recommendation"
	"github.com/frostlab63/sparkapply-sub000/internal/usecase"
	"github.com/frostlab63/sparkapply-sub000/internal/util"
	"github.com/gofiber/fiber/v2"
)

type RecommendationService interface {
	DefaultRecommendOptions() usecase.RecommendOptions
	Recommend(ctx context.Context, userID string, opts usecase.RecommendOptions) ([]recommendation.Recommendation, error)
	UserPreferences(ctx context.Context, userID string) (*recommendation.Preferences, error)
}

type SemanticService interface {
	Recommend(ctx context.Context, userID string, limit int) ([]recommendation.Recommendation, error)
}

type PerformanceReporter interface {
	PerformanceMetrics(ctx context.Context, userID string) (*usecase.PerformanceMetrics, error)
}

type RecommendationHandler struct {
	recs     RecommendationService
	semantic SemanticService
	perf     PerformanceReporter
}

func NewRecommendationHandler(recs RecommendationService, semantic SemanticService, perf PerformanceReporter) *RecommendationHandler {
	return &RecommendationHandler{recs: recs, semantic: semantic, perf: perf}
}

// RegisterRoutes mounts the recommendation routes. perUser runs inside the
// /recommendations/:userId group; /recommendations/metrics has no user and is
// registered ahead of it.
func (h *RecommendationHandler) RegisterRoutes(router fiber.Router, perUser ...fiber.Handler) {
	g := router.Group("/recommendations")
	g.Get("/metrics", withMiddleware(perUser, h.Metrics)...)

	u := g.Group("/:userId", perUser...)
	u.Get("/", h.Recommend)
	u.Get("/semantic", h.Semantic)
	u.Get("/preferences", h.Preferences)
}

func (h *RecommendationHandler) Recommend(c *fiber.Ctx) error {
	userID, err := userIDParam(c)
	if err != nil {
		return util.HandleError(c, "failed to get recommendations", err)
	}
	var q dto.RecommendationQuery
	if err := parseQuery(c, &q); err != nil {
		return util.HandleError(c, "failed to get recommendations", err)
	}

	opts := h.recs.DefaultRecommendOptions()
	if q.Limit > 0 {
		opts.Limit = q.Limit
	}
	if q.MinScore != nil {
		opts.MinScore = *q.MinScore
	}
	if q.DiversityFactor != nil {
		opts.DiversityFactor = *q.DiversityFactor
	}
	if q.Exploration != nil {
		opts.IncludeExploration = *q.Exploration
	}
	if q.ExcludeApplied != nil {
		opts.ExcludeApplied = *q.ExcludeApplied
	}

	recs, err := h.recs.Recommend(c.UserContext(), userID, opts)
	if err != nil {
		return util.HandleError(c, "failed to get recommendations", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get recommendations",
		Data:    recs,
		Meta:    fiber.Map{"count": len(recs), "limit": opts.Limit},
	})
}

func (h *RecommendationHandler) Semantic(c *fiber.Ctx) error {
	userID, err := userIDParam(c)
	if err != nil {
		return util.HandleError(c, "failed to get semantic recommendations", err)
	}
	var q dto.SemanticQuery
	if err := parseQuery(c, &q); err != nil {
		return util.HandleError(c, "failed to get semantic recommendations", err)
	}

	recs, err := h.semantic.Recommend(c.UserContext(), userID, q.Limit)
	if err != nil {
		return util.HandleError(c, "failed to get semantic recommendations", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get semantic recommendations",
		Data:    recs,
		Meta:    fiber.Map{"count": len(recs)},
	})
}

func (h *RecommendationHandler) Preferences(c *fiber.Ctx) error {
	userID, err := userIDParam(c)
	if err != nil {
		return util.HandleError(c, "failed to get preferences", err)
	}
	prefs, err := h.recs.UserPreferences(c.UserContext(), userID)
	if err != nil {
		return util.HandleError(c, "failed to get preferences", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get preferences",
		Data:    prefs,
	})
}

func (h *RecommendationHandler) Metrics(c *fiber.Ctx) error {
	var q dto.PerformanceQuery
	if err := parseQuery(c, &q); err != nil {
		return util.HandleError(c, "failed to get recommendation metrics", err)
	}
	pm, err := h.perf.PerformanceMetrics(c.UserContext(), q.UserID)
	if err != nil {
		return util.HandleError(c, "failed to get recommendation metrics", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get recommendation metrics",
		Data:    pm,
	})
}
