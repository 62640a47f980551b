package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/frostlab63/sparkapply-sub000/internal/apperror"
	"github.com/frostlab63/sparkapply-sub000/internal/config"
	"github.com/frostlab63/sparkapply-sub000/internal/logger"
	"github.com/frostlab63/sparkapply-sub000/internal/matching"
	"github.com/frostlab63/sparkapply-sub000/internal/metrics"
	"github.com/frostlab63/sparkapply-sub000/internal/model"
	"github.com/frostlab63/sparkapply-sub000/internal/repository"
	"github.com/frostlab63/sparkapply-sub000/internal/response"
	"github.com/frostlab63/sparkapply-sub000/internal/service"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type MatchUsecase struct {
	matchRepo *repository.MatchRepository
	jobRepo   *repository.JobRepository
	appRepo   *repository.ApplicationRepository
	profiles  ProfileProvider
	events    EventPublisher
	scorer    *matching.Scorer
	cfg       *config.MatchingConfig
	now       func() time.Time
}

func NewMatchUsecase(
	matchRepo *repository.MatchRepository,
	jobRepo *repository.JobRepository,
	appRepo *repository.ApplicationRepository,
	profiles ProfileProvider,
	events EventPublisher,
	scorer *matching.Scorer,
	cfg *config.MatchingConfig,
) *MatchUsecase {
	return &MatchUsecase{
		matchRepo: matchRepo,
		jobRepo:   jobRepo,
		appRepo:   appRepo,
		profiles:  profiles,
		events:    events,
		scorer:    scorer,
		cfg:       cfg,
		now:       time.Now,
	}
}

type GenerateOptions struct {
	Limit          int
	MinScore       float64
	ExcludeApplied bool
	IncludeExpired bool
}

func (uc *MatchUsecase) DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Limit:          50,
		MinScore:       uc.cfg.MinScore,
		ExcludeApplied: true,
	}
}

// GenerateMatches scores candidate jobs against the user's profile, stores
// every pair at or above MinScore and returns the best Limit active matches.
// Running it twice for the same inputs leaves one row per (user, job).
func (uc *MatchUsecase) GenerateMatches(ctx context.Context, userID string, opts GenerateOptions) ([]model.JobMatch, error) {
	if userID == "" {
		return nil, apperror.Validation("user id is required")
	}
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	ctx, cancel := withTimeout(ctx, uc.cfg.OperationTimeout)
	defer cancel()

	start := uc.now()
	log := logger.Ctx(ctx)

	profile, err := uc.profiles.GetUserProfile(ctx, userID)
	if err != nil {
		return nil, apperror.Dependency("load profile", err)
	}

	candidates, err := uc.jobRepo.GetCandidateJobs(ctx, repository.CandidateFilter{
		UserID:         userID,
		ExcludeApplied: opts.ExcludeApplied,
		IncludeExpired: opts.IncludeExpired,
		Limit:          opts.Limit * 3,
		Now:            start,
	})
	if err != nil {
		return nil, apperror.Dependency("load candidate jobs", err)
	}
	if len(candidates) == 0 {
		log.Info().Str("user_id", userID).Msg("no candidate jobs")
		return []model.JobMatch{}, nil
	}

	matches := make([]model.JobMatch, 0, len(candidates))
	for _, job := range candidates {
		result := uc.scorer.Score(profile, job)
		if result.Overall < opts.MinScore {
			continue
		}
		m := model.JobMatch{UserID: userID, JobID: job.ID, IsActive: true}
		applyResult(&m, result)
		if err := uc.matchRepo.UpsertMatch(ctx, &m); err != nil {
			return nil, apperror.Dependency("upsert match", err)
		}
		metrics.MatchesUpserted.Inc()
		if !m.IsActive {
			continue
		}
		m.Job = job
		matches = append(matches, m)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].CompatibilityScore > matches[j].CompatibilityScore
	})
	if len(matches) > opts.Limit {
		matches = matches[:opts.Limit]
	}

	elapsed := uc.now().Sub(start)
	metrics.MatchGenerationDuration.Observe(elapsed.Seconds())
	log.Info().
		Str("user_id", userID).
		Int("candidates", len(candidates)).
		Int("count", len(matches)).
		Dur("duration", elapsed).
		Msg("generated job matches")
	return matches, nil
}

// RefreshMatches rescores every active match of the user against the current
// profile and job data.
func (uc *MatchUsecase) RefreshMatches(ctx context.Context, userID string) ([]model.JobMatch, error) {
	if userID == "" {
		return nil, apperror.Validation("user id is required")
	}
	ctx, cancel := withTimeout(ctx, uc.cfg.OperationTimeout)
	defer cancel()

	if inv, ok := uc.profiles.(ProfileInvalidator); ok {
		if err := inv.Invalidate(ctx, userID); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("user_id", userID).Msg("profile cache invalidation failed")
		}
	}
	profile, err := uc.profiles.GetUserProfile(ctx, userID)
	if err != nil {
		return nil, apperror.Dependency("load profile", err)
	}
	matches, err := uc.matchRepo.ActiveMatchesWithJobs(ctx, userID)
	if err != nil {
		return nil, apperror.Dependency("load active matches", err)
	}

	updated := make([]model.JobMatch, 0, len(matches))
	for i := range matches {
		m := &matches[i]
		if m.Job == nil {
			continue
		}
		applyResult(m, uc.scorer.Score(profile, m.Job))
		if err := uc.matchRepo.SaveMatch(ctx, m); err != nil {
			return nil, apperror.Dependency("save match", err)
		}
		updated = append(updated, *m)
	}

	logger.Ctx(ctx).Info().Str("user_id", userID).Int("count", len(updated)).Msg("refreshed job matches")
	return updated, nil
}

func applyResult(m *model.JobMatch, r matching.Result) {
	m.CompatibilityScore = r.Overall
	m.SkillsScore = r.Skills
	m.ExperienceScore = r.Experience
	m.LocationScore = r.Location
	m.SalaryScore = r.Salary
	m.CultureScore = r.Culture
	m.MatchFactors = datatypes.NewJSONType(r.Factors)
	m.RecommendationReason = matching.RecommendationReason(r)
	m.MatchVersion = model.CurrentMatchVersion
}

type ActionInput struct {
	Action        string
	FeedbackScore *int
	FeedbackText  string
}

type matchActionEvent struct {
	UserID        string    `json:"user_id"`
	JobID         uuid.UUID `json:"job_id"`
	Action        string    `json:"action"`
	FeedbackScore *int      `json:"feedback_score,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// RecordAction stores the user's reaction to a match. Job counters and the
// published event are best effort: their failures are logged, not returned.
func (uc *MatchUsecase) RecordAction(ctx context.Context, userID string, jobID uuid.UUID, in ActionInput) (*model.JobMatch, error) {
	action, err := model.ParseUserAction(in.Action)
	if err != nil {
		return nil, apperror.Validation("%v", err)
	}
	if in.FeedbackScore != nil && (*in.FeedbackScore < 1 || *in.FeedbackScore > 5) {
		return nil, apperror.Validation("feedback score must be between 1 and 5")
	}
	ctx, cancel := withTimeout(ctx, uc.cfg.OperationTimeout)
	defer cancel()
	log := logger.Ctx(ctx)

	m, err := uc.matchRepo.FindMatch(ctx, userID, jobID)
	if err != nil {
		return nil, apperror.Dependency("find match", err)
	}
	if m == nil {
		return nil, fmt.Errorf("match %s/%s: %w", userID, jobID, apperror.ErrNotFound)
	}

	now := uc.now()
	m.RecordAction(action, now)
	if in.FeedbackScore != nil {
		m.FeedbackScore = in.FeedbackScore
	}
	if in.FeedbackText != "" {
		m.FeedbackText = in.FeedbackText
	}
	if err := uc.matchRepo.SaveMatch(ctx, m); err != nil {
		return nil, apperror.Dependency("save match", err)
	}
	metrics.MatchActions.WithLabelValues(string(action)).Inc()

	switch action {
	case model.ActionViewed:
		if err := uc.jobRepo.IncrementViewCount(ctx, jobID); err != nil {
			log.Warn().Err(err).Str("job_id", jobID.String()).Msg("increment view count")
		}
	case model.ActionApplied:
		if err := uc.jobRepo.IncrementApplicationCount(ctx, jobID); err != nil {
			log.Warn().Err(err).Str("job_id", jobID.String()).Msg("increment application count")
		}
		if err := uc.appRepo.Create(ctx, &model.Application{UserID: userID, JobID: jobID}); err != nil {
			log.Warn().Err(err).Str("job_id", jobID.String()).Msg("record application")
		}
	}

	event := matchActionEvent{
		UserID:        userID,
		JobID:         jobID,
		Action:        string(action),
		FeedbackScore: m.FeedbackScore,
		Timestamp:     now,
	}
	if err := uc.events.Publish(ctx, service.EventMatchAction, event); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("publish match action")
	}

	log.Info().Str("user_id", userID).Str("job_id", jobID.String()).Str("action", string(action)).Msg("recorded match action")
	return m, nil
}

// MarkShown flags the given matches as shown and returns how many changed.
func (uc *MatchUsecase) MarkShown(ctx context.Context, userID string, jobIDs []uuid.UUID) (int64, error) {
	if len(jobIDs) == 0 {
		return 0, apperror.Validation("job_ids must not be empty")
	}
	ctx, cancel := withTimeout(ctx, uc.cfg.OperationTimeout)
	defer cancel()

	n, err := uc.matchRepo.MarkShown(ctx, userID, jobIDs, uc.now())
	if err != nil {
		return 0, apperror.Dependency("mark shown", err)
	}
	return n, nil
}

type ListFilter struct {
	MinScore    float64
	Action      string
	OnlyUnshown bool
	Page        int
	PageSize    int
}

func (uc *MatchUsecase) ListMatches(ctx context.Context, userID string, f ListFilter) ([]model.JobMatch, *response.Pagination, error) {
	filter := repository.MatchFilter{MinScore: f.MinScore, OnlyUnshown: f.OnlyUnshown}
	if f.Action != "" {
		action, err := model.ParseUserAction(f.Action)
		if err != nil {
			return nil, nil, apperror.Validation("%v", err)
		}
		filter.Action = &action
	}
	ctx, cancel := withTimeout(ctx, uc.cfg.OperationTimeout)
	defer cancel()

	matches, total, err := uc.matchRepo.ListMatches(ctx, userID, filter, f.Page, f.PageSize)
	if err != nil {
		return nil, nil, apperror.Dependency("list matches", err)
	}
	return matches, response.NewPagination(f.Page, f.PageSize, total, len(matches)), nil
}

func (uc *MatchUsecase) Deactivate(ctx context.Context, userID string, jobID uuid.UUID) error {
	ctx, cancel := withTimeout(ctx, uc.cfg.OperationTimeout)
	defer cancel()

	return apperror.Dependency("deactivate match", uc.matchRepo.Deactivate(ctx, userID, jobID))
}
