package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/frostlab63/sparkapply-sub000/internal/apperror"
	"github.com/frostlab63/sparkapply-sub000/internal/config"
	"github.com/frostlab63/sparkapply-sub000/internal/logger"
	"github.com/frostlab63/sparkapply-sub000/internal/metrics"
	"github.com/frostlab63/sparkapply-sub000/internal/model"
	"github.com/frostlab63/sparkapply-sub000/internal/recommendation"
	"github.com/frostlab63/sparkapply-sub000/internal/repository"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

const semanticReason = "Similar to your profile"

var ErrSemanticDisabled = errors.New("semantic search is not configured")

type EmbeddingStore interface {
	Upsert(ctx context.Context, e *model.JobEmbedding) error
	NearestJobs(ctx context.Context, embedding pgvector.Vector, now time.Time, topK int) ([]repository.JobDistance, error)
}

// SemanticUsecase ranks jobs by embedding distance between the profile text
// and indexed job text.
type SemanticUsecase struct {
	jobRepo    *repository.JobRepository
	embeddings EmbeddingStore
	profiles   ProfileProvider
	embedder   Embedder
	model      string
	cfg        *config.MatchingConfig
	now        func() time.Time
}

// NewSemanticUsecase accepts a nil embedder; every call then fails with
// ErrSemanticDisabled.
func NewSemanticUsecase(
	jobRepo *repository.JobRepository,
	embeddings EmbeddingStore,
	profiles ProfileProvider,
	embedder Embedder,
	embeddingModel string,
	cfg *config.MatchingConfig,
) *SemanticUsecase {
	return &SemanticUsecase{
		jobRepo:    jobRepo,
		embeddings: embeddings,
		profiles:   profiles,
		embedder:   embedder,
		model:      embeddingModel,
		cfg:        cfg,
		now:        time.Now,
	}
}

func (uc *SemanticUsecase) enabled() error {
	if uc.embedder == nil || uc.embeddings == nil {
		return apperror.Dependency("semantic search", ErrSemanticDisabled)
	}
	return nil
}

func (uc *SemanticUsecase) IndexJob(ctx context.Context, jobID uuid.UUID) error {
	if err := uc.enabled(); err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx, uc.cfg.OperationTimeout)
	defer cancel()

	job, err := uc.jobRepo.FindJobByID(ctx, jobID)
	if err != nil {
		return apperror.Dependency("load job", err)
	}
	vec, err := uc.embedder.GenerateEmbedding(ctx, jobText(job))
	if err != nil {
		return apperror.Dependency("embed job", err)
	}
	err = uc.embeddings.Upsert(ctx, &model.JobEmbedding{
		JobID:     job.ID,
		Model:     uc.model,
		Embedding: pgvector.NewVector(vec),
	})
	if err != nil {
		return apperror.Dependency("store job embedding", err)
	}
	logger.Ctx(ctx).Info().Str("job_id", jobID.String()).Int("dimensions", len(vec)).Msg("indexed job embedding")
	return nil
}

func (uc *SemanticUsecase) Recommend(ctx context.Context, userID string, limit int) ([]recommendation.Recommendation, error) {
	if err := uc.enabled(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	ctx, cancel := withTimeout(ctx, uc.cfg.OperationTimeout)
	defer cancel()
	start := uc.now()

	profile, err := uc.profiles.GetUserProfile(ctx, userID)
	if err != nil {
		return nil, apperror.Dependency("load profile", err)
	}
	text := profileText(profile)
	if text == "" {
		return nil, apperror.Validation("profile %s has nothing to embed", userID)
	}
	vec, err := uc.embedder.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, apperror.Dependency("embed profile", err)
	}

	nearest, err := uc.embeddings.NearestJobs(ctx, pgvector.NewVector(vec), start, limit)
	if err != nil {
		return nil, apperror.Dependency("nearest jobs", err)
	}
	ids := make([]uuid.UUID, len(nearest))
	distance := make(map[uuid.UUID]float64, len(nearest))
	for i, n := range nearest {
		ids[i] = n.JobID
		distance[n.JobID] = n.Distance
	}
	jobs, err := uc.jobRepo.FindJobsByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.Dependency("load jobs", err)
	}

	recs := make([]recommendation.Recommendation, 0, len(jobs))
	for _, j := range jobs {
		recs = append(recs, recommendation.Recommendation{
			Job:    j,
			Score:  1 - distance[j.ID],
			Reason: semanticReason,
			Kind:   recommendation.KindSemantic,
		})
	}

	elapsed := uc.now().Sub(start)
	metrics.RecommendationDuration.WithLabelValues("semantic").Observe(elapsed.Seconds())
	metrics.RecommendationsServed.WithLabelValues(string(recommendation.KindSemantic)).Add(float64(len(recs)))
	logger.Ctx(ctx).Info().Str("user_id", userID).Int("count", len(recs)).Dur("duration", elapsed).Msg("generated semantic recommendations")
	return recs, nil
}

func jobText(j *model.Job) string {
	return fmt.Sprintf("Title: %s\nCompany: %s\nLocation: %s\nSkills: %s",
		j.Title, j.CompanyName, j.Location, strings.Join(j.Skills, ", "))
}

func profileText(p *model.UserProfile) string {
	var parts []string
	if len(p.Skills) > 0 {
		parts = append(parts, "Skills: "+strings.Join(p.Skills, ", "))
	}
	if p.ExperienceLevel != "" {
		parts = append(parts, "Experience: "+string(p.ExperienceLevel))
	}
	if p.Location != "" {
		parts = append(parts, "Location: "+p.Location)
	}
	if p.RemotePreference != "" {
		parts = append(parts, "Remote preference: "+string(p.RemotePreference))
	}
	if len(p.CulturePreferences) > 0 {
		parts = append(parts, "Culture: "+strings.Join(p.CulturePreferences, ", "))
	}
	return strings.Join(parts, "\n")
}
