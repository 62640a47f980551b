package usecase

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/frostlab63/sparkapply-sub000/internal/apperror"
	"github.com/frostlab63/sparkapply-sub000/internal/config"
	"github.com/frostlab63/sparkapply-sub000/internal/matching"
	"github.com/frostlab63/sparkapply-sub000/internal/model"
	"github.com/frostlab63/sparkapply-sub000/internal/recommendation"
	"github.com/frostlab63/sparkapply-sub000/internal/repository"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[string]*model.UserProfile
	err      error
}

func (f *fakeProfiles) GetUserProfile(_ context.Context, userID string) (*model.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// cachingProfiles keeps the first profile it reads until invalidated.
type cachingProfiles struct {
	source      ProfileProvider
	cached      map[string]*model.UserProfile
	invalidated []string
}

func (c *cachingProfiles) GetUserProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	if p, ok := c.cached[userID]; ok {
		cp := *p
		return &cp, nil
	}
	p, err := c.source.GetUserProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.cached[userID] = p
	return p, nil
}

func (c *cachingProfiles) Invalidate(_ context.Context, userID string) error {
	c.invalidated = append(c.invalidated, userID)
	delete(c.cached, userID)
	return nil
}

type publishedEvent struct {
	channel string
	payload any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, channel string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{channel, payload})
	return f.err
}

type fakeEmbedder struct {
	vec   []float32
	err   error
	texts []string
}

func (f *fakeEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	f.texts = append(f.texts, text)
	return f.vec, f.err
}

type fakeEmbeddingStore struct {
	upserts []*model.JobEmbedding
	nearest []repository.JobDistance
	topK    int
}

func (f *fakeEmbeddingStore) Upsert(_ context.Context, e *model.JobEmbedding) error {
	f.upserts = append(f.upserts, e)
	return nil
}

func (f *fakeEmbeddingStore) NearestJobs(_ context.Context, _ pgvector.Vector, _ time.Time, topK int) ([]repository.JobDistance, error) {
	f.topK = topK
	return f.nearest, nil
}

type fixture struct {
	db        *gorm.DB
	jobs      *repository.JobRepository
	matches   *repository.MatchRepository
	apps      *repository.ApplicationRepository
	profiles  *fakeProfiles
	publisher *fakePublisher
	cfg       *config.MatchingConfig
	matchUC   *MatchUsecase
	recUC     *RecommendationUsecase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(
		&model.Company{}, &model.Job{}, &model.UserProfile{}, &model.JobMatch{}, &model.Application{},
	))

	f := &fixture{
		db:        db,
		jobs:      repository.NewJobRepository(db),
		matches:   repository.NewMatchRepository(db),
		apps:      repository.NewApplicationRepository(db),
		profiles:  &fakeProfiles{profiles: map[string]*model.UserProfile{"u1": goProfile("u1")}},
		publisher: &fakePublisher{},
		cfg: &config.MatchingConfig{
			MinScore:         0.3,
			CandidateLimit:   100,
			ExplorationRatio: 0.2,
			OperationTimeout: 5 * time.Second,
		},
	}
	scorer := matching.NewDefaultScorer()
	f.matchUC = NewMatchUsecase(f.matches, f.jobs, f.apps, f.profiles, f.publisher, scorer, f.cfg)
	f.matchUC.now = func() time.Time { return testNow }

	engine := recommendation.NewEngine(scorer, recommendation.DefaultWeights(), rand.New(rand.NewSource(1)),
		recommendation.WithClock(func() time.Time { return testNow }))
	f.recUC = NewRecommendationUsecase(f.matches, f.jobs, f.profiles, engine, f.cfg)
	f.recUC.now = func() time.Time { return testNow }
	return f
}

func goProfile(userID string) *model.UserProfile {
	return &model.UserProfile{
		UserID:           userID,
		Skills:           []string{"go", "postgresql"},
		ExperienceLevel:  model.ExperienceSenior,
		Location:         "Berlin, Germany",
		RemotePreference: model.RemoteFull,
		IsActive:         true,
	}
}

func (f *fixture) goJob(t *testing.T, title, company string) *model.Job {
	t.Helper()
	return f.seedJob(t, &model.Job{
		Title:           title,
		CompanyName:     company,
		Location:        "Remote",
		RemoteType:      model.RemoteFull,
		ExperienceLevel: model.ExperienceSenior,
		Skills:          []string{"go", "postgresql"},
		Categories:      []string{"backend"},
	})
}

func (f *fixture) cobolJob(t *testing.T, title string) *model.Job {
	t.Helper()
	return f.seedJob(t, &model.Job{
		Title:           title,
		CompanyName:     "Legacy Corp",
		Location:        "Tokyo, Japan",
		RemoteType:      model.RemoteOnSite,
		ExperienceLevel: model.ExperienceEntry,
		Skills:          []string{"cobol", "mainframe"},
		Categories:      []string{"finance"},
	})
}

func (f *fixture) seedJob(t *testing.T, j *model.Job) *model.Job {
	t.Helper()
	j.IsActive = true
	if j.PostedDate.IsZero() {
		j.PostedDate = testNow.Add(-24 * time.Hour)
	}
	require.NoError(t, f.jobs.CreateJob(context.Background(), j))
	return j
}

func (f *fixture) seedMatch(t *testing.T, userID string, jobID uuid.UUID, score float64, action *model.UserAction, shown bool) {
	t.Helper()
	m := &model.JobMatch{
		UserID:             userID,
		JobID:              jobID,
		CompatibilityScore: score,
		UserAction:         action,
		ShownToUser:        shown,
		IsActive:           true,
		MatchVersion:       model.CurrentMatchVersion,
	}
	require.NoError(t, f.db.Create(m).Error)
}

func actionPtr(a model.UserAction) *model.UserAction { return &a }

func intPtr(v int) *int { return &v }

func isNotFound(err error) bool { return errors.Is(err, apperror.ErrNotFound) }

