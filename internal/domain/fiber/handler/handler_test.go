package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/frostlab63/sparkapply-sub000/internal/apperror"
	"github.com/frostlab63/sparkapply-sub000/internal/middleware"
	"github.com/frostlab63/sparkapply-sub000/internal/model"
	"github.com/frostlab63/sparkapply-sub000/internal/recommendation"
	"github.com/frostlab63/sparkapply-sub000/internal/response"
	"github.com/frostlab63/sparkapply-sub000/internal/usecase"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMatchService struct {
	generateOpts usecase.GenerateOptions
	listFilter   usecase.ListFilter
	action       usecase.ActionInput
	shownIDs     []uuid.UUID
	err          error
}

func (f *fakeMatchService) DefaultGenerateOptions() usecase.GenerateOptions {
	return usecase.GenerateOptions{Limit: 50, MinScore: 0.3, ExcludeApplied: true}
}

func (f *fakeMatchService) GenerateMatches(_ context.Context, userID string, opts usecase.GenerateOptions) ([]model.JobMatch, error) {
	f.generateOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	return []model.JobMatch{{UserID: userID, JobID: uuid.New(), CompatibilityScore: 0.85, IsActive: true}}, nil
}

func (f *fakeMatchService) RefreshMatches(context.Context, string) ([]model.JobMatch, error) {
	return nil, f.err
}

func (f *fakeMatchService) RecordAction(_ context.Context, userID string, jobID uuid.UUID, in usecase.ActionInput) (*model.JobMatch, error) {
	f.action = in
	if f.err != nil {
		return nil, f.err
	}
	a := model.UserAction(in.Action)
	return &model.JobMatch{UserID: userID, JobID: jobID, UserAction: &a}, nil
}

func (f *fakeMatchService) MarkShown(_ context.Context, _ string, ids []uuid.UUID) (int64, error) {
	f.shownIDs = ids
	return int64(len(ids)), f.err
}

func (f *fakeMatchService) ListMatches(_ context.Context, _ string, lf usecase.ListFilter) ([]model.JobMatch, *response.Pagination, error) {
	f.listFilter = lf
	if f.err != nil {
		return nil, nil, f.err
	}
	return []model.JobMatch{{CompatibilityScore: 0.65}}, response.NewPagination(lf.Page, lf.PageSize, 1, 1), nil
}

func (f *fakeMatchService) Deactivate(context.Context, string, uuid.UUID) error { return f.err }

func (f *fakeMatchService) Analytics(context.Context, string) (*usecase.MatchAnalytics, error) {
	return &usecase.MatchAnalytics{TotalMatches: 3}, f.err
}

func (f *fakeMatchService) Stats(context.Context, string) (*usecase.MatchStats, error) {
	return &usecase.MatchStats{Total: 3}, f.err
}

type fakeRecommendationService struct {
	opts usecase.RecommendOptions
	err  error
}

func (f *fakeRecommendationService) DefaultRecommendOptions() usecase.RecommendOptions {
	return usecase.RecommendOptions{Options: recommendation.DefaultOptions(), ExcludeApplied: true}
}

func (f *fakeRecommendationService) Recommend(_ context.Context, _ string, opts usecase.RecommendOptions) ([]recommendation.Recommendation, error) {
	f.opts = opts
	if f.err != nil {
		return nil, f.err
	}
	return []recommendation.Recommendation{{Job: &model.Job{Title: "Go Engineer"}, Score: 0.7, Kind: recommendation.KindCombined}}, nil
}

func (f *fakeRecommendationService) UserPreferences(context.Context, string) (*recommendation.Preferences, error) {
	return &recommendation.Preferences{InteractionCount: 4}, f.err
}

type fakeSemantic struct {
	limit int
	err   error
}

func (f *fakeSemantic) Recommend(_ context.Context, _ string, limit int) ([]recommendation.Recommendation, error) {
	f.limit = limit
	return []recommendation.Recommendation{}, f.err
}

type fakePerf struct{ userID string }

func (f *fakePerf) PerformanceMetrics(_ context.Context, userID string) (*usecase.PerformanceMetrics, error) {
	f.userID = userID
	return &usecase.PerformanceMetrics{TotalShown: 2}, nil
}

type fakeIndexer struct{ err error }

func (f *fakeIndexer) IndexJob(context.Context, uuid.UUID) error { return f.err }

type testServer struct {
	app      *fiber.App
	matches  *fakeMatchService
	recs     *fakeRecommendationService
	semantic *fakeSemantic
	perf     *fakePerf
	indexer  *fakeIndexer
}

func newTestServer() *testServer {
	s := &testServer{
		app:      fiber.New(),
		matches:  &fakeMatchService{},
		recs:     &fakeRecommendationService{},
		semantic: &fakeSemantic{},
		perf:     &fakePerf{},
		indexer:  &fakeIndexer{},
	}
	NewMatchHandler(s.matches).RegisterRoutes(s.app)
	NewRecommendationHandler(s.recs, s.semantic, s.perf).RegisterRoutes(s.app)
	NewJobHandler(s.indexer).RegisterRoutes(s.app)
	return s
}

type envelope struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message"`
	Data       json.RawMessage      `json:"data"`
	Pagination *response.Pagination `json:"pagination"`
	Details    json.RawMessage      `json:"details"`
}

func (s *testServer) do(t *testing.T, method, path, body string) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestGenerateMatchesAppliesBody(t *testing.T) {
	s := newTestServer()

	status, env := s.do(t, http.MethodPost, "/matches/u1/generate", `{"limit":5,"min_score":0.6,"exclude_applied":false}`)
	assert.Equal(t, http.StatusCreated, status)
	assert.True(t, env.Success)
	assert.Equal(t, 5, s.matches.generateOpts.Limit)
	assert.Equal(t, 0.6, s.matches.generateOpts.MinScore)
	assert.False(t, s.matches.generateOpts.ExcludeApplied)

	var data []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data, 1)
	assert.Equal(t, "excellent", data[0]["match_quality"])

	status, _ = s.do(t, http.MethodPost, "/matches/u1/generate", "")
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, 50, s.matches.generateOpts.Limit)
	assert.True(t, s.matches.generateOpts.ExcludeApplied)

	status, env = s.do(t, http.MethodPost, "/matches/u1/generate", `{"min_score":1.5}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)
	assert.Contains(t, string(env.Details), "min_score")
}

func TestRecordActionValidation(t *testing.T) {
	s := newTestServer()
	jobID := uuid.New()

	status, env := s.do(t, http.MethodPost, "/matches/u1/jobs/"+jobID.String()+"/action", `{"action":"liked","feedback_score":4}`)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.Equal(t, "liked", s.matches.action.Action)
	assert.Equal(t, 4, *s.matches.action.FeedbackScore)

	status, _ = s.do(t, http.MethodPost, "/matches/u1/jobs/"+jobID.String()+"/action", `{"action":"loved"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodPost, "/matches/u1/jobs/not-a-uuid/action", `{"action":"liked"}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestErrorKindsMapToStatus(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", apperror.ErrNotFound, http.StatusNotFound},
		{"validation", apperror.Validation("bad"), http.StatusBadRequest},
		{"dependency", apperror.Dependency("load profile", errors.New("timeout")), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer()
			s.matches.err = tc.err
			status, env := s.do(t, http.MethodDelete, "/matches/u1/jobs/"+uuid.NewString(), "")
			assert.Equal(t, tc.status, status)
			assert.False(t, env.Success)
		})
	}
}

func TestListMatchesQuery(t *testing.T) {
	s := newTestServer()

	status, env := s.do(t, http.MethodGet, "/matches/u1?min_score=0.5&action=liked&unshown=true&page=2&page_size=10", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, usecase.ListFilter{MinScore: 0.5, Action: "liked", OnlyUnshown: true, Page: 2, PageSize: 10}, s.matches.listFilter)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 2, env.Pagination.Page)

	status, _ = s.do(t, http.MethodGet, "/matches/u1?page_size=1000", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestMarkShown(t *testing.T) {
	s := newTestServer()
	id := uuid.New()

	status, _ := s.do(t, http.MethodPost, "/matches/u1/shown", `{"job_ids":["`+id.String()+`"]}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []uuid.UUID{id}, s.matches.shownIDs)

	status, _ = s.do(t, http.MethodPost, "/matches/u1/shown", `{"job_ids":["nope"]}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodPost, "/matches/u1/shown", `{"job_ids":[]}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRecommendationsQuery(t *testing.T) {
	s := newTestServer()

	status, env := s.do(t, http.MethodGet, "/recommendations/u1?limit=5&min_score=0.2&diversity_factor=0&exploration=false", "")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.Equal(t, 5, s.recs.opts.Limit)
	assert.Equal(t, 0.2, s.recs.opts.MinScore)
	assert.Zero(t, s.recs.opts.DiversityFactor)
	assert.False(t, s.recs.opts.IncludeExploration)
	assert.True(t, s.recs.opts.ExcludeApplied)

	var recs []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "combined", recs[0]["type"])

	s.recs.err = apperror.Dependency("load profile", errors.New("down"))
	status, _ = s.do(t, http.MethodGet, "/recommendations/u1", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestRecommendationSubroutes(t *testing.T) {
	s := newTestServer()

	status, _ := s.do(t, http.MethodGet, "/recommendations/metrics?user_id=u9", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "u9", s.perf.userID)

	status, _ = s.do(t, http.MethodGet, "/recommendations/u1/semantic?limit=7", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 7, s.semantic.limit)

	status, env := s.do(t, http.MethodGet, "/recommendations/u1/preferences", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"interaction_count":4`)
}

func TestCreateJobEmbedding(t *testing.T) {
	s := newTestServer()

	status, _ := s.do(t, http.MethodPost, "/jobs/"+uuid.NewString()+"/embedding", "")
	assert.Equal(t, http.StatusCreated, status)

	s.indexer.err = apperror.Dependency("semantic search", usecase.ErrSemanticDisabled)
	status, _ = s.do(t, http.MethodPost, "/jobs/"+uuid.NewString()+"/embedding", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestPerUserLimiterKeysOnUserID(t *testing.T) {
	app := fiber.New()
	api := app.Group("/api/v1")
	perUser := middleware.RateLimiter(1, time.Minute)
	NewMatchHandler(&fakeMatchService{}).RegisterRoutes(api, perUser)
	NewRecommendationHandler(&fakeRecommendationService{}, &fakeSemantic{}, &fakePerf{}).RegisterRoutes(api, perUser)

	get := func(path string) int {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusOK, get("/api/v1/matches/alice/stats"))
	assert.Equal(t, http.StatusOK, get("/api/v1/matches/bob/stats"))
	assert.Equal(t, http.StatusTooManyRequests, get("/api/v1/matches/alice/stats"))

	// one budget per user across both route groups
	assert.Equal(t, http.StatusTooManyRequests, get("/api/v1/recommendations/bob/preferences"))
	assert.Equal(t, http.StatusOK, get("/api/v1/recommendations/carol/preferences"))
}
