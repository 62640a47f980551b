package recommendation

import (
	"math/rand"
	"testing"
	"time"

	"github.com/frostlab63/sparkapply-sub000/internal/matching"
	"github.com/frostlab63/sparkapply-sub000/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func newJob(title, company string, categories ...string) *model.Job {
	return &model.Job{
		ID:          uuid.New(),
		Title:       title,
		CompanyName: company,
		Categories:  categories,
		PostedDate:  now,
		IsActive:    true,
	}
}

func act(userID string, job *model.Job, a model.UserAction, at time.Time) model.Interaction {
	return model.Interaction{UserID: userID, JobID: job.ID, Action: a, Timestamp: at, Job: job}
}

func TestInteractionScore(t *testing.T) {
	assert.Equal(t, 1.0, InteractionScore(model.ActionApplied))
	assert.Equal(t, 0.8, InteractionScore(model.ActionLiked))
	assert.Equal(t, 0.6, InteractionScore(model.ActionSaved))
	assert.Equal(t, 0.3, InteractionScore(model.ActionViewed))
	assert.Equal(t, -0.5, InteractionScore(model.ActionDisliked))
	assert.Equal(t, -0.2, InteractionScore(model.ActionIgnored))
	assert.Equal(t, 0.0, InteractionScore("shared"))
}

func TestBuildVectorLatestActionWins(t *testing.T) {
	j := newJob("a", "x")
	v := BuildVector([]model.Interaction{
		act("u", j, model.ActionApplied, now),
		act("u", j, model.ActionLiked, now.Add(-time.Hour)),
	})
	assert.Equal(t, Vector{j.ID: 1.0}, v)

	viewed := BuildVector([]model.Interaction{act("u", j, model.ActionViewed, now)})
	assert.Empty(t, viewed)
}

func TestCosineSimilarity(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	assert.Equal(t, 0.0, CosineSimilarity(Vector{a: 1}, Vector{b: 1}))
	assert.InDelta(t, 1.0, CosineSimilarity(Vector{a: 1, b: 0.8}, Vector{a: 1, b: 0.8}), 1e-9)

	// norms include jobs that are not shared
	assert.InDelta(t, 1/(2.0), CosineSimilarity(Vector{a: 1, b: 1}, Vector{a: 1, c: 1}), 1e-9)
	assert.Less(t, CosineSimilarity(Vector{a: 1}, Vector{a: -0.5}), 0.0)
}

func TestFindSimilarUsers(t *testing.T) {
	j1, j2, j3, j4 := newJob("1", "x"), newJob("2", "x"), newJob("3", "x"), newJob("4", "x")
	target := BuildVector([]model.Interaction{
		act("me", j1, model.ActionLiked, now),
		act("me", j2, model.ActionApplied, now),
	})

	peers := []Peer{
		{UserID: "me", Interactions: []model.Interaction{
			act("me", j1, model.ActionLiked, now), act("me", j2, model.ActionApplied, now), act("me", j3, model.ActionSaved, now),
		}},
		{UserID: "close", Interactions: []model.Interaction{
			act("close", j1, model.ActionLiked, now), act("close", j2, model.ActionApplied, now), act("close", j3, model.ActionSaved, now),
		}},
		{UserID: "too-few", Interactions: []model.Interaction{
			act("too-few", j1, model.ActionLiked, now), act("too-few", j2, model.ActionApplied, now),
		}},
		{UserID: "disjoint", Interactions: []model.Interaction{
			act("disjoint", j3, model.ActionLiked, now), act("disjoint", j4, model.ActionApplied, now), act("disjoint", j4, model.ActionSaved, now.Add(-time.Hour)),
		}},
	}

	got := FindSimilarUsers("me", target, peers)
	require.Len(t, got, 1)
	assert.Equal(t, "close", got[0].UserID)
	assert.Greater(t, got[0].Similarity, 0.1)

	assert.Empty(t, FindSimilarUsers("me", Vector{}, peers))
}

func TestCollaborative(t *testing.T) {
	j1, j2, j3 := newJob("1", "x"), newJob("2", "x"), newJob("3", "x")
	candidate, unseen := newJob("cand", "y"), newJob("unseen", "y")

	history := []model.Interaction{
		act("me", j1, model.ActionLiked, now),
		act("me", j2, model.ActionApplied, now),
	}

	t.Run("no similar users", func(t *testing.T) {
		recs := Collaborative("me", history, nil, []*model.Job{candidate})
		require.Len(t, recs, 1)
		assert.Equal(t, 0.5, recs[0].Score)
		assert.Equal(t, "No similar users found", recs[0].Reason)
		assert.Equal(t, KindCollaborative, recs[0].Kind)
	})

	t.Run("peer signal", func(t *testing.T) {
		peers := []Peer{{UserID: "peer", Interactions: []model.Interaction{
			act("peer", j1, model.ActionLiked, now),
			act("peer", j2, model.ActionApplied, now),
			act("peer", j3, model.ActionSaved, now),
			{UserID: "peer", JobID: candidate.ID, Timestamp: now},
		}}}
		recs := Collaborative("me", history, peers, []*model.Job{unseen, candidate})
		require.Len(t, recs, 2)

		// a match without an action reads as viewed
		assert.Equal(t, candidate.ID, recs[1].Job.ID)
		assert.InDelta(t, 0.3, recs[1].Score, 1e-9)
		assert.Equal(t, "Based on 1 similar users", recs[0].Reason)
		assert.InDelta(t, 0.3, recs[0].Score, 1e-9)
	})
}

func TestContentScore(t *testing.T) {
	s := matching.NewDefaultScorer()
	p := &model.UserProfile{
		Skills:           []string{"go", "postgresql"},
		ExperienceLevel:  model.ExperienceMid,
		RemotePreference: model.RemoteFull,
	}
	perfect := &model.Job{Skills: []string{"go"}, ExperienceLevel: model.ExperienceMid, RemoteType: model.RemoteFull}
	assert.InDelta(t, 1.0, ContentScore(s, p, perfect), 1e-9)

	onsite := &model.Job{Skills: []string{"go"}, ExperienceLevel: model.ExperienceMid, RemoteType: model.RemoteOnSite}
	// location 0.3 for remote-preferring users, remote mismatch 0.5
	assert.InDelta(t, 0.4+0.2+0.2*0.3+0.2*0.5, ContentScore(s, p, onsite), 1e-9)

	recs := ContentBased(s, p, []*model.Job{onsite, perfect})
	assert.Equal(t, perfect, recs[0].Job)
	assert.Equal(t, "Based on your profile and preferences", recs[0].Reason)
}

func TestPopularityScore(t *testing.T) {
	fresh := newJob("fresh", "x")
	assert.InDelta(t, 0.6, PopularityScore(fresh, now), 1e-9)

	old := newJob("old", "x")
	old.PostedDate = now.AddDate(0, 0, -60)
	assert.InDelta(t, 0.4*0.1+0.2, PopularityScore(old, now), 1e-9)

	busy := newJob("busy", "x")
	busy.ViewCount = 200
	busy.ApplicationCount = 50
	busy.Company = &model.Company{IsVerified: true}
	assert.InDelta(t, (0.4+0.4+0.2)*1.2, PopularityScore(busy, now), 1e-9)

	undated := &model.Job{ID: uuid.New()}
	assert.InDelta(t, 0.24, PopularityScore(undated, now), 1e-9)

	recs := Popularity([]*model.Job{old, busy, fresh}, now)
	assert.Equal(t, []*model.Job{busy, fresh, old}, []*model.Job{recs[0].Job, recs[1].Job, recs[2].Job})
}

func TestCombine(t *testing.T) {
	a, b := newJob("a", "x"), newJob("b", "y")
	recs := Combine(DefaultWeights(),
		[]Recommendation{{Job: a, Score: 0.5, Reason: "c-a"}, {Job: b, Score: 1, Reason: "c-b"}},
		[]Recommendation{{Job: b, Score: 0.2, Reason: "cb-b"}, {Job: a, Score: 1, Reason: "cb-a"}},
		[]Recommendation{{Job: a, Score: 0.6, Reason: "p-a"}},
	)
	require.Len(t, recs, 2)
	assert.Equal(t, a, recs[0].Job)
	assert.InDelta(t, 0.2+0.3+0.12, recs[0].Score, 1e-9)
	assert.Equal(t, "c-a; cb-a; p-a", recs[0].Reason)
	assert.Equal(t, KindCombined, recs[0].Kind)
	assert.InDelta(t, 0.4+0.06, recs[1].Score, 1e-9)
}

func TestDiversifyNeverRaisesScores(t *testing.T) {
	a := newJob("a", "acme", "backend")
	b := newJob("b", "acme", "backend")
	c := newJob("c", "other", "frontend")
	in := []Recommendation{{Job: a, Score: 0.9}, {Job: b, Score: 0.85}, {Job: c, Score: 0.8}}

	out := Diversify(in, 0.5)
	require.Len(t, out, 3)
	assert.Equal(t, []*model.Job{a, c, b}, []*model.Job{out[0].Job, out[1].Job, out[2].Job})
	assert.InDelta(t, 0.85*(1-0.3*0.5), out[2].Score, 1e-9)
	assert.Equal(t, 0.85, out[2].OriginalScore)
	for _, r := range out {
		assert.LessOrEqual(t, r.Score, r.OriginalScore)
	}

	neg := Diversify([]Recommendation{{Job: a, Score: 0.1}, {Job: b, Score: -0.2}}, 1)
	assert.LessOrEqual(t, neg[1].Score, -0.2)

	assert.Equal(t, in, Diversify(in, 0))
}

func TestExploreIsDeterministicForSeed(t *testing.T) {
	var candidates []*model.Job
	for i := 0; i < 20; i++ {
		candidates = append(candidates, newJob("j", "c"))
	}
	var recs []Recommendation
	for _, j := range candidates[:10] {
		recs = append(recs, Recommendation{Job: j, Score: 0.9, Kind: KindCombined})
	}

	run := func() []Recommendation {
		e := NewEngine(matching.NewDefaultScorer(), DefaultWeights(), rand.New(rand.NewSource(7)))
		return e.Explore(recs, candidates, 0.2)
	}
	first, second := run(), run()
	require.Len(t, first, 12)
	assert.Equal(t, first, second)

	explored := 0
	for _, r := range first {
		if r.Kind == KindExploration {
			explored++
			assert.GreaterOrEqual(t, r.Score, 0.4)
			assert.Less(t, r.Score, 0.7)
			assert.Equal(t, "Explore new opportunities", r.Reason)
			for _, orig := range recs {
				assert.NotEqual(t, orig.Job.ID, r.Job.ID)
			}
		}
	}
	assert.Equal(t, 2, explored)
	assert.Len(t, recs, 10, "input is not modified")
}

func TestEngineRecommend(t *testing.T) {
	profile := &model.UserProfile{
		UserID:           "me",
		Skills:           []string{"go", "docker"},
		ExperienceLevel:  model.ExperienceSenior,
		RemotePreference: model.RemoteFull,
	}
	var candidates []*model.Job
	for i := 0; i < 10; i++ {
		j := newJob("Backend", "co", "backend")
		j.CompanyName = uuid.NewString()
		j.Skills = []string{"go"}
		j.RemoteType = model.RemoteFull
		j.ExperienceLevel = model.ExperienceSenior
		candidates = append(candidates, j)
	}

	e := NewEngine(matching.NewDefaultScorer(), DefaultWeights(), rand.New(rand.NewSource(1)), WithClock(func() time.Time { return now }))

	opts := DefaultOptions()
	opts.Limit = 5
	recs := e.Recommend(Input{UserID: "me", Profile: profile, Candidates: candidates}, opts)
	require.Len(t, recs, 5)
	for _, r := range recs {
		assert.GreaterOrEqual(t, r.Score, opts.MinScore)
	}

	opts.MinScore = 0.99
	assert.Empty(t, e.Recommend(Input{UserID: "me", Profile: profile, Candidates: candidates}, opts))
	assert.Empty(t, e.Recommend(Input{UserID: "me", Profile: profile}, DefaultOptions()))
}

func TestExtractPreferences(t *testing.T) {
	a := newJob("a", "Acme")
	a.Skills = []string{"go", "sql"}
	a.Location = "Berlin"
	a.RemoteType = model.RemoteHybrid
	a.ExperienceLevel = model.ExperienceMid
	a.SalaryMin, a.SalaryMax = intp(60000), intp(80000)
	b := newJob("b", "Acme")
	b.Skills = []string{"go"}
	b.SalaryMin, b.SalaryMax = intp(90000), intp(120000)
	c := newJob("c", "Ignored Inc")

	p := ExtractPreferences([]model.Interaction{
		act("me", a, model.ActionApplied, now),
		act("me", b, model.ActionSaved, now),
		act("me", c, model.ActionDisliked, now),
	})
	assert.Equal(t, map[string]int{"Acme": 2}, p.Companies)
	assert.Equal(t, map[string]int{"go": 2, "sql": 1}, p.Skills)
	assert.Equal(t, map[string]int{"Berlin": 1}, p.Locations)
	assert.Equal(t, map[string]int{"hybrid": 1}, p.RemoteTypes)
	assert.Equal(t, SalaryBand{Min: 60000, Max: 120000}, p.Salary)
	assert.Equal(t, 3, p.InteractionCount)
}

func intp(v int) *int { return &v }
