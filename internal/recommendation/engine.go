// Package recommendation ranks candidate jobs for a user by blending
// collaborative, content-based and popularity signals.
package recommendation

import (
	"math/rand"
	"sync"
	"time"

	"github.com/frostlab63/sparkapply-sub000/internal/matching"
	"github.com/frostlab63/sparkapply-sub000/internal/model"
	"github.com/google/uuid"
)

const explorationReason = "Explore new opportunities"

type Options struct {
	Limit              int
	MinScore           float64
	DiversityFactor    float64
	IncludeExploration bool
	ExplorationRatio   float64
}

func DefaultOptions() Options {
	return Options{
		Limit:              20,
		MinScore:           0.1,
		DiversityFactor:    0.3,
		IncludeExploration: true,
		ExplorationRatio:   0.2,
	}
}

// Input is everything a recommendation run needs, fetched up front.
type Input struct {
	UserID     string
	Profile    *model.UserProfile
	Candidates []*model.Job
	History    []model.Interaction
	Peers      []Peer
}

type Engine struct {
	scorer  *matching.Scorer
	weights Weights
	now     func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

type EngineOption func(*Engine)

func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

func NewEngine(scorer *matching.Scorer, weights Weights, rng *rand.Rand, opts ...EngineOption) *Engine {
	e := &Engine{scorer: scorer, weights: weights, rng: rng, now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) Recommend(in Input, opts Options) []Recommendation {
	if len(in.Candidates) == 0 || in.Profile == nil {
		return []Recommendation{}
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultOptions().Limit
	}

	collab := Collaborative(in.UserID, in.History, in.Peers, in.Candidates)
	content := ContentBased(e.scorer, in.Profile, in.Candidates)
	popular := Popularity(in.Candidates, e.now())

	recs := Combine(e.weights, collab, content, popular)
	recs = Diversify(recs, opts.DiversityFactor)
	if len(recs) > opts.Limit {
		recs = recs[:opts.Limit]
	}
	if opts.IncludeExploration {
		recs = e.Explore(recs, in.Candidates, opts.ExplorationRatio)
	}

	out := make([]Recommendation, 0, len(recs))
	for _, r := range recs {
		if r.Score >= opts.MinScore {
			out = append(out, r)
		}
	}
	if len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}

// Explore splices floor(len(recs)*ratio) randomly chosen, not yet recommended
// candidates into random positions with a random score in [0.4, 0.7).
func (e *Engine) Explore(recs []Recommendation, candidates []*model.Job, ratio float64) []Recommendation {
	n := int(float64(len(recs)) * ratio)
	if n <= 0 {
		return recs
	}
	recommended := make(map[uuid.UUID]bool, len(recs))
	for _, r := range recs {
		recommended[r.Job.ID] = true
	}
	pool := make([]*model.Job, 0, len(candidates))
	for _, j := range candidates {
		if !recommended[j.ID] {
			pool = append(pool, j)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Recommendation, len(recs), len(recs)+n)
	copy(out, recs)
	for i := 0; i < n && len(pool) > 0; i++ {
		idx := e.rng.Intn(len(pool))
		job := pool[idx]
		pool = append(pool[:idx], pool[idx+1:]...)

		item := Recommendation{
			Job:    job,
			Score:  0.4 + e.rng.Float64()*0.3,
			Reason: explorationReason,
			Kind:   KindExploration,
		}
		pos := e.rng.Intn(len(out) + 1)
		out = append(out, Recommendation{})
		copy(out[pos+1:], out[pos:])
		out[pos] = item
	}
	return out
}
