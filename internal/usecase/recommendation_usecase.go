package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/frostlab63/sparkapply-sub000/internal/apperror"
	"github.com/frostlab63/sparkapply-sub000/internal/config"
	"github.com/frostlab63/sparkapply-sub000/internal/logger"
	"github.com/frostlab63/sparkapply-sub000/internal/metrics"
	"github.com/frostlab63/sparkapply-sub000/internal/model"
	"github.com/frostlab63/sparkapply-sub000/internal/recommendation"
	"github.com/frostlab63/sparkapply-sub000/internal/repository"
	"golang.org/x/sync/errgroup"
)

// Users need this many liked, saved or applied matches to act as peers.
const minPeerPositive = 3

type RecommendationUsecase struct {
	matchRepo *repository.MatchRepository
	jobRepo   *repository.JobRepository
	profiles  ProfileProvider
	engine    *recommendation.Engine
	cfg       *config.MatchingConfig
	now       func() time.Time
}

func NewRecommendationUsecase(
	matchRepo *repository.MatchRepository,
	jobRepo *repository.JobRepository,
	profiles ProfileProvider,
	engine *recommendation.Engine,
	cfg *config.MatchingConfig,
) *RecommendationUsecase {
	return &RecommendationUsecase{
		matchRepo: matchRepo,
		jobRepo:   jobRepo,
		profiles:  profiles,
		engine:    engine,
		cfg:       cfg,
		now:       time.Now,
	}
}

type RecommendOptions struct {
	recommendation.Options
	ExcludeApplied bool
}

func (uc *RecommendationUsecase) DefaultRecommendOptions() RecommendOptions {
	opts := recommendation.DefaultOptions()
	opts.ExplorationRatio = uc.cfg.ExplorationRatio
	return RecommendOptions{Options: opts, ExcludeApplied: true}
}

// Recommend loads the profile, candidate jobs, the user's history and peer
// histories concurrently and ranks the candidates. Any failed fetch fails the
// whole request.
func (uc *RecommendationUsecase) Recommend(ctx context.Context, userID string, opts RecommendOptions) ([]recommendation.Recommendation, error) {
	if userID == "" {
		return nil, apperror.Validation("user id is required")
	}
	ctx, cancel := withTimeout(ctx, uc.cfg.OperationTimeout)
	defer cancel()
	start := uc.now()

	in := recommendation.Input{UserID: userID}
	var peers map[string][]model.Interaction

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := uc.profiles.GetUserProfile(gctx, userID)
		if err != nil {
			return apperror.Dependency("load profile", err)
		}
		in.Profile = p
		return nil
	})
	g.Go(func() error {
		jobs, err := uc.jobRepo.GetCandidateJobs(gctx, repository.CandidateFilter{
			UserID:         userID,
			ExcludeApplied: opts.ExcludeApplied,
			Limit:          uc.cfg.CandidateLimit,
			Now:            start,
		})
		if err != nil {
			return apperror.Dependency("load candidate jobs", err)
		}
		in.Candidates = jobs
		return nil
	})
	g.Go(func() error {
		history, err := uc.matchRepo.Interactions(gctx, userID)
		if err != nil {
			return apperror.Dependency("load interactions", err)
		}
		in.History = history
		return nil
	})
	g.Go(func() error {
		p, err := uc.matchRepo.PeerInteractions(gctx, userID, minPeerPositive)
		if err != nil {
			return apperror.Dependency("load peer interactions", err)
		}
		peers = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	in.Peers = toPeers(peers)

	recs := uc.engine.Recommend(in, opts.Options)

	elapsed := uc.now().Sub(start)
	metrics.RecommendationDuration.WithLabelValues("hybrid").Observe(elapsed.Seconds())
	for _, r := range recs {
		metrics.RecommendationsServed.WithLabelValues(string(r.Kind)).Inc()
	}
	logger.Ctx(ctx).Info().
		Str("user_id", userID).
		Int("candidates", len(in.Candidates)).
		Int("peers", len(in.Peers)).
		Int("count", len(recs)).
		Dur("duration", elapsed).
		Msg("generated recommendations")
	return recs, nil
}

func toPeers(m map[string][]model.Interaction) []recommendation.Peer {
	peers := make([]recommendation.Peer, 0, len(m))
	for id, interactions := range m {
		peers = append(peers, recommendation.Peer{UserID: id, Interactions: interactions})
	}
	sort.Slice(peers, func(i, j int) bool { return peers[i].UserID < peers[j].UserID })
	return peers
}

// UserPreferences summarises what the user reacted positively to.
func (uc *RecommendationUsecase) UserPreferences(ctx context.Context, userID string) (*recommendation.Preferences, error) {
	ctx, cancel := withTimeout(ctx, uc.cfg.OperationTimeout)
	defer cancel()

	history, err := uc.matchRepo.Interactions(ctx, userID)
	if err != nil {
		return nil, apperror.Dependency("load interactions", err)
	}
	p := recommendation.ExtractPreferences(history)
	return &p, nil
}
