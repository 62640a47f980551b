// Package scheduler runs the periodic match refresh for every user the
// configured UserLister reports.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/frostlab63/sparkapply-sub000/internal/logger"
	"github.com/frostlab63/sparkapply-sub000/internal/model"
	"github.com/frostlab63/sparkapply-sub000/internal/usecase"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

type UserLister interface {
	ListActiveUserIDs(ctx context.Context) ([]string, error)
}

type MatchGenerator interface {
	DefaultGenerateOptions() usecase.GenerateOptions
	GenerateMatches(ctx context.Context, userID string, opts usecase.GenerateOptions) ([]model.JobMatch, error)
}

// Scheduler wraps robfig/cron and manages the refresh loop.
type Scheduler struct {
	cron        *cron.Cron
	users       UserLister
	matches     MatchGenerator
	spec        string // cron spec, e.g. "@every 6h"
	concurrency int
	running     atomic.Bool
	initial     sync.WaitGroup
}

func New(users UserLister, matches MatchGenerator, spec string, concurrency int) *Scheduler {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Scheduler{
		cron:        cron.New(),
		users:       users,
		matches:     matches,
		spec:        spec,
		concurrency: concurrency,
	}
}

// Start registers the job and starts the scheduler. One refresh also runs
// immediately so matches exist without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	logger.Info().Str("spec", s.spec).Msg("match refresh scheduler started")

	s.initial.Add(1)
	go func() {
		defer s.initial.Done()
		s.RunOnce(ctx)
	}()
	return nil
}

// Stop halts the scheduler and waits up to timeout for running refreshes,
// the one started by Start included.
func (s *Scheduler) Stop(timeout time.Duration) {
	cronDone := s.cron.Stop()
	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.initial.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		logger.Warn().Msg("match refresh still running at shutdown")
	}
	logger.Info().Msg("match refresh scheduler stopped")
}

// RunOnce generates matches for every active user. Failures for one user are
// logged and do not stop the others. A call while a cycle is in progress is
// a no-op.
func (s *Scheduler) RunOnce(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		logger.Warn().Msg("match refresh already running, skipping")
		return
	}
	defer s.running.Store(false)

	start := time.Now()
	users, err := s.users.ListActiveUserIDs(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("list active users")
		return
	}
	if len(users) == 0 {
		logger.Info().Msg("no active users, nothing to refresh")
		return
	}

	var failed atomic.Int64
	opts := s.matches.DefaultGenerateOptions()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, id := range users {
		g.Go(func() error {
			if _, err := s.matches.GenerateMatches(gctx, id, opts); err != nil {
				failed.Add(1)
				logger.Warn().Err(err).Str("user_id", id).Msg("refresh matches")
			}
			return nil
		})
	}
	_ = g.Wait()

	logger.Info().
		Int("count", len(users)).
		Int64("failed", failed.Load()).
		Dur("duration", time.Since(start)).
		Msg("match refresh cycle complete")
}
