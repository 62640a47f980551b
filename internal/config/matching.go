package config

import (
	"sync"
	"time"
)

type MatchingConfig struct {
	MinScore           float64
	CandidateLimit     int
	RefreshCron        string
	RefreshConcurrency int
	RecommendationSeed int64
	ExplorationRatio   float64
	OperationTimeout   time.Duration
}

var (
	matchingConfig *MatchingConfig
	matchingOnce   sync.Once
)

func LoadMatchingConfig() *MatchingConfig {
	matchingOnce.Do(func() {
		matchingConfig = &MatchingConfig{
			MinScore:           getFloat("MATCH_MIN_SCORE", 0.3),
			CandidateLimit:     getInt("MATCH_CANDIDATE_LIMIT", 1000),
			RefreshCron:        getEnv("MATCH_REFRESH_CRON", "@every 6h"),
			RefreshConcurrency: getInt("MATCH_REFRESH_CONCURRENCY", 4),
			RecommendationSeed: int64(getInt("RECOMMENDATION_SEED", 0)),
			ExplorationRatio:   getFloat("EXPLORATION_RATIO", 0.2),
			OperationTimeout:   getDuration("MATCH_OPERATION_TIMEOUT", 15*time.Second),
		}
	})
	return matchingConfig
}
