package config

import (
	"os"
	"sync"
	"time"
)

type RedisConfig struct {
	URL             string
	ProfileCacheTTL time.Duration
}

var (
	redisConfig *RedisConfig
	redisOnce   sync.Once
)

// LoadRedisConfig returns an empty URL when REDIS_URL is unset; callers run
// without the profile cache and event publishing in that case.
func LoadRedisConfig() *RedisConfig {
	redisOnce.Do(func() {
		redisConfig = &RedisConfig{
			URL:             os.Getenv("REDIS_URL"),
			ProfileCacheTTL: getDuration("PROFILE_CACHE_TTL", 5*time.Minute),
		}
	})
	return redisConfig
}
