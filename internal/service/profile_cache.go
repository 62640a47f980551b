package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/frostlab63/sparkapply-sub000/internal/logger"
	"github.com/frostlab63/sparkapply-sub000/internal/metrics"
	"github.com/frostlab63/sparkapply-sub000/internal/model"
	"github.com/redis/go-redis/v9"
)

// ProfileSource is any backend that can load a profile.
type ProfileSource interface {
	GetUserProfile(ctx context.Context, userID string) (*model.UserProfile, error)
}

// CacheStore is the subset of *redis.Client used by the profile cache.
type CacheStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// CachedProfileProvider serves profiles from Redis and falls back to the
// source on a miss. Cache failures are logged and never fail a lookup.
type CachedProfileProvider struct {
	source ProfileSource
	store  CacheStore
	ttl    time.Duration
}

func NewCachedProfileProvider(source ProfileSource, store CacheStore, ttl time.Duration) *CachedProfileProvider {
	return &CachedProfileProvider{source: source, store: store, ttl: ttl}
}

func profileKey(userID string) string {
	return "profile:" + userID
}

func (c *CachedProfileProvider) GetUserProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	key := profileKey(userID)

	raw, err := c.store.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p model.UserProfile
		if jerr := json.Unmarshal(raw, &p); jerr == nil {
			metrics.ProfileCacheRequests.WithLabelValues("hit").Inc()
			return &p, nil
		}
		logger.Ctx(ctx).Warn().Str("user_id", userID).Msg("discarding unreadable cached profile")
		metrics.ProfileCacheRequests.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		metrics.ProfileCacheRequests.WithLabelValues("miss").Inc()
	default:
		logger.Ctx(ctx).Warn().Err(err).Str("user_id", userID).Msg("profile cache read failed")
		metrics.ProfileCacheRequests.WithLabelValues("error").Inc()
	}

	p, err := c.source.GetUserProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if b, jerr := json.Marshal(p); jerr == nil {
		if serr := c.store.Set(ctx, key, b, c.ttl).Err(); serr != nil {
			logger.Ctx(ctx).Warn().Err(serr).Str("user_id", userID).Msg("profile cache write failed")
		}
	}
	return p, nil
}

// Invalidate drops the cached profile so the next lookup reads the source.
func (c *CachedProfileProvider) Invalidate(ctx context.Context, userID string) error {
	return c.store.Del(ctx, profileKey(userID)).Err()
}
