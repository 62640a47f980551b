package usecase

import (
	"context"
	"time"

	"github.com/frostlab63/sparkapply-sub000/internal/model"
)

type ProfileProvider interface {
	GetUserProfile(ctx context.Context, userID string) (*model.UserProfile, error)
}

// ProfileInvalidator is implemented by caching providers. RefreshMatches
// drops the cached profile first so rescoring sees the latest edit.
type ProfileInvalidator interface {
	Invalidate(ctx context.Context, userID string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
