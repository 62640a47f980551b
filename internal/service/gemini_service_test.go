package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/frostlab63/sparkapply-sub000/internal/apperror"
	"github.com/frostlab63/sparkapply-sub000/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func embedResponse(values ...float32) *genai.EmbedContentResponse {
	return &genai.EmbedContentResponse{Embeddings: []*genai.ContentEmbedding{{Values: values}}}
}

func testGemini(embed embedFunc) *GeminiService {
	s := newGeminiService(&config.GeminiConfig{EmbeddingModel: "test-model", Dimensions: 3}, embed)
	s.BaseDelay = time.Millisecond
	s.MaxDelay = 5 * time.Millisecond
	return s
}

func TestGenerateEmbeddingRetriesTransientErrors(t *testing.T) {
	calls := 0
	s := testGemini(func(_ context.Context, model string, contents []*genai.Content, cfg *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
		calls++
		assert.Equal(t, "test-model", model)
		require.NotNil(t, cfg)
		assert.Equal(t, int32(3), *cfg.OutputDimensionality)
		if calls < 3 {
			return nil, errors.New("read: connection reset by peer")
		}
		return embedResponse(0.1, 0.2, 0.3), nil
	})

	vec, err := s.GenerateEmbedding(context.Background(), "  Senior Go Engineer  ")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, 3, calls)
}

func TestGenerateEmbeddingStopsOnPermanentErrors(t *testing.T) {
	calls := 0
	s := testGemini(func(context.Context, string, []*genai.Content, *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
		calls++
		return nil, errors.New("invalid argument")
	})
	_, err := s.GenerateEmbedding(context.Background(), "text")
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	_, err = s.GenerateEmbedding(context.Background(), "   ")
	assert.True(t, apperror.IsValidation(err))
}

func TestGenerateEmbeddingGivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	s := testGemini(func(context.Context, string, []*genai.Content, *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
		calls++
		return nil, errors.New("i/o timeout")
	})
	_, err := s.GenerateEmbedding(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries")
	assert.Equal(t, s.MaxRetries+1, calls)
}

func TestValidateEmbeddingResponse(t *testing.T) {
	_, err := validateEmbeddingResponse(nil)
	assert.Error(t, err)
	_, err = validateEmbeddingResponse(&genai.EmbedContentResponse{})
	assert.Error(t, err)
	_, err = validateEmbeddingResponse(embedResponse())
	assert.Error(t, err)
	_, err = validateEmbeddingResponse(embedResponse(1, float32(math.NaN())))
	assert.Error(t, err)
}

func TestIsRetryableError(t *testing.T) {
	assert.False(t, isRetryableError(nil))
	assert.False(t, isRetryableError(context.Canceled))
	assert.True(t, isRetryableError(&genai.APIError{Code: 429}))
	assert.True(t, isRetryableError(&genai.APIError{Code: 503}))
	assert.False(t, isRetryableError(&genai.APIError{Code: 400}))
	assert.True(t, isRetryableError(errors.New("unexpected EOF")))
}

func TestCalculateBackoffIsCapped(t *testing.T) {
	s := &GeminiService{BaseDelay: time.Second, MaxDelay: 3 * time.Second}
	assert.Equal(t, time.Second, s.calculateBackoff(1))
	assert.Equal(t, 2*time.Second, s.calculateBackoff(2))
	assert.Equal(t, 3*time.Second, s.calculateBackoff(3))
}
