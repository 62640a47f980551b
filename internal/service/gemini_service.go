package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/frostlab63/sparkapply-sub000/internal/apperror"
	"github.com/frostlab63/sparkapply-sub000/internal/config"
	"github.com/frostlab63/sparkapply-sub000/internal/logger"
	gobreaker "github.com/sony/gobreaker/v2"
	"google.golang.org/genai"
)

const (
	geminiBreaker     = "gemini-embeddings"
	maxEmbeddingInput = 10000
)

type embedFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)

// GeminiService turns job and profile text into embedding vectors.
type GeminiService struct {
	Model          string
	Dimensions     int
	MaxRetries     int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	RequestTimeout time.Duration

	embed embedFunc
	cb    *gobreaker.CircuitBreaker[[]float32]
}

func NewGeminiService(ctx context.Context, cfg *config.GeminiConfig) (*GeminiService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return newGeminiService(cfg, client.Models.EmbedContent), nil
}

func newGeminiService(cfg *config.GeminiConfig, embed embedFunc) *GeminiService {
	return &GeminiService{
		Model:          cfg.EmbeddingModel,
		Dimensions:     cfg.Dimensions,
		MaxRetries:     3,
		BaseDelay:      time.Second,
		MaxDelay:       30 * time.Second,
		RequestTimeout: 60 * time.Second,
		embed:          embed,
		cb:             newBreaker[[]float32](geminiBreaker),
	}
}

func (s *GeminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, apperror.Validation("text for embedding cannot be empty")
	}
	if len(trimmed) > maxEmbeddingInput {
		logger.Ctx(ctx).Debug().Int("length", len(trimmed)).Msg("truncating embedding input")
		trimmed = trimmed[:maxEmbeddingInput]
	}

	vec, err := s.cb.Execute(func() ([]float32, error) {
		return s.embedWithRetry(ctx, trimmed)
	})
	recordBreakerResult(geminiBreaker, err)
	return vec, err
}

func (s *GeminiService) embedWithRetry(ctx context.Context, text string) ([]float32, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, s.RequestTimeout)
	defer cancel()

	content := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	var embedCfg *genai.EmbedContentConfig
	if s.Dimensions > 0 {
		embedCfg = &genai.EmbedContentConfig{OutputDimensionality: genai.Ptr(int32(s.Dimensions))}
	}

	var lastErr error
	for attempt := 0; attempt <= s.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := s.calculateBackoff(attempt)
			logger.Ctx(ctx).Info().Int("attempt", attempt).Dur("delay", delay).Msg("retrying embedding request")

			select {
			case <-time.After(delay):
			case <-timeoutCtx.Done():
				return nil, fmt.Errorf("context done during retry: %w", timeoutCtx.Err())
			}
		}

		result, err := s.embed(timeoutCtx, s.Model, content, embedCfg)
		if err == nil {
			return validateEmbeddingResponse(result)
		}
		lastErr = err

		if !isRetryableError(err) {
			return nil, fmt.Errorf("generate embedding: %w", err)
		}
		logger.Ctx(ctx).Warn().Err(err).Int("attempt", attempt+1).Msg("retryable embedding error")
	}
	return nil, fmt.Errorf("max retries (%d) exceeded for embedding: %w", s.MaxRetries, lastErr)
}

func (s *GeminiService) calculateBackoff(attempt int) time.Duration {
	delay := s.BaseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
	if delay > s.MaxDelay {
		delay = s.MaxDelay
	}
	return delay
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429, 500, 502, 503, 504:
			return true
		default:
			return false
		}
	}

	msg := err.Error()
	for _, s := range []string{"connection refused", "connection reset", "timeout", "temporary failure", "EOF", "RESOURCE_EXHAUSTED", "UNAVAILABLE"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func validateEmbeddingResponse(resp *genai.EmbedContentResponse) ([]float32, error) {
	if resp == nil {
		return nil, fmt.Errorf("response is nil")
	}
	if len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, fmt.Errorf("no embeddings returned")
	}
	values := resp.Embeddings[0].Values
	if len(values) == 0 {
		return nil, fmt.Errorf("embedding vector is empty")
	}
	for i, v := range values {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, fmt.Errorf("invalid embedding value at index %d: %v", i, v)
		}
	}
	return values, nil
}
