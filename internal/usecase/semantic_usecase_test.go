package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/frostlab63/sparkapply-sub000/internal/apperror"
	"github.com/frostlab63/sparkapply-sub000/internal/recommendation"
	"github.com/frostlab63/sparkapply-sub000/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexJob(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	job := f.goJob(t, "Go Engineer", "Acme")
	embedder := &fakeEmbedder{vec: []float32{0.1, 0.2, 0.3}}
	store := &fakeEmbeddingStore{}
	uc := NewSemanticUsecase(f.jobs, store, f.profiles, embedder, "gemini-embedding-001", f.cfg)

	require.NoError(t, uc.IndexJob(ctx, job.ID))
	require.Len(t, store.upserts, 1)
	assert.Equal(t, job.ID, store.upserts[0].JobID)
	assert.Equal(t, "gemini-embedding-001", store.upserts[0].Model)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, store.upserts[0].Embedding.Slice())
	require.Len(t, embedder.texts, 1)
	assert.Equal(t, "Title: Go Engineer\nCompany: Acme\nLocation: Remote\nSkills: go, postgresql", embedder.texts[0])

	err := uc.IndexJob(ctx, uuid.New())
	assert.True(t, isNotFound(err))
}

func TestSemanticRecommend(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	good := f.goJob(t, "Go Engineer", "Acme")
	cobol := f.cobolJob(t, "Mainframe Operator")
	store := &fakeEmbeddingStore{nearest: []repository.JobDistance{
		{JobID: good.ID, Distance: 0.1},
		{JobID: uuid.New(), Distance: 0.2},
		{JobID: cobol.ID, Distance: 0.4},
	}}
	embedder := &fakeEmbedder{vec: []float32{1, 0}}
	uc := NewSemanticUsecase(f.jobs, store, f.profiles, embedder, "m", f.cfg)

	recs, err := uc.Recommend(ctx, "u1", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, store.topK)
	require.Len(t, recs, 2)
	assert.Equal(t, good.ID, recs[0].Job.ID)
	assert.InDelta(t, 0.9, recs[0].Score, 1e-9)
	assert.Equal(t, cobol.ID, recs[1].Job.ID)
	assert.InDelta(t, 0.6, recs[1].Score, 1e-9)
	assert.Equal(t, recommendation.KindSemantic, recs[0].Kind)
	assert.Contains(t, embedder.texts[0], "Skills: go, postgresql")

	_, err = uc.Recommend(ctx, "missing", 5)
	assert.True(t, isNotFound(err))

	embedder.err = errors.New("quota exceeded")
	_, err = uc.Recommend(ctx, "u1", 5)
	assert.True(t, apperror.IsDependency(err))
}

func TestSemanticDisabled(t *testing.T) {
	f := newFixture(t)
	uc := NewSemanticUsecase(f.jobs, &fakeEmbeddingStore{}, f.profiles, nil, "", f.cfg)

	_, err := uc.Recommend(context.Background(), "u1", 5)
	assert.ErrorIs(t, err, ErrSemanticDisabled)
	assert.True(t, apperror.IsDependency(err))

	err = uc.IndexJob(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrSemanticDisabled)
}
