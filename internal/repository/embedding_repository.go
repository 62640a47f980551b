package repository

import (
	"context"
	"time"

	"github.com/frostlab63/sparkapply-sub000/internal/model"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EmbeddingRepository struct {
	db *gorm.DB
}

func NewEmbeddingRepository(db *gorm.DB) *EmbeddingRepository {
	return &EmbeddingRepository{db}
}

type JobDistance struct {
	JobID    uuid.UUID
	Distance float64
}

func (r *EmbeddingRepository) Upsert(ctx context.Context, e *model.JobEmbedding) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "job_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"model", "embedding", "updated_at"}),
	}).Create(e).Error
}

// NearestJobs orders active, unexpired jobs by cosine distance to embedding.
func (r *EmbeddingRepository) NearestJobs(ctx context.Context, embedding pgvector.Vector, now time.Time, topK int) ([]JobDistance, error) {
	var rows []JobDistance
	err := r.db.WithContext(ctx).Raw(`
        SELECT e.job_id, e.embedding <=> ? AS distance
        FROM job_embeddings e
        JOIN jobs j ON j.id = e.job_id
        WHERE j.is_active = true AND (j.expires_date IS NULL OR j.expires_date > ?)
        ORDER BY e.embedding <=> ?
        LIMIT ?
    `, embedding, now, embedding, topK).Scan(&rows).Error
	return rows, err
}
