package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// JobEmbedding requires the pgvector extension and is only migrated on Postgres.
type JobEmbedding struct {
	JobID     uuid.UUID       `gorm:"type:uuid;primaryKey" json:"job_id"`
	Model     string          `gorm:"type:varchar(100)" json:"model"`
	Embedding pgvector.Vector `gorm:"type:vector(768)" json:"-"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (e *JobEmbedding) TableName() string {
	return "job_embeddings"
}
