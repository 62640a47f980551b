package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/frostlab63/sparkapply-sub000/internal/apperror"
	"github.com/frostlab63/sparkapply-sub000/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db}
}

type CandidateFilter struct {
	UserID         string
	ExcludeApplied bool
	IncludeExpired bool
	Limit          int
	Now            time.Time
}

// GetCandidateJobs returns active jobs, newest first.
func (r *JobRepository) GetCandidateJobs(ctx context.Context, f CandidateFilter) ([]*model.Job, error) {
	if f.Now.IsZero() {
		f.Now = time.Now()
	}
	q := r.db.WithContext(ctx).
		Preload("Company").
		Where("is_active = ?", true)
	if !f.IncludeExpired {
		q = q.Where("(expires_date IS NULL OR expires_date > ?)", f.Now)
	}
	if f.ExcludeApplied && f.UserID != "" {
		applied := r.db.Model(&model.Application{}).Select("job_id").Where("user_id = ?", f.UserID)
		q = q.Where("id NOT IN (?)", applied)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var jobs []*model.Job
	if err := q.Order("posted_date DESC").Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("get candidate jobs: %w", err)
	}
	return jobs, nil
}

func (r *JobRepository) CreateJob(ctx context.Context, job *model.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *JobRepository) CreateCompany(ctx context.Context, c *model.Company) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *JobRepository) FindJobByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	var j model.Job
	err := r.db.WithContext(ctx).Preload("Company").First(&j, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &j, nil
}

// FindJobsByIDs keeps the order of ids and skips ids that do not exist.
func (r *JobRepository) FindJobsByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Job, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var jobs []*model.Job
	if err := r.db.WithContext(ctx).Preload("Company").Where("id IN ?", ids).Find(&jobs).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*model.Job, len(jobs))
	for _, j := range jobs {
		byID[j.ID] = j
	}
	out := make([]*model.Job, 0, len(jobs))
	for _, id := range ids {
		if j, ok := byID[id]; ok {
			out = append(out, j)
		}
	}
	return out, nil
}

func (r *JobRepository) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	return r.increment(ctx, id, "view_count")
}

func (r *JobRepository) IncrementApplicationCount(ctx context.Context, id uuid.UUID) error {
	return r.increment(ctx, id, "application_count")
}

func (r *JobRepository) increment(ctx context.Context, id uuid.UUID, column string) error {
	res := r.db.WithContext(ctx).Model(&model.Job{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("job %s: %w", id, apperror.ErrNotFound)
	}
	return nil
}
