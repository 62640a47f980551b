package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frostlab63/sparkapply-sub000/internal/apperror"
	"github.com/frostlab63/sparkapply-sub000/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Peer candidates are capped so a popular platform does not load every user.
const maxPeerUsers = 500

var positiveActions = []model.UserAction{model.ActionLiked, model.ActionSaved, model.ActionApplied}

type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) *MatchRepository {
	return &MatchRepository{db}
}

type MatchFilter struct {
	MinScore        float64
	Action          *model.UserAction
	OnlyUnshown     bool
	IncludeInactive bool
}

// FindMatch returns nil without an error when the pair has no match.
func (r *MatchRepository) FindMatch(ctx context.Context, userID string, jobID uuid.UUID) (*model.JobMatch, error) {
	var m model.JobMatch
	err := r.db.WithContext(ctx).Where("user_id = ? AND job_id = ?", userID, jobID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// UpsertMatch inserts the match or refreshes the scores of the existing row for
// the same (user_id, job_id). User actions and the active flag are preserved.
// On return m holds the stored row.
func (r *MatchRepository) UpsertMatch(ctx context.Context, m *model.JobMatch) error {
	db := r.db.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "job_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"compatibility_score",
			"skills_score",
			"experience_score",
			"location_score",
			"salary_score",
			"culture_score",
			"match_factors",
			"recommendation_reason",
			"match_version",
			"updated_at",
		}),
	}).Omit(clause.Associations).Create(m).Error
	if err != nil {
		return fmt.Errorf("upsert match: %w", err)
	}

	var stored model.JobMatch
	if err := db.Where("user_id = ? AND job_id = ?", m.UserID, m.JobID).First(&stored).Error; err != nil {
		return fmt.Errorf("reload match: %w", translate(err))
	}
	stored.Job = m.Job
	*m = stored
	return nil
}

func (r *MatchRepository) SaveMatch(ctx context.Context, m *model.JobMatch) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(m).Error
}

func (r *MatchRepository) ListMatches(ctx context.Context, userID string, f MatchFilter, page, pageSize int) ([]model.JobMatch, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.JobMatch{}).Where("user_id = ?", userID)
	if !f.IncludeInactive {
		q = q.Where("is_active = ?", true)
	}
	if f.MinScore > 0 {
		q = q.Where("compatibility_score >= ?", f.MinScore)
	}
	if f.Action != nil {
		q = q.Where("user_action = ?", *f.Action)
	}
	if f.OnlyUnshown {
		q = q.Where("shown_to_user = ?", false)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var matches []model.JobMatch
	err := q.Preload("Job.Company").
		Order("compatibility_score DESC").
		Scopes(paginate(page, pageSize)).
		Find(&matches).Error
	if err != nil {
		return nil, 0, err
	}
	return matches, total, nil
}

// ActiveMatchesWithJobs loads every active match of the user with its job.
func (r *MatchRepository) ActiveMatchesWithJobs(ctx context.Context, userID string) ([]model.JobMatch, error) {
	var matches []model.JobMatch
	err := r.db.WithContext(ctx).
		Preload("Job.Company").
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("compatibility_score DESC").
		Find(&matches).Error
	return matches, err
}

// MatchesWithJobs loads every match of the user, active or not.
func (r *MatchRepository) MatchesWithJobs(ctx context.Context, userID string) ([]model.JobMatch, error) {
	var matches []model.JobMatch
	err := r.db.WithContext(ctx).
		Preload("Job").
		Where("user_id = ?", userID).
		Find(&matches).Error
	return matches, err
}

// ListActiveUserIDs returns every user holding at least one active match.
// It drives the periodic refresh when profiles live in the user service.
func (r *MatchRepository) ListActiveUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.JobMatch{}).
		Where("is_active = ?", true).
		Distinct("user_id").
		Order("user_id").
		Pluck("user_id", &ids).Error
	return ids, err
}

// ShownMatches returns matches shown to the user, or to anyone when userID is empty.
func (r *MatchRepository) ShownMatches(ctx context.Context, userID string) ([]model.JobMatch, error) {
	q := r.db.WithContext(ctx).Where("shown_to_user = ?", true)
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	var matches []model.JobMatch
	err := q.Find(&matches).Error
	return matches, err
}

func (r *MatchRepository) MarkShown(ctx context.Context, userID string, jobIDs []uuid.UUID, now time.Time) (int64, error) {
	if len(jobIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&model.JobMatch{}).
		Where("user_id = ? AND job_id IN ? AND shown_to_user = ?", userID, jobIDs, false).
		Updates(map[string]any{"shown_to_user": true, "shown_date": now})
	return res.RowsAffected, res.Error
}

func (r *MatchRepository) Deactivate(ctx context.Context, userID string, jobID uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.JobMatch{}).
		Where("user_id = ? AND job_id = ?", userID, jobID).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("match %s/%s: %w", userID, jobID, apperror.ErrNotFound)
	}
	return nil
}

// Interactions rebuilds the user's history from matches with an action and
// from applications.
func (r *MatchRepository) Interactions(ctx context.Context, userID string) ([]model.Interaction, error) {
	db := r.db.WithContext(ctx)

	var matches []model.JobMatch
	if err := db.Preload("Job").
		Where("user_id = ? AND user_action IS NOT NULL", userID).
		Find(&matches).Error; err != nil {
		return nil, fmt.Errorf("load match interactions: %w", err)
	}

	var apps []model.Application
	if err := db.Preload("Job").Where("user_id = ?", userID).Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("load applications: %w", err)
	}

	out := make([]model.Interaction, 0, len(matches)+len(apps))
	for _, m := range matches {
		out = append(out, matchInteraction(m))
	}
	for _, a := range apps {
		out = append(out, model.Interaction{
			UserID:    a.UserID,
			JobID:     a.JobID,
			Action:    model.ActionApplied,
			Timestamp: a.CreatedAt,
			Job:       a.Job,
		})
	}
	return out, nil
}

// PeerInteractions returns, per user, every match of users other than userID
// that have at least minPositive liked, saved or applied matches. Matches
// without an action carry an empty Action.
func (r *MatchRepository) PeerInteractions(ctx context.Context, userID string, minPositive int) (map[string][]model.Interaction, error) {
	db := r.db.WithContext(ctx)

	var peerIDs []string
	err := db.Model(&model.JobMatch{}).
		Select("user_id").
		Where("user_id <> ? AND user_action IN ?", userID, positiveActions).
		Group("user_id").
		Having("COUNT(*) >= ?", minPositive).
		Order("user_id").
		Limit(maxPeerUsers).
		Pluck("user_id", &peerIDs).Error
	if err != nil {
		return nil, fmt.Errorf("find peers: %w", err)
	}
	if len(peerIDs) == 0 {
		return map[string][]model.Interaction{}, nil
	}

	var matches []model.JobMatch
	if err := db.Where("user_id IN ?", peerIDs).Find(&matches).Error; err != nil {
		return nil, fmt.Errorf("load peer matches: %w", err)
	}

	out := make(map[string][]model.Interaction, len(peerIDs))
	for _, m := range matches {
		out[m.UserID] = append(out[m.UserID], matchInteraction(m))
	}
	return out, nil
}

func matchInteraction(m model.JobMatch) model.Interaction {
	in := model.Interaction{UserID: m.UserID, JobID: m.JobID, Timestamp: m.CreatedAt, Job: m.Job}
	if m.UserAction != nil {
		in.Action = *m.UserAction
	}
	if m.ActionDate != nil {
		in.Timestamp = *m.ActionDate
	}
	return in
}
