package dto

import (
	"math"
	"time"

	"github.com/frostlab63/sparkapply-sub000/internal/model"
	"github.com/google/uuid"
)

type GenerateMatchesRequest struct {
	Limit          int      `json:"limit" validate:"gte=0,lte=200"`
	MinScore       *float64 `json:"min_score" validate:"omitempty,gte=0,lte=1"`
	ExcludeApplied *bool    `json:"exclude_applied"`
	IncludeExpired bool     `json:"include_expired"`
}

type MatchActionRequest struct {
	Action        string `json:"action" validate:"required,oneof=liked disliked applied saved ignored viewed"`
	FeedbackScore *int   `json:"feedback_score" validate:"omitempty,gte=1,lte=5"`
	FeedbackText  string `json:"feedback_text" validate:"max=2000"`
}

type MarkShownRequest struct {
	JobIDs []string `json:"job_ids" validate:"required,min=1,max=500,dive,uuid"`
}

type ListMatchesQuery struct {
	MinScore float64 `query:"min_score" validate:"gte=0,lte=1"`
	Action   string  `query:"action" validate:"omitempty,oneof=liked disliked applied saved ignored viewed"`
	Unshown  bool    `query:"unshown"`
	Page     int     `query:"page" validate:"gte=0"`
	PageSize int     `query:"page_size" validate:"gte=0,lte=100"`
}

type ScoreBreakdown struct {
	Overall    float64 `json:"overall"`
	Skills     float64 `json:"skills"`
	Experience float64 `json:"experience"`
	Location   float64 `json:"location"`
	Salary     float64 `json:"salary"`
	Culture    float64 `json:"culture"`
}

type MatchDTO struct {
	ID                   uuid.UUID          `json:"id"`
	UserID               string             `json:"user_id"`
	JobID                uuid.UUID          `json:"job_id"`
	CompatibilityScore   float64            `json:"compatibility_score"`
	Quality              model.MatchQuality `json:"match_quality"`
	Scores               ScoreBreakdown     `json:"scores"`
	MatchFactors         model.MatchFactors `json:"match_factors"`
	RecommendationReason string             `json:"recommendation_reason"`
	MatchVersion         string             `json:"match_version"`
	UserAction           *model.UserAction  `json:"user_action,omitempty"`
	ActionDate           *time.Time         `json:"action_date,omitempty"`
	DaysSinceAction      *int               `json:"days_since_action,omitempty"`
	ShownToUser          bool               `json:"shown_to_user"`
	ShownDate            *time.Time         `json:"shown_date,omitempty"`
	DaysSinceShown       *int               `json:"days_since_shown,omitempty"`
	FeedbackScore        *int               `json:"feedback_score,omitempty"`
	FeedbackText         string             `json:"feedback_text,omitempty"`
	IsActive             bool               `json:"is_active"`
	Job                  *model.Job         `json:"job,omitempty"`
	JobExpired           bool               `json:"job_expired"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

func NewMatchDTO(m model.JobMatch, now time.Time) MatchDTO {
	return MatchDTO{
		ID:                 m.ID,
		UserID:             m.UserID,
		JobID:              m.JobID,
		CompatibilityScore: m.CompatibilityScore,
		Quality:            m.Quality(),
		Scores: ScoreBreakdown{
			Overall:    m.CompatibilityScore,
			Skills:     m.SkillsScore,
			Experience: m.ExperienceScore,
			Location:   m.LocationScore,
			Salary:     m.SalaryScore,
			Culture:    m.CultureScore,
		},
		MatchFactors:         m.MatchFactors.Data(),
		RecommendationReason: m.RecommendationReason,
		MatchVersion:         m.MatchVersion,
		UserAction:           m.UserAction,
		ActionDate:           m.ActionDate,
		DaysSinceAction:      daysSince(m.ActionDate, now),
		ShownToUser:          m.ShownToUser,
		ShownDate:            m.ShownDate,
		DaysSinceShown:       daysSince(m.ShownDate, now),
		FeedbackScore:        m.FeedbackScore,
		FeedbackText:         m.FeedbackText,
		IsActive:             m.IsActive,
		Job:                  m.Job,
		JobExpired:           m.Job != nil && m.Job.IsExpired(now),
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

func NewMatchDTOs(matches []model.JobMatch, now time.Time) []MatchDTO {
	out := make([]MatchDTO, len(matches))
	for i, m := range matches {
		out[i] = NewMatchDTO(m, now)
	}
	return out
}

// daysSince rounds partial days up.
func daysSince(t *time.Time, now time.Time) *int {
	if t == nil {
		return nil
	}
	d := int(math.Ceil(now.Sub(*t).Hours() / 24))
	return &d
}
