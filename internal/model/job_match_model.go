package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CurrentMatchVersion is stamped on every match written by the scorer.
const CurrentMatchVersion = "2.0"

type MatchFactors struct {
	Strengths       []string `json:"strengths"`
	Concerns        []string `json:"concerns"`
	SkillMatches    []string `json:"skill_matches"`
	SkillGaps       []string `json:"skill_gaps"`
	LocationMatch   string   `json:"location_match"`
	SalaryMatch     string   `json:"salary_match"`
	ExperienceMatch string   `json:"experience_match"`
}

type MatchQuality string

const (
	QualityExcellent MatchQuality = "excellent"
	QualityGood      MatchQuality = "good"
	QualityFair      MatchQuality = "fair"
	QualityPoor      MatchQuality = "poor"
)

func QualityOf(score float64) MatchQuality {
	switch {
	case score >= 0.8:
		return QualityExcellent
	case score >= 0.6:
		return QualityGood
	case score >= 0.4:
		return QualityFair
	default:
		return QualityPoor
	}
}

type JobMatch struct {
	ID                   uuid.UUID                        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID               string                           `gorm:"type:varchar(64);not null;uniqueIndex:job_matches_user_job_unique_idx" json:"user_id"`
	JobID                uuid.UUID                        `gorm:"type:uuid;not null;uniqueIndex:job_matches_user_job_unique_idx" json:"job_id"`
	Job                  *Job                             `gorm:"foreignKey:JobID" json:"job,omitempty"`
	CompatibilityScore   float64                          `gorm:"not null" json:"compatibility_score"`
	SkillsScore          float64                          `json:"skills_score"`
	ExperienceScore      float64                          `json:"experience_score"`
	LocationScore        float64                          `json:"location_score"`
	SalaryScore          float64                          `json:"salary_score"`
	CultureScore         float64                          `json:"culture_score"`
	MatchFactors         datatypes.JSONType[MatchFactors] `json:"match_factors"`
	UserAction           *UserAction                      `gorm:"type:varchar(20)" json:"user_action,omitempty"`
	ActionDate           *time.Time                       `json:"action_date,omitempty"`
	ShownToUser          bool                             `gorm:"not null;default:false" json:"shown_to_user"`
	ShownDate            *time.Time                       `json:"shown_date,omitempty"`
	RecommendationReason string                           `gorm:"type:text" json:"recommendation_reason"`
	MatchVersion         string                           `gorm:"type:varchar(10)" json:"match_version"`
	IsActive             bool                             `gorm:"index" json:"is_active"`
	FeedbackScore        *int                             `json:"feedback_score,omitempty"`
	FeedbackText         string                           `gorm:"type:text" json:"feedback_text,omitempty"`
	CreatedAt            time.Time                        `json:"created_at"`
	UpdatedAt            time.Time                        `json:"updated_at"`
}

func (m *JobMatch) TableName() string {
	return "job_matches"
}

func (m *JobMatch) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (m *JobMatch) Quality() MatchQuality {
	return QualityOf(m.CompatibilityScore)
}

func (m *JobMatch) IsPositiveAction() bool {
	return m.UserAction != nil && m.UserAction.Positive()
}

func (m *JobMatch) IsNegativeAction() bool {
	return m.UserAction != nil && m.UserAction.Negative()
}

// RecordAction stores the action and marks the match as shown on first exposure.
func (m *JobMatch) RecordAction(action UserAction, now time.Time) {
	a := action
	m.UserAction = &a
	m.ActionDate = &now
	m.MarkShown(now)
}

func (m *JobMatch) MarkShown(now time.Time) {
	if m.ShownToUser {
		return
	}
	m.ShownToUser = true
	m.ShownDate = &now
}
