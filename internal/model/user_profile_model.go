package model

import (
	"time"

	"gorm.io/datatypes"
)

type UserProfile struct {
	UserID               string                      `gorm:"type:varchar(64);primaryKey" json:"user_id"`
	Skills               datatypes.JSONSlice[string] `json:"skills"`
	ExperienceLevel      ExperienceLevel             `gorm:"type:varchar(20)" json:"experience_level"`
	Location             string                      `gorm:"type:varchar(255)" json:"location"`
	RemotePreference     RemoteType                  `gorm:"type:varchar(20)" json:"remote_preference"`
	SalaryExpectationMin *int                        `json:"salary_expectation_min,omitempty"`
	SalaryExpectationMax *int                        `json:"salary_expectation_max,omitempty"`
	CulturePreferences   datatypes.JSONSlice[string] `json:"culture_preferences"`
	IsActive             bool                        `gorm:"index" json:"is_active"`
	CreatedAt            time.Time                   `json:"created_at"`
	UpdatedAt            time.Time                   `json:"updated_at"`
}

func (p *UserProfile) TableName() string {
	return "user_profiles"
}
