package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const DefaultJobLifetime = 30 * 24 * time.Hour

type Company struct {
	ID         uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string                      `gorm:"type:varchar(255);not null" json:"name"`
	IsVerified bool                        `json:"is_verified"`
	Benefits   datatypes.JSONSlice[string] `json:"benefits"`
	CreatedAt  time.Time                   `json:"created_at"`
	UpdatedAt  time.Time                   `json:"updated_at"`
}

func (c *Company) TableName() string {
	return "companies"
}

func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type Job struct {
	ID               uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Title            string                      `gorm:"type:varchar(255);not null" json:"title"`
	CompanyName      string                      `gorm:"type:varchar(255)" json:"company_name"`
	CompanyID        *uuid.UUID                  `gorm:"type:uuid;index" json:"company_id,omitempty"`
	Company          *Company                    `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Location         string                      `gorm:"type:varchar(255)" json:"location"`
	RemoteType       RemoteType                  `gorm:"type:varchar(20)" json:"remote_type"`
	ExperienceLevel  ExperienceLevel             `gorm:"type:varchar(20)" json:"experience_level"`
	SalaryMin        *int                        `json:"salary_min,omitempty"`
	SalaryMax        *int                        `json:"salary_max,omitempty"`
	Skills           datatypes.JSONSlice[string] `json:"skills"`
	Categories       datatypes.JSONSlice[string] `json:"categories"`
	PostedDate       time.Time                   `gorm:"index" json:"posted_date"`
	ExpiresDate      *time.Time                  `gorm:"index" json:"expires_date,omitempty"`
	IsActive         bool                        `gorm:"index" json:"is_active"`
	ViewCount        int                         `gorm:"not null;default:0" json:"view_count"`
	ApplicationCount int                         `gorm:"not null;default:0" json:"application_count"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
}

func (j *Job) TableName() string {
	return "jobs"
}

func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	if j.PostedDate.IsZero() {
		j.PostedDate = time.Now()
	}
	if j.ExpiresDate == nil {
		exp := j.PostedDate.Add(DefaultJobLifetime)
		j.ExpiresDate = &exp
	}
	return nil
}

func (j *Job) IsExpired(now time.Time) bool {
	return j.ExpiresDate != nil && !j.ExpiresDate.After(now)
}

// CompanyKey identifies the employer for diversification; it prefers the
// company id and falls back to the free-text name.
func (j *Job) CompanyKey() string {
	if j.CompanyID != nil {
		return j.CompanyID.String()
	}
	return j.CompanyName
}

func (j *Job) CompanyVerified() bool {
	return j.Company != nil && j.Company.IsVerified
}

func (j *Job) CompanyBenefits() []string {
	if j.Company == nil {
		return nil
	}
	return j.Company.Benefits
}
