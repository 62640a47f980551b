package model

import (
	"time"

	"github.com/google/uuid"
)

// Interaction is a user's action on a job, rebuilt from matches and
// applications for every recommendation run. It is not stored.
type Interaction struct {
	UserID    string
	JobID     uuid.UUID
	Action    UserAction
	Timestamp time.Time
	Job       *Job
}
