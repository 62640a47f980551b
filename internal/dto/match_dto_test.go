package dto

import (
	"testing"
	"time"

	"github.com/frostlab63/sparkapply-sub000/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMatchDTO(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	shown := now.Add(-36 * time.Hour)
	expires := now.Add(-time.Hour)

	m := model.JobMatch{
		UserID:             "u1",
		CompatibilityScore: 0.82,
		ShownToUser:        true,
		ShownDate:          &shown,
		Job:                &model.Job{Title: "Go Engineer", ExpiresDate: &expires},
	}

	d := NewMatchDTO(m, now)
	assert.Equal(t, model.QualityExcellent, d.Quality)
	require.NotNil(t, d.DaysSinceShown)
	assert.Equal(t, 2, *d.DaysSinceShown)
	assert.Nil(t, d.DaysSinceAction)
	assert.True(t, d.JobExpired)

	later := now.Add(time.Hour)
	m.Job.ExpiresDate = &later
	assert.False(t, NewMatchDTO(m, now).JobExpired)

	m.Job = nil
	assert.False(t, NewMatchDTO(m, now).JobExpired)
}
