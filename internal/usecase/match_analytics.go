package usecase

import (
	"context"

	"github.com/frostlab63/sparkapply-sub000/internal/apperror"
	"github.com/frostlab63/sparkapply-sub000/internal/model"
)

type SalaryRange struct {
	Min      int    `json:"min"`
	Max      int    `json:"max"`
	JobTitle string `json:"job_title"`
}

type MatchAnalytics struct {
	TotalMatches         int                        `json:"total_matches"`
	AvgScore             float64                    `json:"avg_compatibility_score"`
	TopSkills            map[string]int             `json:"top_skills"`
	LocationDistribution map[string]int             `json:"location_distribution"`
	SalaryRanges         []SalaryRange              `json:"salary_ranges"`
	ExperienceLevels     map[string]int             `json:"experience_levels"`
	QualityDistribution  map[model.MatchQuality]int `json:"match_quality_distribution"`
}

// Analytics summarises every match of the user, inactive ones included.
func (uc *MatchUsecase) Analytics(ctx context.Context, userID string) (*MatchAnalytics, error) {
	ctx, cancel := withTimeout(ctx, uc.cfg.OperationTimeout)
	defer cancel()

	matches, err := uc.matchRepo.MatchesWithJobs(ctx, userID)
	if err != nil {
		return nil, apperror.Dependency("load matches", err)
	}
	return buildAnalytics(matches), nil
}

func buildAnalytics(matches []model.JobMatch) *MatchAnalytics {
	a := &MatchAnalytics{
		TotalMatches:         len(matches),
		TopSkills:            map[string]int{},
		LocationDistribution: map[string]int{},
		SalaryRanges:         []SalaryRange{},
		ExperienceLevels:     map[string]int{},
		QualityDistribution: map[model.MatchQuality]int{
			model.QualityExcellent: 0,
			model.QualityGood:      0,
			model.QualityFair:      0,
			model.QualityPoor:      0,
		},
	}
	if len(matches) == 0 {
		return a
	}

	var total float64
	for i := range matches {
		m := &matches[i]
		total += m.CompatibilityScore
		a.QualityDistribution[m.Quality()]++

		job := m.Job
		if job == nil {
			continue
		}
		for _, s := range job.Skills {
			a.TopSkills[s]++
		}
		location := job.Location
		if location == "" {
			location = "Unknown"
		}
		a.LocationDistribution[location]++

		level := string(job.ExperienceLevel)
		if level == "" {
			level = string(model.ExperienceMid)
		}
		a.ExperienceLevels[level]++

		if job.SalaryMin != nil && job.SalaryMax != nil && *job.SalaryMin > 0 && *job.SalaryMax > 0 {
			a.SalaryRanges = append(a.SalaryRanges, SalaryRange{Min: *job.SalaryMin, Max: *job.SalaryMax, JobTitle: job.Title})
		}
	}
	a.AvgScore = total / float64(len(matches))
	return a
}

type MatchStats struct {
	Total        int     `json:"total"`
	Shown        int     `json:"shown"`
	Actioned     int     `json:"actioned"`
	Liked        int     `json:"liked"`
	Applied      int     `json:"applied"`
	Positive     int     `json:"positive"`
	Negative     int     `json:"negative"`
	ShowRate     float64 `json:"show_rate"`
	ActionRate   float64 `json:"action_rate"`
	LikeRate     float64 `json:"like_rate"`
	ApplyRate    float64 `json:"apply_rate"`
	PositiveRate float64 `json:"positive_rate"`
}

// Stats counts the user's matches by exposure and reaction. Rates other than
// ShowRate are relative to shown matches.
func (uc *MatchUsecase) Stats(ctx context.Context, userID string) (*MatchStats, error) {
	ctx, cancel := withTimeout(ctx, uc.cfg.OperationTimeout)
	defer cancel()

	matches, err := uc.matchRepo.MatchesWithJobs(ctx, userID)
	if err != nil {
		return nil, apperror.Dependency("load matches", err)
	}

	s := &MatchStats{Total: len(matches)}
	for i := range matches {
		m := &matches[i]
		if m.ShownToUser {
			s.Shown++
		}
		if m.UserAction == nil {
			continue
		}
		s.Actioned++
		if m.IsPositiveAction() {
			s.Positive++
		} else if m.IsNegativeAction() {
			s.Negative++
		}
		switch *m.UserAction {
		case model.ActionLiked:
			s.Liked++
		case model.ActionApplied:
			s.Applied++
		}
	}
	s.ShowRate = ratio(s.Shown, s.Total)
	s.ActionRate = ratio(s.Actioned, s.Shown)
	s.LikeRate = ratio(s.Liked, s.Shown)
	s.ApplyRate = ratio(s.Applied, s.Shown)
	s.PositiveRate = ratio(s.Positive, s.Shown)
	return s, nil
}

type PerformanceMetrics struct {
	TotalShown           int            `json:"total_shown"`
	TotalInteractions    int            `json:"total_interactions"`
	ClickThroughRate     float64        `json:"click_through_rate"`
	ApplicationRate      float64        `json:"application_rate"`
	AvgScore             float64        `json:"avg_compatibility_score"`
	FeedbackDistribution map[string]int `json:"feedback_distribution"`
}

// PerformanceMetrics measures how shown matches convert. An empty userID
// covers every user.
func (uc *MatchUsecase) PerformanceMetrics(ctx context.Context, userID string) (*PerformanceMetrics, error) {
	ctx, cancel := withTimeout(ctx, uc.cfg.OperationTimeout)
	defer cancel()

	matches, err := uc.matchRepo.ShownMatches(ctx, userID)
	if err != nil {
		return nil, apperror.Dependency("load shown matches", err)
	}

	pm := &PerformanceMetrics{TotalShown: len(matches), FeedbackDistribution: map[string]int{}}
	if len(matches) == 0 {
		return pm, nil
	}
	var total float64
	applied := 0
	for i := range matches {
		m := &matches[i]
		total += m.CompatibilityScore
		if m.UserAction == nil {
			continue
		}
		pm.TotalInteractions++
		if *m.UserAction == model.ActionApplied {
			applied++
		}
		pm.FeedbackDistribution[string(*m.UserAction)]++
	}
	pm.ClickThroughRate = ratio(pm.TotalInteractions, pm.TotalShown)
	pm.ApplicationRate = ratio(applied, pm.TotalShown)
	pm.AvgScore = total / float64(pm.TotalShown)
	return pm, nil
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
