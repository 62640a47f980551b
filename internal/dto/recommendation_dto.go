package dto

type RecommendationQuery struct {
	Limit           int      `query:"limit" validate:"gte=0,lte=100"`
	MinScore        *float64 `query:"min_score" validate:"omitempty,gte=0,lte=1"`
	DiversityFactor *float64 `query:"diversity_factor" validate:"omitempty,gte=0,lte=1"`
	Exploration     *bool    `query:"exploration"`
	ExcludeApplied  *bool    `query:"exclude_applied"`
}

type SemanticQuery struct {
	Limit int `query:"limit" validate:"gte=0,lte=50"`
}

type PerformanceQuery struct {
	UserID string `query:"user_id" validate:"max=64"`
}
