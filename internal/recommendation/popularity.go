package recommendation

import (
	"math"
	"time"

	"github.com/frostlab63/sparkapply-sub000/internal/model"
)

const popularityReason = "Popular job with high engagement"

// PopularityScore is the same for every user: recency and engagement, with a
// bonus for verified companies.
func PopularityScore(j *model.Job, now time.Time) float64 {
	recency := 0.1
	if !j.PostedDate.IsZero() {
		days := now.Sub(j.PostedDate).Hours() / 24
		recency = math.Min(1, math.Max(0.1, 1-days/30))
	}
	engagement := math.Min(1, (float64(j.ViewCount)*0.1+float64(j.ApplicationCount)*2)/100)
	companyFactor := 1.0
	if j.CompanyVerified() {
		companyFactor = 1.2
	}
	return (0.4*recency + 0.4*engagement + 0.2) * companyFactor
}

func Popularity(candidates []*model.Job, now time.Time) []Recommendation {
	recs := make([]Recommendation, 0, len(candidates))
	for _, j := range candidates {
		recs = append(recs, Recommendation{Job: j, Score: PopularityScore(j, now), Reason: popularityReason, Kind: KindPopularity})
	}
	sortByScore(recs)
	return recs
}
