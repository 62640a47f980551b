package recommendation

import (
	"math"
	"strings"

	"github.com/google/uuid"
)

// Combine merges the per-approach lists by job. Each score is weighted by its
// approach and reasons are joined in approach order.
func Combine(w Weights, collaborative, contentBased, popularity []Recommendation) []Recommendation {
	type acc struct {
		rec     Recommendation
		reasons []string
	}
	byJob := map[uuid.UUID]*acc{}
	var order []uuid.UUID

	add := func(recs []Recommendation, weight float64) {
		for _, r := range recs {
			a, ok := byJob[r.Job.ID]
			if !ok {
				a = &acc{rec: Recommendation{Job: r.Job, Kind: KindCombined}}
				byJob[r.Job.ID] = a
				order = append(order, r.Job.ID)
			}
			a.rec.Score += r.Score * weight
			a.reasons = append(a.reasons, r.Reason)
		}
	}
	add(collaborative, w.Collaborative)
	add(contentBased, w.ContentBased)
	add(popularity, w.Popularity)

	out := make([]Recommendation, 0, len(order))
	for _, id := range order {
		a := byJob[id]
		a.rec.Reason = strings.Join(a.reasons, "; ")
		out = append(out, a.rec)
	}
	sortByScore(out)
	return out
}

// Diversify walks the ranked list once and penalises jobs whose category or
// company already appeared higher up. Scores never increase.
func Diversify(recs []Recommendation, factor float64) []Recommendation {
	if factor == 0 || len(recs) <= 1 {
		return recs
	}
	seenJobs := map[uuid.UUID]bool{}
	seenCategories := map[string]bool{}
	seenCompanies := map[string]bool{}

	out := make([]Recommendation, 0, len(recs))
	for _, r := range recs {
		if seenJobs[r.Job.ID] {
			continue
		}
		penalty := 0.0
		for _, c := range r.Job.Categories {
			if seenCategories[c] {
				penalty += 0.2
				break
			}
		}
		company := r.Job.CompanyKey()
		if company != "" && seenCompanies[company] {
			penalty += 0.1
		}

		r.OriginalScore = r.Score
		r.Score -= math.Abs(r.Score) * penalty * factor
		out = append(out, r)

		seenJobs[r.Job.ID] = true
		for _, c := range r.Job.Categories {
			seenCategories[c] = true
		}
		if company != "" {
			seenCompanies[company] = true
		}
	}
	sortByScore(out)
	return out
}
