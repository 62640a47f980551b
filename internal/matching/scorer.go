// Package matching computes how well a user profile fits a job posting.
//
// The scorer is pure: it never fails, and missing inputs degrade to fixed
// neutral scores.
package matching

import (
	"math"
	"strings"

	"github.com/frostlab63/sparkapply-sub000/internal/model"
)

type Result struct {
	Skills     float64
	Experience float64
	Location   float64
	Salary     float64
	Culture    float64
	Overall    float64
	Factors    model.MatchFactors
}

type Scorer struct {
	weights    Weights
	categories []SkillCategory
}

func NewScorer(weights Weights, categories []SkillCategory) *Scorer {
	cats := make([]SkillCategory, len(categories))
	for i, c := range categories {
		kw := make([]string, len(c.Keywords))
		copy(kw, c.Keywords)
		cats[i] = SkillCategory{Name: c.Name, Keywords: kw}
	}
	return &Scorer{weights: weights, categories: cats}
}

func NewDefaultScorer() *Scorer {
	return NewScorer(DefaultWeights(), DefaultSkillCategories())
}

func (s *Scorer) Score(profile *model.UserProfile, job *model.Job) Result {
	r := Result{
		Skills:     s.SkillsScore(profile.Skills, job.Skills),
		Experience: ExperienceScore(profile.ExperienceLevel, job.ExperienceLevel),
		Location:   LocationScore(profile.Location, profile.RemotePreference, job.Location, job.RemoteType),
		Salary: SalaryScore(
			Range{Min: profile.SalaryExpectationMin, Max: profile.SalaryExpectationMax},
			Range{Min: job.SalaryMin, Max: job.SalaryMax},
		),
		Culture: CultureScore(profile.CulturePreferences, job.Categories, job.CompanyBenefits()),
	}
	w := s.weights
	overall := r.Skills*w.Skills +
		r.Experience*w.Experience +
		r.Location*w.Location +
		r.Salary*w.Salary +
		r.Culture*w.Culture
	r.Overall = round2(overall)
	r.Factors = buildFactors(r, profile, job)
	return r
}

// SkillsScore blends direct substring matches with shared-category matches.
func (s *Scorer) SkillsScore(userSkills, jobSkills []string) float64 {
	user := normalizeSkills(userSkills)
	job := normalizeSkills(jobSkills)
	if len(job) == 0 {
		return 0.5
	}
	if len(user) == 0 {
		return 0.2
	}

	direct := 0
	for _, js := range job {
		for _, us := range user {
			if strings.Contains(us, js) || strings.Contains(js, us) {
				direct++
				break
			}
		}
	}

	shared := 0
	for _, cat := range s.categories {
		if anyInCategory(user, cat) && anyInCategory(job, cat) {
			shared++
		}
	}

	n := float64(len(job))
	score := 0.8*float64(direct)/n + 0.2*float64(shared)/n
	if len(user) > len(job) {
		score += 0.1
	}
	return math.Min(score, 1.0)
}

func anyInCategory(skills []string, cat SkillCategory) bool {
	for _, sk := range skills {
		for _, kw := range cat.Keywords {
			if strings.Contains(sk, kw) {
				return true
			}
		}
	}
	return false
}

// ExperienceScore depends only on the distance between the two levels.
func ExperienceScore(user, job model.ExperienceLevel) float64 {
	d := user.Rank() - job.Rank()
	if d < 0 {
		d = -d
	}
	switch d {
	case 0:
		return 1.0
	case 1:
		return 0.8
	case 2:
		return 0.5
	default:
		return 0.2
	}
}

func LocationScore(userLocation string, pref model.RemoteType, jobLocation string, jobType model.RemoteType) float64 {
	if !pref.Valid() {
		pref = model.RemoteHybrid
	}
	if !jobType.Valid() {
		jobType = model.RemoteOnSite
	}

	switch jobType {
	case model.RemoteFull:
		switch pref {
		case model.RemoteFull:
			return 1.0
		case model.RemoteHybrid:
			return 0.9
		default:
			return 0.7
		}
	case model.RemoteHybrid:
		switch pref {
		case model.RemoteHybrid:
			return 1.0
		case model.RemoteOnSite:
			return 0.9
		default:
			return 0.8
		}
	}

	if pref == model.RemoteFull {
		return 0.3
	}
	return cityScore(userLocation, jobLocation)
}

func cityScore(userLocation, jobLocation string) float64 {
	u := strings.ToLower(strings.TrimSpace(userLocation))
	j := strings.ToLower(strings.TrimSpace(jobLocation))
	if u == "" || j == "" {
		return 0.4
	}
	if u == j {
		return 1.0
	}
	if city(u) == city(j) {
		return 0.9
	}
	if strings.Contains(u, j) || strings.Contains(j, u) {
		return 0.6
	}
	return 0.4
}

func city(loc string) string {
	c, _, _ := strings.Cut(loc, ",")
	return strings.TrimSpace(c)
}

// Range is a salary range. A missing Max leaves the range open above; a
// missing Min collapses it to the single point Max.
type Range struct {
	Min *int
	Max *int
}

func (r Range) bounds() (lo, hi float64, open, ok bool) {
	switch {
	case r.Min == nil && r.Max == nil:
		return 0, 0, false, false
	case r.Max == nil:
		return float64(*r.Min), math.Inf(1), true, true
	case r.Min == nil:
		lo, hi = float64(*r.Max), float64(*r.Max)
	default:
		lo, hi = float64(*r.Min), float64(*r.Max)
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi, false, true
}

// SalaryScore compares two ranges. Open ranges are left out of the average
// width and the average salary.
func SalaryScore(user, job Range) float64 {
	uLo, uHi, uOpen, uok := user.bounds()
	jLo, jHi, jOpen, jok := job.bounds()
	if !uok || !jok {
		return 0.5
	}

	overlapLo := math.Max(uLo, jLo)
	overlapHi := math.Min(uHi, jHi)
	if overlapLo <= overlapHi {
		var widths []float64
		if !uOpen {
			widths = append(widths, uHi-uLo)
		}
		if !jOpen {
			widths = append(widths, jHi-jLo)
		}
		avgRange := mean(widths)
		if avgRange == 0 {
			return 1.0
		}
		return math.Min((overlapHi-overlapLo)/avgRange, 1.0)
	}

	salaries := []float64{uLo, jLo}
	if !uOpen {
		salaries = append(salaries, uHi)
	}
	if !jOpen {
		salaries = append(salaries, jHi)
	}
	distance := overlapLo - overlapHi
	avg := mean(salaries)
	if avg == 0 {
		return 0.5
	}
	return math.Max(0.1, math.Exp(-distance/avg))
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

func CultureScore(preferences, categories, benefits []string) float64 {
	prefs := normalizeSkills(preferences)
	if len(prefs) == 0 {
		return 0.5
	}
	pool := append(normalizeSkills(categories), normalizeSkills(benefits)...)

	matched := 0
	for _, p := range prefs {
		for _, v := range pool {
			if strings.Contains(v, p) || strings.Contains(p, v) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(prefs))
}

func normalizeSkills(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
