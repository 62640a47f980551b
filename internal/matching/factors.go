package matching

import (
	"fmt"
	"strings"

	"github.com/frostlab63/sparkapply-sub000/internal/model"
)

func buildFactors(r Result, profile *model.UserProfile, job *model.Job) model.MatchFactors {
	f := model.MatchFactors{
		Strengths:    []string{},
		Concerns:     []string{},
		SkillMatches: []string{},
		SkillGaps:    []string{},
	}

	if r.Skills >= 0.8 {
		f.Strengths = append(f.Strengths, "Excellent skill match")
	}
	if r.Experience >= 0.8 {
		f.Strengths = append(f.Strengths, "Perfect experience level")
	}
	if r.Location >= 0.9 {
		f.Strengths = append(f.Strengths, "Ideal location match")
	}
	if r.Salary >= 0.8 {
		f.Strengths = append(f.Strengths, "Salary expectations aligned")
	}

	if r.Skills < 0.5 {
		f.Concerns = append(f.Concerns, "Limited skill overlap")
	}
	if r.Experience < 0.5 {
		f.Concerns = append(f.Concerns, "Experience level mismatch")
	}
	if r.Location < 0.4 {
		f.Concerns = append(f.Concerns, "Location preferences not aligned")
	}
	if r.Salary < 0.4 {
		f.Concerns = append(f.Concerns, "Salary expectations may not match")
	}

	user := normalizeSkills(profile.Skills)
	for _, js := range normalizeSkills(job.Skills) {
		if containsSkill(user, js) {
			f.SkillMatches = append(f.SkillMatches, js)
		} else {
			f.SkillGaps = append(f.SkillGaps, js)
		}
	}

	f.LocationMatch = describeLocation(job)
	f.SalaryMatch = describeSalary(job.SalaryMin, job.SalaryMax)
	f.ExperienceMatch = describeExperience(profile.ExperienceLevel, job.ExperienceLevel)
	return f
}

// containsSkill reports whether some user skill contains the job skill.
func containsSkill(user []string, jobSkill string) bool {
	for _, us := range user {
		if strings.Contains(us, jobSkill) {
			return true
		}
	}
	return false
}

func describeLocation(job *model.Job) string {
	switch job.RemoteType {
	case model.RemoteFull:
		return "Fully remote position"
	case model.RemoteHybrid:
		return "Hybrid work arrangement available"
	}
	if strings.TrimSpace(job.Location) == "" {
		return "On-site position in specified location"
	}
	return "On-site position in " + job.Location
}

func describeSalary(min, max *int) string {
	switch {
	case min != nil && max != nil:
		return fmt.Sprintf("Salary range: %s - %s", formatMoney(*min), formatMoney(*max))
	case min != nil:
		return "Starting from " + formatMoney(*min)
	case max != nil:
		return "Up to " + formatMoney(*max)
	default:
		return "Salary not specified"
	}
}

func describeExperience(user, job model.ExperienceLevel) string {
	u, j := levelName(user), levelName(job)
	if u == j {
		return fmt.Sprintf("Perfect match for %s level", j)
	}
	return fmt.Sprintf("Seeking %s level (you have %s level)", j, u)
}

func levelName(l model.ExperienceLevel) string {
	l = model.ExperienceLevel(strings.ToLower(string(l)))
	if !l.Valid() {
		return string(model.ExperienceMid)
	}
	return string(l)
}

// formatMoney renders 100000 as "$100,000".
func formatMoney(v int) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%d", v)
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-$" + b.String()
	}
	return "$" + b.String()
}

// RecommendationReason summarises the strongest dimensions of a result.
func RecommendationReason(r Result) string {
	var reasons []string
	if r.Skills >= 0.8 {
		reasons = append(reasons, "strong skill alignment")
	}
	if r.Experience >= 0.8 {
		reasons = append(reasons, "perfect experience match")
	}
	if r.Location >= 0.9 {
		reasons = append(reasons, "ideal location")
	}
	if r.Salary >= 0.8 {
		reasons = append(reasons, "competitive compensation")
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "good overall compatibility")
	}
	return "Recommended based on " + strings.Join(reasons, ", ") + "."
}
