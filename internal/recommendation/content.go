package recommendation

import (
	"github.com/frostlab63/sparkapply-sub000/internal/matching"
	"github.com/frostlab63/sparkapply-sub000/internal/model"
)

const contentReason = "Based on your profile and preferences"

// ContentScore compares the live profile with a job on skills, experience,
// location and remote arrangement. Salary and culture are not considered.
func ContentScore(s *matching.Scorer, p *model.UserProfile, j *model.Job) float64 {
	skills := s.SkillsScore(p.Skills, j.Skills)
	exp := matching.ExperienceScore(p.ExperienceLevel, j.ExperienceLevel)
	loc := matching.LocationScore(p.Location, p.RemotePreference, j.Location, j.RemoteType)
	remote := 0.5
	if p.RemotePreference != "" && p.RemotePreference == j.RemoteType {
		remote = 1.0
	}
	return 0.4*skills + 0.2*exp + 0.2*loc + 0.2*remote
}

func ContentBased(s *matching.Scorer, p *model.UserProfile, candidates []*model.Job) []Recommendation {
	recs := make([]Recommendation, 0, len(candidates))
	for _, j := range candidates {
		recs = append(recs, Recommendation{Job: j, Score: ContentScore(s, p, j), Reason: contentReason, Kind: KindContentBased})
	}
	sortByScore(recs)
	return recs
}
