package recommendation

import "github.com/frostlab63/sparkapply-sub000/internal/model"

type SalaryBand struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Preferences counts the attributes of jobs a user reacted positively to.
type Preferences struct {
	Companies        map[string]int `json:"preferred_companies"`
	Skills           map[string]int `json:"preferred_skills"`
	Locations        map[string]int `json:"preferred_locations"`
	ExperienceLevels map[string]int `json:"preferred_experience_levels"`
	RemoteTypes      map[string]int `json:"preferred_remote_types"`
	Salary           SalaryBand     `json:"salary_preferences"`
	InteractionCount int            `json:"interaction_count"`
}

// ExtractPreferences reads liked, saved and applied interactions that carry
// their job. The salary band widens to cover every job with both bounds.
func ExtractPreferences(history []model.Interaction) Preferences {
	p := Preferences{
		Companies:        map[string]int{},
		Skills:           map[string]int{},
		Locations:        map[string]int{},
		ExperienceLevels: map[string]int{},
		RemoteTypes:      map[string]int{},
		InteractionCount: len(history),
	}
	for _, in := range history {
		j := in.Job
		if j == nil || !in.Action.Positive() {
			continue
		}
		if j.CompanyName != "" {
			p.Companies[j.CompanyName]++
		}
		for _, s := range j.Skills {
			p.Skills[s]++
		}
		if j.Location != "" {
			p.Locations[j.Location]++
		}
		if j.ExperienceLevel != "" {
			p.ExperienceLevels[string(j.ExperienceLevel)]++
		}
		if j.RemoteType != "" {
			p.RemoteTypes[string(j.RemoteType)]++
		}
		if j.SalaryMin != nil && j.SalaryMax != nil {
			if p.Salary.Min == 0 || *j.SalaryMin < p.Salary.Min {
				p.Salary.Min = *j.SalaryMin
			}
			if *j.SalaryMax > p.Salary.Max {
				p.Salary.Max = *j.SalaryMax
			}
		}
	}
	return p
}
