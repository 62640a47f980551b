package model

import (
	"fmt"
	"strings"
)

type ExperienceLevel string

const (
	ExperienceEntry     ExperienceLevel = "entry"
	ExperienceMid       ExperienceLevel = "mid"
	ExperienceSenior    ExperienceLevel = "senior"
	ExperienceExecutive ExperienceLevel = "executive"
)

var experienceRank = map[ExperienceLevel]int{
	ExperienceEntry:     0,
	ExperienceMid:       1,
	ExperienceSenior:    2,
	ExperienceExecutive: 3,
}

// Rank is the ordinal position of the level. Unknown or empty levels rank as mid.
func (l ExperienceLevel) Rank() int {
	if r, ok := experienceRank[ExperienceLevel(strings.ToLower(string(l)))]; ok {
		return r
	}
	return experienceRank[ExperienceMid]
}

func (l ExperienceLevel) Valid() bool {
	_, ok := experienceRank[l]
	return ok
}

func ParseExperienceLevel(s string) (ExperienceLevel, error) {
	l := ExperienceLevel(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("invalid experience level %q", s)
	}
	return l, nil
}

type RemoteType string

const (
	RemoteFull   RemoteType = "remote"
	RemoteHybrid RemoteType = "hybrid"
	RemoteOnSite RemoteType = "on_site"
)

func (r RemoteType) Valid() bool {
	switch r {
	case RemoteFull, RemoteHybrid, RemoteOnSite:
		return true
	}
	return false
}

func ParseRemoteType(s string) (RemoteType, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.ReplaceAll(v, "-", "_")
	if v == "onsite" {
		v = string(RemoteOnSite)
	}
	r := RemoteType(v)
	if !r.Valid() {
		return "", fmt.Errorf("invalid remote type %q", s)
	}
	return r, nil
}

type UserAction string

const (
	ActionLiked    UserAction = "liked"
	ActionDisliked UserAction = "disliked"
	ActionApplied  UserAction = "applied"
	ActionSaved    UserAction = "saved"
	ActionIgnored  UserAction = "ignored"
	ActionViewed   UserAction = "viewed"
)

func (a UserAction) Valid() bool {
	switch a {
	case ActionLiked, ActionDisliked, ActionApplied, ActionSaved, ActionIgnored, ActionViewed:
		return true
	}
	return false
}

func ParseUserAction(s string) (UserAction, error) {
	a := UserAction(strings.ToLower(strings.TrimSpace(s)))
	if !a.Valid() {
		return "", fmt.Errorf("invalid action %q", s)
	}
	return a, nil
}

// Positive reports whether the action expresses interest in the job.
func (a UserAction) Positive() bool {
	return a == ActionLiked || a == ActionApplied || a == ActionSaved
}

func (a UserAction) Negative() bool {
	return a == ActionDisliked || a == ActionIgnored
}
