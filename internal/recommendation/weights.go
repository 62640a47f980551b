package recommendation

import "github.com/frostlab63/sparkapply-sub000/internal/model"

// Weights blend the per-approach scores. Diversity is reserved for the
// diversification pass and does not weight any list directly.
type Weights struct {
	Collaborative float64
	ContentBased  float64
	Popularity    float64
	Diversity     float64
}

func DefaultWeights() Weights {
	return Weights{
		Collaborative: 0.4,
		ContentBased:  0.3,
		Popularity:    0.2,
		Diversity:     0.1,
	}
}

type Kind string

const (
	KindCollaborative Kind = "collaborative"
	KindContentBased  Kind = "content_based"
	KindPopularity    Kind = "popularity"
	KindCombined      Kind = "combined"
	KindExploration   Kind = "exploration"
	KindSemantic      Kind = "semantic"
)

// InteractionScore is the signed strength of a user action.
func InteractionScore(a model.UserAction) float64 {
	switch a {
	case model.ActionApplied:
		return 1.0
	case model.ActionLiked:
		return 0.8
	case model.ActionSaved:
		return 0.6
	case model.ActionViewed:
		return 0.3
	case model.ActionDisliked:
		return -0.5
	case model.ActionIgnored:
		return -0.2
	}
	return 0
}

type Recommendation struct {
	Job           *model.Job `json:"job"`
	Score         float64    `json:"score"`
	OriginalScore float64    `json:"original_score,omitempty"`
	Reason        string     `json:"reason"`
	Kind          Kind       `json:"type"`
}
