package recommendation

import (
	"fmt"
	"math"
	"sort"

	"github.com/frostlab63/sparkapply-sub000/internal/model"
	"github.com/google/uuid"
)

const (
	minPeerInteractions = 3
	minSimilarity       = 0.1
	maxSimilarUsers     = 50
	noSignalScore       = 0.3
	noPeersScore        = 0.5
)

// Vector maps a job to the signed interaction score of one user.
type Vector map[uuid.UUID]float64

// Peer is another user's interaction history. Interactions without an
// explicit action count as viewed.
type Peer struct {
	UserID       string
	Interactions []model.Interaction
}

type SimilarUser struct {
	UserID     string
	Similarity float64
	signals    Vector
}

func vectorAction(a model.UserAction) bool {
	return a.Positive() || a == model.ActionDisliked
}

// BuildVector keeps liked, saved, applied and disliked actions. When a job
// appears more than once the most recent action wins.
func BuildVector(interactions []model.Interaction) Vector {
	sorted := sortedByTime(interactions)
	v := Vector{}
	for _, in := range sorted {
		if vectorAction(in.Action) {
			v[in.JobID] = InteractionScore(in.Action)
		}
	}
	return v
}

// signalVector keeps every interaction, used to read a peer's opinion of a candidate.
func signalVector(interactions []model.Interaction) Vector {
	sorted := sortedByTime(interactions)
	v := Vector{}
	for _, in := range sorted {
		a := in.Action
		if a == "" {
			a = model.ActionViewed
		}
		v[in.JobID] = InteractionScore(a)
	}
	return v
}

func sortedByTime(interactions []model.Interaction) []model.Interaction {
	out := make([]model.Interaction, len(interactions))
	copy(out, interactions)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// CosineSimilarity takes the dot product over shared jobs and the norms over
// each full vector. Vectors with nothing in common score 0.
func CosineSimilarity(a, b Vector) float64 {
	var dot float64
	shared := 0
	for k, av := range a {
		if bv, ok := b[k]; ok {
			dot += av * bv
			shared++
		}
	}
	if shared == 0 {
		return 0
	}
	var na, nb float64
	for _, v := range a {
		na += v * v
	}
	for _, v := range b {
		nb += v * v
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// FindSimilarUsers ranks qualifying peers by similarity to the target vector.
func FindSimilarUsers(targetUserID string, target Vector, peers []Peer) []SimilarUser {
	if len(target) == 0 {
		return nil
	}
	var out []SimilarUser
	for _, p := range peers {
		if p.UserID == targetUserID {
			continue
		}
		positive := 0
		for _, in := range p.Interactions {
			if in.Action.Positive() {
				positive++
			}
		}
		if positive < minPeerInteractions {
			continue
		}
		sim := CosineSimilarity(target, BuildVector(p.Interactions))
		if sim > minSimilarity {
			out = append(out, SimilarUser{UserID: p.UserID, Similarity: sim, signals: signalVector(p.Interactions)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	if len(out) > maxSimilarUsers {
		out = out[:maxSimilarUsers]
	}
	return out
}

// Collaborative scores candidates by the similarity-weighted opinion of similar users.
func Collaborative(targetUserID string, history []model.Interaction, peers []Peer, candidates []*model.Job) []Recommendation {
	similar := FindSimilarUsers(targetUserID, BuildVector(history), peers)

	recs := make([]Recommendation, 0, len(candidates))
	if len(similar) == 0 {
		for _, j := range candidates {
			recs = append(recs, Recommendation{Job: j, Score: noPeersScore, Reason: "No similar users found", Kind: KindCollaborative})
		}
		return recs
	}

	reason := fmt.Sprintf("Based on %d similar users", len(similar))
	for _, j := range candidates {
		var sum, weight float64
		for _, su := range similar {
			if s, ok := su.signals[j.ID]; ok {
				sum += s * su.Similarity
				weight += su.Similarity
			}
		}
		score := noSignalScore
		if weight > 0 {
			score = sum / weight
		}
		recs = append(recs, Recommendation{Job: j, Score: score, Reason: reason, Kind: KindCollaborative})
	}
	sortByScore(recs)
	return recs
}

func sortByScore(recs []Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
}
