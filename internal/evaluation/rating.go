package evaluation

import (
	"math"
	"sort"

	"github.com/mauv0809/pitchside/internal/matchmaking"
	"github.com/mauv0809/pitchside/internal/roster"
)

// ThresholdMet reports whether enough evaluators have submitted. The 80%
// bound is inclusive and checked in integers.
func ThresholdMet(submitted, total int) bool {
	return total > 0 && submitted*thresholdDen >= total*thresholdNum
}

// OVRChange maps an average rating to an OVR change: 5 is neutral and each
// point either side moves OVR by two. Halves round up.
func OVRChange(avgRating float64) int {
	return int(math.Floor((avgRating-NeutralRating)*pointsPerRating + 0.5))
}

// ApplyChange returns base moved by change, clamped to [1,99].
func ApplyChange(base, change int) int {
	return roster.ClampOVR(base + change)
}

// CollectRatings groups every submitted rating by subject.
func CollectRatings(subs map[string][]matchmaking.SubmittedEvaluation) map[string][]int {
	ratings := make(map[string][]int)
	for _, list := range subs {
		for _, e := range list {
			ratings[e.SubjectID] = append(ratings[e.SubjectID], e.Rating)
		}
	}
	return ratings
}

// ComputeDeltas derives each subject's change from the complete set of ratings.
// baseOVR gives the rating each change applies to; subjects missing from it
// are skipped. Results are ordered by player id.
func ComputeDeltas(subs map[string][]matchmaking.SubmittedEvaluation, baseOVR map[string]int) []Delta {
	ratings := CollectRatings(subs)
	subjects := make([]string, 0, len(ratings))
	for id := range ratings {
		subjects = append(subjects, id)
	}
	sort.Strings(subjects)

	deltas := make([]Delta, 0, len(subjects))
	for _, id := range subjects {
		base, ok := baseOVR[id]
		if !ok {
			continue
		}
		avg := mean(ratings[id])
		change := OVRChange(avg)
		deltas = append(deltas, Delta{
			PlayerID:     id,
			AvgRating:    avg,
			RatingsCount: len(ratings[id]),
			OVRChange:    change,
			PreviousOVR:  base,
			NewOVR:       ApplyChange(base, change),
		})
	}
	return deltas
}

func mean(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}
