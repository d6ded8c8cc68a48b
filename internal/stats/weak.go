package stats

import (
	"sort"

	"github.com/verte-zerg/mathdrill/internal/model"
)

// minWeakAttempts keeps a single unlucky answer from marking an operation weak.
const minWeakAttempts = 5

// WeakestOperations returns up to top operation names with the lowest
// accuracy, ignoring operations with too few attempts.
func WeakestOperations(aggs []model.OpAggregate, top int) []string {
	candidates := make([]model.OpAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Correct+agg.Incorrect >= minWeakAttempts && agg.Incorrect > 0 {
			candidates = append(candidates, agg)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		ai := opAccuracy(candidates[i])
		aj := opAccuracy(candidates[j])
		if ai == aj {
			return candidates[i].Operation < candidates[j].Operation
		}
		return ai < aj
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	out := make([]string, 0, top)
	for _, c := range candidates[:top] {
		out = append(out, c.Operation)
	}
	return out
}

func opAccuracy(agg model.OpAggregate) float64 {
	total := agg.Correct + agg.Incorrect
	if total == 0 {
		return 1.0
	}
	return float64(agg.Correct) / float64(total)
}
