package twine

import (
	"errors"
	"math"
)

// ErrNoExamples is returned when nearest-neighbour classification is given
// no match or no non-match examples.
var ErrNoExamples = errors.New("nearest-neighbour needs match and non-match examples")

// ClassifyNearest classifies each compared pair by whichever example
// similarity vector it is nearest to: nearer to any match example than to
// any non-match example means match. The distance must skip missing
// components, so examples may themselves carry missing values.
//
// Scores are the log10 ratio of the distance to the nearest non-match
// example over the distance to the nearest match example; both maps carry
// scores, partitioned by which side won. A nil distance defaults to L2.
func ClassifyNearest(comps *Comparisons, exMatches, exNonmatches []Vector, distance VectorDistance) (matches, nonmatches map[Pair]float64, err error) {
	if len(exMatches) == 0 || len(exNonmatches) == 0 {
		return nil, nil, ErrNoExamples
	}
	if distance == nil {
		distance = L2
	}
	matches = make(map[Pair]float64)
	nonmatches = make(map[Pair]float64)
	for _, p := range comps.Pairs() {
		v, _ := comps.Get(p)
		matchDist := nearestDistance(v, exMatches, distance)
		nonmatchDist := nearestDistance(v, exNonmatches, distance)
		score := math.Log10((nonmatchDist + 0.1) / (matchDist + 0.1))
		if matchDist < nonmatchDist {
			matches[p] = score
		} else {
			nonmatches[p] = score
		}
	}
	return matches, nonmatches, nil
}

func nearestDistance(v Vector, examples []Vector, distance VectorDistance) float64 {
	best := math.Inf(1)
	for _, ex := range examples {
		if d := distance(v, ex); d < best {
			best = d
		}
	}
	return best
}
