package twine

import (
	"errors"
	"fmt"
	"math"
)

// ErrBadStdev is returned when WeightedL2 is configured with a
// non-positive standard deviation.
var ErrBadStdev = errors.New("standard deviations must be positive")

// VectorDistance computes the distance between two similarity vectors of
// equal arity. Implementations must skip components where either operand is
// missing — a non-comparable field tells us nothing about the pair, so it
// must neither pull the pair toward nor push it away from a centroid.
type VectorDistance func(a, b Vector) float64

// L2 is the Euclidean distance between two similarity vectors, skipping
// components where either operand is missing.
//
// Formula: sqrt(sum((a[i] - b[i])^2)) over components valid in both.
func L2(a, b Vector) float64 {
	var sum float64
	for i := range a {
		if !a[i].Valid || !b[i].Valid {
			continue
		}
		diff := a[i].Value - b[i].Value
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

// WeightedL2 builds a normalized Euclidean distance — the Mahalanobis
// distance with a diagonal covariance matrix. Each component difference is
// divided by its standard deviation before squaring, so a higher-variance
// component contributes less. Missing components are skipped as in L2.
//
// Guideline when not estimating stdevs empirically: for each component, set
// the stdev to the absolute difference below which two values should count
// as close.
func WeightedL2(stdevs []float64) (VectorDistance, error) {
	for i, s := range stdevs {
		if s <= 0 {
			return nil, fmt.Errorf("%w: component %d has stdev %v", ErrBadStdev, i, s)
		}
	}
	scaled := append([]float64(nil), stdevs...)
	return func(a, b Vector) float64 {
		var sum float64
		for i := range a {
			if !a[i].Valid || !b[i].Valid {
				continue
			}
			diff := (a[i].Value - b[i].Value) / scaled[i]
			sum += diff * diff
		}
		return math.Sqrt(sum)
	}, nil
}
