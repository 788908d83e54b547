package twine

import (
	"errors"
	"fmt"
)

// ErrScaleRange is returned when a Scale combinator is configured with an
// invalid low/high range.
var ErrScaleRange = errors.New("invalid scale range")

// Similarity is the contract for a similarity or distance primitive between
// two field values. A nil operand means the value is missing or not
// comparable; a primitive called with nil operands should return its own
// missing result. Primitives must be pure.
//
// Concrete string and geographic metrics (Damerau-Levenshtein, haversine
// distance and friends) live outside this package; anything conforming to
// this signature plugs in.
type Similarity func(a, b *string) Score

// Exact is the trivial equality primitive: 1.0 when the values are equal,
// 0.0 otherwise, missing when either operand is missing. Useful for tests
// and for tuning blocking strategies.
func Exact(a, b *string) Score {
	if a == nil || b == nil {
		return Missing()
	}
	if *a == *b {
		return NewScore(1)
	}
	return NewScore(0)
}

// Scale wraps a primitive so that its output is mapped onto the [0, rmax]
// range: values at or below low map to 0, values at or above high map to
// rmax, and values in between scale linearly. Lowering rmax below 1 reduces
// the field's contribution to vector distance, downweighting it relative to
// other fields.
//
// An optional test predicate guards the operands: if either fails the test,
// the result is missing without invoking the primitive. A missing result
// from the primitive stays missing.
//
// Returns ErrScaleRange unless 0 <= low < high.
//
// Example:
//
//	sim, err := Scale(yearCloseness, 0.25, 1.0, 1.0, nil)
func Scale(sim Similarity, low, high, rmax float64, test func(string) bool) (Similarity, error) {
	if low < 0 || low >= high {
		return nil, fmt.Errorf("%w: low %v, high %v", ErrScaleRange, low, high)
	}
	return func(a, b *string) Score {
		if test != nil {
			if a == nil || b == nil || !test(*a) || !test(*b) {
				return Missing()
			}
		}
		s := sim(a, b)
		if !s.Valid {
			return s
		}
		switch {
		case s.Value <= low:
			return NewScore(0)
		case s.Value >= high:
			return NewScore(rmax)
		default:
			return NewScore(rmax * (s.Value - low) / (high - low))
		}
	}, nil
}
