package twine

import (
	"strconv"
	"strings"

	"github.com/x448/float16"
)

// Score is one component of a similarity vector: an explicit optional float.
// Valid reports whether the comparison was possible at all. A missing score
// is never the same thing as a score of zero; distance and centroid
// arithmetic skip missing components rather than penalizing them.
type Score struct {
	Value float64
	Valid bool
}

// NewScore returns a valid score with the given value.
func NewScore(v float64) Score { return Score{Value: v, Valid: true} }

// Missing returns the missing-value marker.
func Missing() Score { return Score{} }

// String renders the score for diagnostics, "None" when missing.
func (s Score) String() string {
	if !s.Valid {
		return "None"
	}
	return strconv.FormatFloat(s.Value, 'f', 4, 64)
}

// Vector is a fixed-arity similarity vector for one record pair. Component
// order matches the field order of the RecordComparator that produced it and
// is identical for every pair in a run.
type Vector []Score

// Clone returns a copy of the vector.
func (v Vector) Clone() Vector {
	return append(Vector(nil), v...)
}

// String renders the vector for diagnostics.
func (v Vector) String() string {
	parts := make([]string, len(v))
	for i, s := range v {
		parts[i] = s.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// packVector converts a vector to half-precision bits, halving the memory
// needed per cached comparison. Missing components are encoded as float16
// NaN, which cannot collide with a real similarity score. Precision loss is
// at most ~0.001 for scores in [0, 1], which is immaterial for
// classification.
func packVector(v Vector) []uint16 {
	bits := make([]uint16, len(v))
	for i, s := range v {
		if !s.Valid {
			bits[i] = float16.NaN().Bits()
			continue
		}
		bits[i] = float16.Fromfloat32(float32(s.Value)).Bits()
	}
	return bits
}

// unpackVector restores a vector from half-precision bits.
func unpackVector(bits []uint16) Vector {
	v := make(Vector, len(bits))
	for i, b := range bits {
		f := float16.Frombits(b)
		if f.IsNaN() {
			continue
		}
		v[i] = NewScore(float64(f.Float32()))
	}
	return v
}
