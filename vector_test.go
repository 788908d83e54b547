package twine

import (
	"math"
	"testing"
)

func TestScoreString(t *testing.T) {
	if got := NewScore(0.5).String(); got != "0.5000" {
		t.Errorf("String() = %q, want 0.5000", got)
	}
	if got := Missing().String(); got != "None" {
		t.Errorf("String() = %q, want None", got)
	}
}

func TestVectorString(t *testing.T) {
	v := Vector{NewScore(1), Missing(), NewScore(0)}
	want := "[1.0000, None, 0.0000]"
	if got := v.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestVectorCloneIsIndependent(t *testing.T) {
	v := Vector{NewScore(1), NewScore(2)}
	c := v.Clone()
	c[0] = Missing()
	if !v[0].Valid {
		t.Errorf("Clone shares backing storage with the original")
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	v := Vector{NewScore(0), NewScore(1), NewScore(0.375), Missing(), NewScore(0.8)}
	got := unpackVector(packVector(v))
	if len(got) != len(v) {
		t.Fatalf("round trip changed arity: %d != %d", len(got), len(v))
	}
	for i := range v {
		if got[i].Valid != v[i].Valid {
			t.Errorf("component %d validity changed: %v -> %v", i, v[i], got[i])
			continue
		}
		if v[i].Valid && math.Abs(got[i].Value-v[i].Value) > 0.001 {
			t.Errorf("component %d drifted: %v -> %v", i, v[i].Value, got[i].Value)
		}
	}
}

func TestPackMissingNeverCollides(t *testing.T) {
	// A missing component must come back missing even next to real zeros
	v := Vector{NewScore(0), Missing()}
	got := unpackVector(packVector(v))
	if !got[0].Valid || got[1].Valid {
		t.Errorf("round trip confused zero and missing: %v", got)
	}
}
