package twine

import (
	"errors"
	"math"
	"strconv"
	"testing"
)

func str(s string) *string { return &s }

func TestExact(t *testing.T) {
	if got := Exact(str("a"), str("a")); !got.Valid || got.Value != 1 {
		t.Errorf("Exact(a, a) = %v, want 1", got)
	}
	if got := Exact(str("a"), str("b")); !got.Valid || got.Value != 0 {
		t.Errorf("Exact(a, b) = %v, want 0", got)
	}
	if got := Exact(nil, str("a")); got.Valid {
		t.Errorf("Exact(nil, a) = %v, want missing", got)
	}
	if got := Exact(nil, nil); got.Valid {
		t.Errorf("Exact(nil, nil) = %v, want missing", got)
	}
}

// numericSim parses its first operand as the raw similarity, for driving
// Scale through known values.
func numericSim(a, b *string) Score {
	v, err := strconv.ParseFloat(*a, 64)
	if err != nil {
		return Missing()
	}
	return NewScore(v)
}

func TestScaleMapsRange(t *testing.T) {
	sim, err := Scale(numericSim, 0.25, 1.0, 1.0, nil)
	if err != nil {
		t.Fatalf("Scale failed: %v", err)
	}

	cases := []struct {
		in   string
		want float64
	}{
		{"0.1", 0},     // below low
		{"0.25", 0},    // at low
		{"1.0", 1},     // at high
		{"1.5", 1},     // above high clamps to rmax
		{"0.625", 0.5}, // midpoint
	}
	for _, tc := range cases {
		got := sim(str(tc.in), str(tc.in))
		if !got.Valid || math.Abs(got.Value-tc.want) > 1e-9 {
			t.Errorf("scaled(%s) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestScaleRmaxDownweights(t *testing.T) {
	sim, err := Scale(numericSim, 0.0, 1.0, 0.5, nil)
	if err != nil {
		t.Fatalf("Scale failed: %v", err)
	}
	if got := sim(str("1.0"), str("1.0")); !got.Valid || got.Value != 0.5 {
		t.Errorf("scaled = %v, want 0.5", got)
	}
}

func TestScaleTestPredicateGuards(t *testing.T) {
	called := false
	raw := func(a, b *string) Score {
		called = true
		return NewScore(1)
	}
	numeric := func(s string) bool {
		_, err := strconv.ParseFloat(s, 64)
		return err == nil
	}
	sim, err := Scale(raw, 0.0, 1.0, 1.0, numeric)
	if err != nil {
		t.Fatalf("Scale failed: %v", err)
	}

	if got := sim(str("abc"), str("1.0")); got.Valid {
		t.Errorf("guarded comparison = %v, want missing", got)
	}
	if called {
		t.Errorf("primitive was invoked despite failing guard")
	}
	if got := sim(nil, str("1.0")); got.Valid {
		t.Errorf("guarded nil comparison = %v, want missing", got)
	}
}

func TestScalePreservesMissing(t *testing.T) {
	raw := func(a, b *string) Score { return Missing() }
	sim, err := Scale(raw, 0.0, 1.0, 1.0, nil)
	if err != nil {
		t.Fatalf("Scale failed: %v", err)
	}
	if got := sim(str("a"), str("b")); got.Valid {
		t.Errorf("scaled missing = %v, want missing", got)
	}
}

func TestScaleRejectsBadRange(t *testing.T) {
	for _, rg := range []struct{ low, high float64 }{
		{-0.1, 1.0},
		{0.5, 0.5},
		{1.0, 0.5},
	} {
		if _, err := Scale(numericSim, rg.low, rg.high, 1.0, nil); !errors.Is(err, ErrScaleRange) {
			t.Errorf("Scale(low=%v, high=%v): err = %v, want ErrScaleRange", rg.low, rg.high, err)
		}
	}
}
