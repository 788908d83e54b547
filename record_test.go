package twine

import (
	"errors"
	"testing"
)

// mustRecord builds a record or fails the test.
func mustRecord(t *testing.T, schema *Schema, values ...string) *Record {
	t.Helper()
	r, err := NewRecord(schema, values...)
	if err != nil {
		t.Fatalf("NewRecord(%v) failed: %v", values, err)
	}
	return r
}

func TestSchemaLookup(t *testing.T) {
	s := NewSchema("id", "name", "age")

	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
	pos, ok := s.Pos("name")
	if !ok || pos != 1 {
		t.Errorf("Pos(name) = %d, %v, want 1, true", pos, ok)
	}
	if _, ok := s.Pos("missing"); ok {
		t.Errorf("Pos(missing) should not resolve")
	}
}

func TestNewRecordValidation(t *testing.T) {
	s := NewSchema("id", "name")

	if _, err := NewRecord(s, "1"); !errors.Is(err, ErrSchemaMismatch) {
		t.Errorf("NewRecord with wrong arity: err = %v, want ErrSchemaMismatch", err)
	}
	if _, err := NewRecord(nil); !errors.Is(err, ErrEmptyRecord) {
		t.Errorf("NewRecord with no values: err = %v, want ErrEmptyRecord", err)
	}
	// Schemaless records are allowed with any arity
	if _, err := NewRecord(nil, "1", "a", "b", "c"); err != nil {
		t.Errorf("schemaless NewRecord failed: %v", err)
	}
}

func TestRecordAccess(t *testing.T) {
	s := NewSchema("id", "name")
	r := mustRecord(t, s, "7", "Jon")

	if r.ID() != "7" {
		t.Errorf("ID() = %q, want 7", r.ID())
	}
	v, err := r.Value(1)
	if err != nil || v != "Jon" {
		t.Errorf("Value(1) = %q, %v, want Jon", v, err)
	}
	if _, err := r.Value(5); !errors.Is(err, ErrFieldLookup) {
		t.Errorf("Value(5): err = %v, want ErrFieldLookup", err)
	}
}

func TestRecordOrdering(t *testing.T) {
	a := mustRecord(t, nil, "1", "x")
	b := mustRecord(t, nil, "2", "y")

	if !a.Less(b) || b.Less(a) {
		t.Errorf("ordering by identifier is broken")
	}
}

func TestNewPairCanonicalOrder(t *testing.T) {
	a := mustRecord(t, nil, "1")
	b := mustRecord(t, nil, "2")

	// Same canonical pair regardless of discovery order
	if NewPair(a, b) != NewPair(b, a) {
		t.Errorf("NewPair is not canonical: %v != %v", NewPair(a, b), NewPair(b, a))
	}
	p := NewPair(b, a)
	if p.A != a || p.B != b {
		t.Errorf("NewPair(b, a) = %v, want A=1 B=2", p)
	}
}

func TestOrderedPairKeepsOrder(t *testing.T) {
	left := mustRecord(t, nil, "9")
	right := mustRecord(t, nil, "1")

	p := OrderedPair(left, right)
	if p.A != left || p.B != right {
		t.Errorf("OrderedPair reordered the records: %v", p)
	}
}

func TestPairSet(t *testing.T) {
	a := mustRecord(t, nil, "1")
	b := mustRecord(t, nil, "2")
	c := mustRecord(t, nil, "3")

	s := NewPairSet(NewPair(a, b))
	s.Add(NewPair(b, c))
	s.Add(NewPair(a, b)) // duplicate

	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	if !s.Has(NewPair(b, a)) {
		t.Errorf("Has(canonical pair) = false, want true")
	}

	pairs := s.Pairs()
	if len(pairs) != 2 || pairs[0] != NewPair(a, b) || pairs[1] != NewPair(b, c) {
		t.Errorf("Pairs() = %v, want sorted [(1,2) (2,3)]", pairs)
	}
}
