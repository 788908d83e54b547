package twine

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrSchemaMismatch is returned when a record is built with a value count
// that does not match its schema.
var ErrSchemaMismatch = errors.New("value count does not match schema")

// ErrEmptyRecord is returned when a record is built without any values.
// Every record needs at least its identifier field.
var ErrEmptyRecord = errors.New("record has no values")

// Schema is an immutable, ordered list of field names with a name-to-position
// lookup table. It is built once at configuration time and shared by every
// record in a dataset, so named field access stays O(1) without storing the
// names on each record.
type Schema struct {
	names  []string
	byName map[string]int
}

// NewSchema creates a schema from an ordered list of field names.
// The first field is the record identifier.
func NewSchema(names ...string) *Schema {
	s := &Schema{
		names:  append([]string(nil), names...),
		byName: make(map[string]int, len(names)),
	}
	for i, name := range names {
		s.byName[name] = i
	}
	return s
}

// Len returns the number of fields in the schema.
func (s *Schema) Len() int { return len(s.names) }

// Names returns a copy of the ordered field names.
func (s *Schema) Names() []string { return append([]string(nil), s.names...) }

// Pos returns the position of the named field and whether it exists.
func (s *Schema) Pos(name string) (int, bool) {
	i, ok := s.byName[name]
	return i, ok
}

// Record is an opaque, immutable, positionally-valued record. Its first
// value is a unique identifier used for ordering and pair canonicalization.
// Records are never mutated by the library; callers own the collection.
//
// A record may carry a schema for named field access. Records without a
// schema support positional and derived access only.
type Record struct {
	schema *Schema
	values []string
}

// NewRecord creates a record bound to an optional schema. If schema is
// non-nil the value count must match the schema exactly.
//
// Example:
//
//	people := NewSchema("id", "name", "age")
//	rec, err := NewRecord(people, "1", "Jon", "30")
func NewRecord(schema *Schema, values ...string) (*Record, error) {
	if len(values) == 0 {
		return nil, ErrEmptyRecord
	}
	if schema != nil && len(values) != schema.Len() {
		return nil, fmt.Errorf("%w: got %d values for %d fields",
			ErrSchemaMismatch, len(values), schema.Len())
	}
	return &Record{
		schema: schema,
		values: append([]string(nil), values...),
	}, nil
}

// ID returns the record's unique identifier (its first value).
func (r *Record) ID() string { return r.values[0] }

// Len returns the number of values in the record.
func (r *Record) Len() int { return len(r.values) }

// Value returns the value at position i.
func (r *Record) Value(i int) (string, error) {
	if i < 0 || i >= len(r.values) {
		return "", fmt.Errorf("%w: column %d out of range for record %q (%d values)",
			ErrFieldLookup, i, r.ID(), len(r.values))
	}
	return r.values[i], nil
}

// Values returns a copy of the record's values.
func (r *Record) Values() []string { return append([]string(nil), r.values...) }

// Schema returns the record's schema, or nil for schemaless records.
func (r *Record) Schema() *Schema { return r.schema }

// Less reports whether r precedes other under the record ordering,
// which is by identifier.
func (r *Record) Less(other *Record) bool { return r.ID() < other.ID() }

// String renders the record for diagnostics.
func (r *Record) String() string {
	return "(" + strings.Join(r.values, ", ") + ")"
}

// Pair is a pair of compared records. For self-linkage the pair is held in
// canonical order (A precedes B by identifier) so that a pair discovered via
// two different blocking keys maps to the same cache entry. For cross-linkage
// A is always from the left dataset and B from the right, without reordering.
//
// Pair is comparable and is used directly as a map key.
type Pair struct {
	A, B *Record
}

// NewPair creates a canonically ordered pair for self-linkage: the record
// with the lesser identifier becomes A.
func NewPair(a, b *Record) Pair {
	if b.Less(a) {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// OrderedPair creates a cross-linkage pair that preserves the given order:
// a from the left dataset, b from the right.
func OrderedPair(a, b *Record) Pair {
	return Pair{A: a, B: b}
}

// String renders the pair's identifiers for diagnostics.
func (p Pair) String() string {
	return "(" + p.A.ID() + ", " + p.B.ID() + ")"
}

// PairSet is a set of record pairs.
type PairSet map[Pair]struct{}

// NewPairSet creates a set containing the given pairs.
func NewPairSet(pairs ...Pair) PairSet {
	s := make(PairSet, len(pairs))
	for _, p := range pairs {
		s.Add(p)
	}
	return s
}

// Add inserts a pair into the set.
func (s PairSet) Add(p Pair) { s[p] = struct{}{} }

// Has reports whether the pair is in the set.
func (s PairSet) Has(p Pair) bool {
	_, ok := s[p]
	return ok
}

// Len returns the number of pairs in the set.
func (s PairSet) Len() int { return len(s) }

// Pairs returns the set's pairs sorted by identifier for deterministic
// iteration.
func (s PairSet) Pairs() []Pair {
	pairs := make([]Pair, 0, len(s))
	for p := range s {
		pairs = append(pairs, p)
	}
	sortPairs(pairs)
	return pairs
}

// ScoredPairs returns the keys of a classifier score map sorted by
// identifier for deterministic iteration.
func ScoredPairs(scores map[Pair]float64) []Pair {
	pairs := make([]Pair, 0, len(scores))
	for p := range scores {
		pairs = append(pairs, p)
	}
	sortPairs(pairs)
	return pairs
}

func sortPairs(pairs []Pair) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A.ID() != pairs[j].A.ID() {
			return pairs[i].A.ID() < pairs[j].A.ID()
		}
		return pairs[i].B.ID() < pairs[j].B.ID()
	})
}
