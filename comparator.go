package twine

import (
	"errors"
	"fmt"
	"sort"
)

// ErrDuplicateField is returned when a RecordComparator is configured with
// two field comparators under the same name.
var ErrDuplicateField = errors.New("duplicate field comparator name")

// ErrNoFields is returned when a RecordComparator is configured without any
// field comparators.
var ErrNoFields = errors.New("record comparator has no fields")

// FieldComparator computes the similarity of one field across a pair of
// records. Implementations must be deterministic: the same pair of records
// always yields the same score.
type FieldComparator interface {
	// Compare returns the field similarity for the record pair, or an
	// error if the field cannot be resolved on either record.
	Compare(a, b *Record) (Score, error)
}

// rawValuer is implemented by field comparators that can report the raw,
// pre-similarity field value for a record. Used by the diagnostic export;
// not required for correctness.
type rawValuer interface {
	rawValue(r *Record, right bool) (string, error)
}

// Compile-time checks for the comparator kinds.
var (
	_ FieldComparator = (*Field)(nil)
	_ FieldComparator = (*Average)(nil)
	_ FieldComparator = (*Maximum)(nil)
	_ rawValuer       = (*Field)(nil)
	_ rawValuer       = (*Average)(nil)
	_ rawValuer       = (*Maximum)(nil)
)

// Field compares a single-valued field: extract the value from each record,
// encode it, then apply the similarity primitive.
type Field struct {
	sim        Similarity
	getA, getB Getter
	encA, encB Encoder
}

// NewField creates a single-valued field comparator using the same getter
// and encoder on both records. A nil encoder means no encoding.
//
// Example:
//
//	surname := NewField(Exact, Attr("surname"), LowStrip)
func NewField(sim Similarity, getter Getter, enc Encoder) *Field {
	return NewFieldPair(sim, getter, enc, getter, enc)
}

// NewFieldPair creates a field comparator with distinct getters and encoders
// per side, for linking datasets whose layouts differ.
func NewFieldPair(sim Similarity, getA Getter, encA Encoder, getB Getter, encB Encoder) *Field {
	if encA == nil {
		encA = Identity
	}
	if encB == nil {
		encB = Identity
	}
	return &Field{sim: sim, getA: getA, getB: getB, encA: encA, encB: encB}
}

// Compare returns the similarity of the two records on this field.
func (f *Field) Compare(a, b *Record) (Score, error) {
	va, err := f.getA.Get(a)
	if err != nil {
		return Missing(), err
	}
	vb, err := f.getB.Get(b)
	if err != nil {
		return Missing(), err
	}
	ea, eb := f.encA(va), f.encB(vb)
	return f.sim(&ea, &eb), nil
}

func (f *Field) rawValue(r *Record, right bool) (string, error) {
	if right {
		return f.getB.Get(r)
	}
	return f.getA.Get(r)
}

// setField holds the shared state of the multi-valued comparators.
type setField struct {
	sim        Similarity
	getA, getB SetGetter
	encA, encB Encoder
}

func newSetField(sim Similarity, getA SetGetter, encA Encoder, getB SetGetter, encB Encoder) setField {
	if encA == nil {
		encA = Identity
	}
	if encB == nil {
		encB = Identity
	}
	return setField{sim: sim, getA: getA, getB: getB, encA: encA, encB: encB}
}

// sets extracts and encodes both value sets, deduplicated and sorted so that
// floating-point accumulation order is deterministic. Returns the smaller
// set first.
func (f *setField) sets(a, b *Record) (small, large []string, err error) {
	va, err := f.getA.GetAll(a)
	if err != nil {
		return nil, nil, err
	}
	vb, err := f.getB.GetAll(b)
	if err != nil {
		return nil, nil, err
	}
	sa := encodeSet(va, f.encA)
	sb := encodeSet(vb, f.encB)
	if len(sb) < len(sa) {
		sa, sb = sb, sa
	}
	return sa, sb, nil
}

func encodeSet(values []string, enc Encoder) []string {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[enc(v)] = struct{}{}
	}
	set := make([]string, 0, len(seen))
	for v := range seen {
		set = append(set, v)
	}
	sort.Strings(set)
	return set
}

func (f *setField) rawValue(r *Record, right bool) (string, error) {
	get := f.getA
	if right {
		get = f.getB
	}
	values, err := get.GetAll(r)
	if err != nil {
		return "", err
	}
	return joinValues(values), nil
}

// Average compares a multi-valued field: for each value in the smaller of
// the two encoded sets it takes the best primitive score against the larger
// set, and averages those. If the smaller set is a subset of the larger the
// result is 1.0 (for a primitive scoring identity as 1.0).
//
// If either set is empty the result is the primitive's own missing result,
// obtained by calling it with nil operands, preserving the missing-value
// semantics used everywhere else in the vector.
type Average struct {
	setField
}

// NewAverage creates an average set comparator using the same set getter and
// encoder on both records.
//
// Example:
//
//	tags := NewAverage(Exact, MultiValue(";", Attr("tags")), LowStrip)
func NewAverage(sim Similarity, getter SetGetter, enc Encoder) *Average {
	return NewAveragePair(sim, getter, enc, getter, enc)
}

// NewAveragePair creates an average set comparator with distinct getters and
// encoders per side.
func NewAveragePair(sim Similarity, getA SetGetter, encA Encoder, getB SetGetter, encB Encoder) *Average {
	return &Average{setField: newSetField(sim, getA, encA, getB, encB)}
}

// Compare returns the average best-match similarity of the two value sets.
func (f *Average) Compare(a, b *Record) (Score, error) {
	small, large, err := f.sets(a, b)
	if err != nil {
		return Missing(), err
	}
	if len(small) == 0 || len(large) == 0 {
		return f.sim(nil, nil), nil
	}
	var total float64
	for i := range small {
		var best float64
		for j := range large {
			if s := f.sim(&small[i], &large[j]); s.Valid && s.Value > best {
				best = s.Value
			}
		}
		total += best
	}
	return NewScore(total / float64(len(small))), nil
}

// Maximum compares a multi-valued field by the single best primitive score
// across all cross-pairs of the two encoded sets. Empty sets yield the
// primitive's missing result, as for Average.
type Maximum struct {
	setField
}

// NewMaximum creates a maximum set comparator using the same set getter and
// encoder on both records.
func NewMaximum(sim Similarity, getter SetGetter, enc Encoder) *Maximum {
	return NewMaximumPair(sim, getter, enc, getter, enc)
}

// NewMaximumPair creates a maximum set comparator with distinct getters and
// encoders per side.
func NewMaximumPair(sim Similarity, getA SetGetter, encA Encoder, getB SetGetter, encB Encoder) *Maximum {
	return &Maximum{setField: newSetField(sim, getA, encA, getB, encB)}
}

// Compare returns the best cross-pair similarity of the two value sets.
func (f *Maximum) Compare(a, b *Record) (Score, error) {
	small, large, err := f.sets(a, b)
	if err != nil {
		return Missing(), err
	}
	if len(small) == 0 || len(large) == 0 {
		return f.sim(nil, nil), nil
	}
	var best float64
	for i := range small {
		for j := range large {
			if s := f.sim(&small[i], &large[j]); s.Valid && s.Value > best {
				best = s.Value
			}
		}
	}
	return NewScore(best), nil
}

// NamedComparator binds a field comparator to its name in the similarity
// vector.
type NamedComparator struct {
	Name       string
	Comparator FieldComparator
}

// RecordComparator is an ordered collection of named field comparators. It
// fixes the shape of the similarity vector at construction time: every pair
// compared by the same RecordComparator yields a vector of the same arity
// with components in the same order.
type RecordComparator struct {
	fields []NamedComparator
	byName map[string]int
}

// NewRecordComparator creates a record comparator from ordered named field
// comparators. Names must be unique and at least one field is required.
//
// Example:
//
//	rc, err := NewRecordComparator(
//	    NamedComparator{"surname", NewField(surnameSim, Attr("surname"), LowStrip)},
//	    NamedComparator{"town", NewField(Exact, Attr("town"), LowStrip)},
//	)
func NewRecordComparator(fields ...NamedComparator) (*RecordComparator, error) {
	if len(fields) == 0 {
		return nil, ErrNoFields
	}
	rc := &RecordComparator{
		fields: append([]NamedComparator(nil), fields...),
		byName: make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if _, dup := rc.byName[f.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateField, f.Name)
		}
		rc.byName[f.Name] = i
	}
	return rc, nil
}

// Arity returns the number of components in vectors produced by this
// comparator.
func (rc *RecordComparator) Arity() int { return len(rc.fields) }

// Names returns the ordered component names of the similarity vector.
func (rc *RecordComparator) Names() []string {
	names := make([]string, len(rc.fields))
	for i, f := range rc.fields {
		names[i] = f.Name
	}
	return names
}

// Pos returns the vector position of the named component and whether it
// exists.
func (rc *RecordComparator) Pos(name string) (int, bool) {
	i, ok := rc.byName[name]
	return i, ok
}

// Compare evaluates every field comparator in order and returns the
// similarity vector for the pair. A field lookup failure aborts the
// comparison with the offending field named in the error.
func (rc *RecordComparator) Compare(a, b *Record) (Vector, error) {
	v := make(Vector, len(rc.fields))
	for i, f := range rc.fields {
		s, err := f.Comparator.Compare(a, b)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		v[i] = s
	}
	return v, nil
}

// rawValues returns each field's raw pre-similarity value for one record,
// for the diagnostic export. Comparators that cannot report a raw value
// contribute an empty string.
func (rc *RecordComparator) rawValues(r *Record, right bool) []string {
	values := make([]string, len(rc.fields))
	for i, f := range rc.fields {
		if rv, ok := f.Comparator.(rawValuer); ok {
			if value, err := rv.rawValue(r, right); err == nil {
				values[i] = value
			}
		}
	}
	return values
}
