package twine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/clipperhouse/uax29/v2/words"
)

// ErrFieldLookup is returned when a field specifier cannot be resolved on a
// record: a positional index out of range, a named field absent from the
// schema, or a record with no schema at all. Lookup failures always
// propagate; they are never papered over with a sentinel value.
var ErrFieldLookup = errors.New("field lookup failed")

// Getter extracts a single field value from a record. The closed set of
// implementations covers positional access (Column), named access via the
// record's schema (Attr) and computed values (Derived).
type Getter interface {
	// Get returns the field value for the record, or an error if the
	// specifier cannot be resolved.
	Get(r *Record) (string, error)
}

// SetGetter extracts a multi-valued field from a record, for example a
// delimited tag column or the union of several columns.
type SetGetter interface {
	// GetAll returns the field's values for the record.
	GetAll(r *Record) ([]string, error)
}

// Compile-time checks that all accessor kinds satisfy their interface.
var (
	_ Getter    = Column(0)
	_ Getter    = Attr("")
	_ Getter    = Derived(nil)
	_ SetGetter = (*multiValue)(nil)
	_ SetGetter = (*tokenGetter)(nil)
)

// Column accesses a field by zero-based position.
type Column int

// Get returns the value at the column's position.
func (c Column) Get(r *Record) (string, error) {
	return r.Value(int(c))
}

// Attr accesses a field by name through the record's schema.
type Attr string

// Get returns the named field's value.
func (a Attr) Get(r *Record) (string, error) {
	if r.Schema() == nil {
		return "", fmt.Errorf("%w: field %q on schemaless record %q",
			ErrFieldLookup, string(a), r.ID())
	}
	pos, ok := r.Schema().Pos(string(a))
	if !ok {
		return "", fmt.Errorf("%w: no field %q on record %q",
			ErrFieldLookup, string(a), r.ID())
	}
	return r.Value(pos)
}

// Derived computes a field value as a function of the whole record,
// for example concatenating two columns. The function must be pure:
// the same record must always yield the same value.
type Derived func(r *Record) (string, error)

// Get invokes the derivation function.
func (d Derived) Get(r *Record) (string, error) {
	return d(r)
}

// multiValue splits one or more delimited fields into a combined value list.
type multiValue struct {
	sep     string
	getters []Getter
}

// MultiValue builds a set-valued accessor that splits each underlying field
// on sep, trims whitespace and drops empty values. With an empty separator
// each field contributes a single value.
//
// Example:
//
//	tags := MultiValue(";", Attr("tags"))
//	// record value "red; blue;" yields ["red", "blue"]
func MultiValue(sep string, getters ...Getter) SetGetter {
	return &multiValue{sep: sep, getters: getters}
}

// Combine builds a set-valued accessor that merges several single-valued
// fields into one value list.
func Combine(getters ...Getter) SetGetter {
	return &multiValue{getters: getters}
}

func (m *multiValue) GetAll(r *Record) ([]string, error) {
	var result []string
	for _, g := range m.getters {
		value, err := g.Get(r)
		if err != nil {
			return nil, err
		}
		parts := []string{value}
		if m.sep != "" {
			parts = strings.Split(value, m.sep)
		}
		for _, part := range parts {
			if part = strings.TrimSpace(part); part != "" {
				result = append(result, part)
			}
		}
	}
	return result, nil
}

// tokenGetter splits a field into words using UAX#29 segmentation.
type tokenGetter struct {
	getter Getter
}

// Tokens builds a set-valued accessor that splits a field into words using
// UAX#29 word segmentation, dropping whitespace and punctuation segments.
func Tokens(getter Getter) SetGetter {
	return &tokenGetter{getter: getter}
}

func (t *tokenGetter) GetAll(r *Record) ([]string, error) {
	value, err := t.getter.Get(r)
	if err != nil {
		return nil, err
	}
	toks := words.FromString(value)
	var tokens []string
	for toks.Next() {
		tok := strings.TrimSpace(toks.Value())
		if tok != "" && hasLetterOrDigit(tok) {
			tokens = append(tokens, tok)
		}
	}
	return tokens, nil
}

func hasLetterOrDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r > 127 {
			return true
		}
	}
	return false
}
