package twine

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrDuplicateIndex is returned when two index specs share a name.
var ErrDuplicateIndex = errors.New("duplicate index name")

// ErrIndicesMismatch is returned when two Indices collections with different
// layouts are combined, for example counting or comparing a two-index
// collection against a three-index one.
var ErrIndicesMismatch = errors.New("indices collections have different layouts")

// IndexSpec names one blocking strategy: the index name and the key function
// that drives it.
type IndexSpec struct {
	Name string
	Key  KeyFunc
}

// Indices is an ordered collection of named Index instances, all populated
// from the same record stream in a single pass. Order matters only for
// matching two collections positionally in cross-linkage and for
// deterministic statistics reporting.
type Indices struct {
	specs   []IndexSpec
	indexes []*Index
}

// NewIndices creates an empty ordered collection of blocking indexes from
// the given specs. Names must be unique.
//
// Example:
//
//	xs, err := NewIndices(
//	    IndexSpec{"Surname", surnameKey},
//	    IndexSpec{"Postcode", postcodeKey},
//	)
func NewIndices(specs ...IndexSpec) (*Indices, error) {
	xs := &Indices{specs: append([]IndexSpec(nil), specs...)}
	seen := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		if _, dup := seen[spec.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateIndex, spec.Name)
		}
		seen[spec.Name] = struct{}{}
		ix, err := NewIndex(spec.Key)
		if err != nil {
			return nil, err
		}
		xs.indexes = append(xs.indexes, ix)
	}
	return xs, nil
}

// Clone returns a fresh empty Indices with the same specs, for indexing a
// second record collection with the same blocking strategy.
func (xs *Indices) Clone() *Indices {
	clone, _ := NewIndices(xs.specs...) // specs already validated
	return clone
}

// Len returns the number of indexes in the collection.
func (xs *Indices) Len() int { return len(xs.indexes) }

// Names returns the ordered index names.
func (xs *Indices) Names() []string {
	names := make([]string, len(xs.specs))
	for i, spec := range xs.specs {
		names[i] = spec.Name
	}
	return names
}

// At returns the index at position i.
func (xs *Indices) At(i int) *Index { return xs.indexes[i] }

// Index returns the named index, or nil if absent.
func (xs *Indices) Index(name string) *Index {
	for i, spec := range xs.specs {
		if spec.Name == name {
			return xs.indexes[i]
		}
	}
	return nil
}

// Insert inserts a record into every index in the collection. A key error
// from any index aborts the insert with the index named.
func (xs *Indices) Insert(r *Record) error {
	for i, ix := range xs.indexes {
		if _, err := ix.Insert(r); err != nil {
			return fmt.Errorf("index %q: %w", xs.specs[i].Name, err)
		}
	}
	return nil
}

// InsertAll inserts every record into every index in one pass.
func (xs *Indices) InsertAll(records []*Record) error {
	for _, r := range records {
		if err := xs.Insert(r); err != nil {
			return err
		}
	}
	return nil
}

// CountComparisons returns the summed comparison upper bound across the
// collection. With other nil the bound is for self-comparison of each
// index; otherwise indexes are matched positionally against other, which
// must have the same layout. The same overcounting caveat as
// Index.CountComparisons applies, and additionally a pair blocked by two
// different indexes is counted once per index here.
func (xs *Indices) CountComparisons(other *Indices) (int, error) {
	if other != nil && other.Len() != xs.Len() {
		return 0, fmt.Errorf("%w: %d vs %d indexes", ErrIndicesMismatch, xs.Len(), other.Len())
	}
	total := 0
	for i, ix := range xs.indexes {
		if other == nil {
			total += ix.CountComparisons(nil)
			continue
		}
		total += ix.CountComparisons(other.indexes[i])
	}
	return total, nil
}

// LogStats logs block-size statistics for every index, mirroring what the
// statistics rows of the diagnostic export contain.
func (xs *Indices) LogStats(lg *zap.Logger) {
	if lg == nil {
		return
	}
	for i, ix := range xs.indexes {
		st := ix.Stats()
		if st.Keys == 0 {
			lg.Warn("index is empty", zap.String("index", xs.specs[i].Name))
			continue
		}
		lg.Info("index size",
			zap.String("index", xs.specs[i].Name),
			zap.Int("records", st.Records),
			zap.Int("blocks", st.Keys),
			zap.Int("largest", st.LargestBlock),
			zap.Float64("mean", st.MeanBlock),
		)
	}
}
