package twine

import (
	"errors"
	"fmt"
	"sort"

	"github.com/RoaringBitmap/roaring"
)

// ErrEmptyKey is returned when a key function emits an empty key for a
// record. An empty key would silently merge unrelated records into one
// block, so it is treated as a configuration error in the key function and
// the insert fails rather than dropping the record.
var ErrEmptyKey = errors.New("empty index key")

// KeyFunc derives the blocking keys for a record. A record is inserted into
// the block for every key it emits; emitting several keys (say, the phonetic
// codes of two name variants) is normal. Keys must be non-empty.
type KeyFunc func(r *Record) []string

// Index is an inverted index from blocking key to the set of records sharing
// that key. Only record pairs that share at least one key become comparison
// candidates, which cuts the quadratic all-pairs cost down to the sum of
// within-block costs.
//
// Records are interned in an arena and blocks are roaring bitmaps of arena
// ordinals, so a block is genuinely a set: inserting a record twice under
// the same key is idempotent, and block cardinalities for the statistics and
// comparison-count paths are O(1).
type Index struct {
	makeKey  KeyFunc
	postings map[string]*roaring.Bitmap
	arena    []*Record
	ordinals map[*Record]uint32
}

// NewIndex creates an index using the given key function and inserts any
// initial records.
//
// Example:
//
//	idx, err := NewIndex(func(r *Record) []string {
//	    name, _ := Attr("name").Get(r)
//	    return []string{name[:1]}
//	})
func NewIndex(makeKey KeyFunc, records ...*Record) (*Index, error) {
	ix := &Index{
		makeKey:  makeKey,
		postings: make(map[string]*roaring.Bitmap),
		ordinals: make(map[*Record]uint32),
	}
	for _, r := range records {
		if _, err := ix.Insert(r); err != nil {
			return nil, err
		}
	}
	return ix, nil
}

// Insert computes the record's keys and adds the record to each
// corresponding block, returning the keys used. If any computed key is
// empty, nothing is inserted and the error identifies the offending record.
func (ix *Index) Insert(r *Record) ([]string, error) {
	keys := ix.makeKey(r)
	for _, key := range keys {
		if key == "" {
			return nil, fmt.Errorf("%w: in %v for record %v", ErrEmptyKey, keys, r)
		}
	}
	ord, ok := ix.ordinals[r]
	if !ok {
		ord = uint32(len(ix.arena))
		ix.arena = append(ix.arena, r)
		ix.ordinals[r] = ord
	}
	for _, key := range keys {
		bm := ix.postings[key]
		if bm == nil {
			bm = roaring.New()
			ix.postings[key] = bm
		}
		bm.Add(ord)
	}
	return keys, nil
}

// Keys returns the index's blocking keys in sorted order.
func (ix *Index) Keys() []string {
	keys := make([]string, 0, len(ix.postings))
	for key := range ix.postings {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Block returns the records sharing the given key, in insertion order.
func (ix *Index) Block(key string) []*Record {
	bm := ix.postings[key]
	if bm == nil {
		return nil
	}
	records := make([]*Record, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		records = append(records, ix.arena[it.Next()])
	}
	return records
}

// RecordKeys returns the keys the key function emits for a record, without
// inserting it. Used by the diagnostic export to show which keys matched.
func (ix *Index) RecordKeys(r *Record) []string {
	return ix.makeKey(r)
}

// Search returns the records indexed under any of the given record's keys,
// each at most once regardless of how many keys it shares.
func (ix *Index) Search(r *Record) []*Record {
	acc := roaring.New()
	for _, key := range ix.makeKey(r) {
		if bm := ix.postings[key]; bm != nil {
			acc.Or(bm)
		}
	}
	records := make([]*Record, 0, acc.GetCardinality())
	it := acc.Iterator()
	for it.HasNext() {
		records = append(records, ix.arena[it.Next()])
	}
	return records
}

// CountComparisons returns an upper bound on the pairwise comparisons
// implied by the blocking. For self-comparison (other nil or the receiver)
// it sums n*(n-1)/2 over blocks; against another index it sums
// |block| * |other block| over keys present in both.
//
// This is a pre-execution sizing heuristic, not an exact promise: a pair
// sharing two keys is counted once per key here but compared only once
// thanks to the comparison cache, so the bound may exceed the number of
// unique comparisons actually performed.
func (ix *Index) CountComparisons(other *Index) int {
	comparisons := 0
	if other == nil || other == ix {
		for _, bm := range ix.postings {
			n := int(bm.GetCardinality())
			comparisons += n * (n - 1) / 2
		}
		return comparisons
	}
	for key, bm := range ix.postings {
		if obm := other.postings[key]; obm != nil {
			comparisons += int(bm.GetCardinality()) * int(obm.GetCardinality())
		}
	}
	return comparisons
}

// IndexStats summarizes block sizes for tuning a blocking strategy. All
// figures derive purely from block cardinalities. Records counts one entry
// per (key, record) posting, so a record under two keys counts twice.
type IndexStats struct {
	Keys         int
	Records      int
	LargestBlock int
	MeanBlock    float64
}

// Stats computes block-size statistics for the index.
func (ix *Index) Stats() IndexStats {
	var st IndexStats
	st.Keys = len(ix.postings)
	for _, bm := range ix.postings {
		n := int(bm.GetCardinality())
		st.Records += n
		if n > st.LargestBlock {
			st.LargestBlock = n
		}
	}
	if st.Keys > 0 {
		st.MeanBlock = float64(st.Records) / float64(st.Keys)
	}
	return st
}
