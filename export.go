package twine

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
)

// Diagnostic CSV export. Inspection of which index keys matched and of the
// raw field values behind each similarity score is how blocking and
// comparator configurations get tuned; none of this is required for
// correctness.

// WriteIndexStats writes one row per named index with its key count, record
// count, largest block size and mean block size.
func WriteIndexStats(w io.Writer, xs *Indices) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Index", "Keys", "Records", "LargestBlock", "MeanBlock"}); err != nil {
		return err
	}
	for i, name := range xs.Names() {
		st := xs.At(i).Stats()
		row := []string{
			name,
			strconv.Itoa(st.Keys),
			strconv.Itoa(st.Records),
			strconv.Itoa(st.LargestBlock),
			strconv.FormatFloat(st.MeanBlock, 'f', 2, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteIndex writes the contents of one index: a row per (key, record)
// posting with the key followed by the record's values.
func WriteIndex(w io.Writer, ix *Index) error {
	cw := csv.NewWriter(w)
	for _, key := range ix.Keys() {
		for _, r := range ix.Block(key) {
			if err := cw.Write(append([]string{key}, r.Values()...)); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteComparisons writes every compared pair together with which index
// keys matched and the per-field raw (pre-similarity) values.
//
// The header row is Score, then the index names, then the comparator names.
// Each pair contributes three rows: the left record's index keys and raw
// field values, the right record's, then a weights row carrying the
// classifier score, a key-overlap flag per index and the similarity vector
// (missing components are blank).
//
// scores may be nil (all scores written as 0); xs2 may be nil for
// self-linkage, in which case both records are keyed through xs1.
func WriteComparisons(w io.Writer, rc *RecordComparator, comps *Comparisons,
	scores map[Pair]float64, xs1, xs2 *Indices) error {

	if comps.Len() == 0 {
		return nil
	}
	if xs2 == nil {
		xs2 = xs1
	}
	cw := csv.NewWriter(w)
	header := append([]string{"Score"}, xs1.Names()...)
	header = append(header, rc.Names()...)
	if err := cw.Write(header); err != nil {
		return err
	}

	pairs := comps.Pairs()
	if scores != nil {
		pairs = ScoredPairs(scores)
	}
	for _, p := range pairs {
		v, ok := comps.Get(p)
		if !ok {
			continue
		}
		keys1 := recordKeys(xs1, p.A)
		keys2 := recordKeys(xs2, p.B)

		row := append([]string{""}, joinedKeys(keys1)...)
		row = append(row, rc.rawValues(p.A, false)...)
		if err := cw.Write(row); err != nil {
			return err
		}
		row = append([]string{""}, joinedKeys(keys2)...)
		row = append(row, rc.rawValues(p.B, true)...)
		if err := cw.Write(row); err != nil {
			return err
		}

		row = []string{strconv.FormatFloat(scores[p], 'f', 4, 64)}
		for i := range keys1 {
			row = append(row, strconv.FormatBool(keysOverlap(keys1[i], keys2[i])))
		}
		for _, s := range v {
			if s.Valid {
				row = append(row, strconv.FormatFloat(s.Value, 'f', 4, 64))
			} else {
				row = append(row, "")
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteGroups writes all records with mutually linked groups first: each
// group's records share a numbered GroupID, then the unmatched records
// follow with "-".
func WriteGroups(w io.Writer, matches []Pair, records []*Record, fields []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"GroupID"}, fields...)); err != nil {
		return err
	}
	singles, groups := SinglesAndGroups(matches, records)
	for id, group := range groups {
		for _, r := range group {
			if err := cw.Write(append([]string{strconv.Itoa(id)}, r.Values()...)); err != nil {
				return err
			}
		}
	}
	for _, r := range singles {
		if err := cw.Write(append([]string{"-"}, r.Values()...)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func recordKeys(xs *Indices, r *Record) [][]string {
	keys := make([][]string, xs.Len())
	for i := 0; i < xs.Len(); i++ {
		keys[i] = xs.At(i).RecordKeys(r)
	}
	return keys
}

func joinedKeys(keys [][]string) []string {
	joined := make([]string, len(keys))
	for i, ks := range keys {
		joined[i] = joinValues(ks)
	}
	return joined
}

func keysOverlap(keys1, keys2 []string) bool {
	for _, k1 := range keys1 {
		for _, k2 := range keys2 {
			if k1 == k2 {
				return true
			}
		}
	}
	return false
}

func joinValues(values []string) string {
	return strings.Join(values, ";")
}
