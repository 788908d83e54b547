package twine

import "testing"

func TestSinglesAndGroups(t *testing.T) {
	var records []*Record
	for _, id := range []string{"1", "2", "3", "4", "5", "6", "7"} {
		records = append(records, mustRecord(t, nil, id))
	}
	r := func(i int) *Record { return records[i-1] }

	matches := []Pair{
		NewPair(r(1), r(2)),
		NewPair(r(2), r(3)),
		NewPair(r(4), r(5)),
		NewPair(r(5), r(6)),
	}
	singles, groups := SinglesAndGroups(matches, records)

	if len(singles) != 1 || singles[0] != r(7) {
		t.Errorf("singles = %v, want just record 7", singles)
	}
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	want := [][]*Record{
		{r(1), r(2), r(3)},
		{r(4), r(5), r(6)},
	}
	for gi, g := range want {
		if len(groups[gi]) != len(g) {
			t.Fatalf("group %d = %v, want %v", gi, groups[gi], g)
		}
		for i := range g {
			if groups[gi][i] != g[i] {
				t.Errorf("group %d member %d = %v, want %v", gi, i, groups[gi][i], g[i])
			}
		}
	}
}

func TestSinglesAndGroupsCoversEveryRecord(t *testing.T) {
	var records []*Record
	for _, id := range []string{"1", "2", "3", "4"} {
		records = append(records, mustRecord(t, nil, id))
	}
	matches := []Pair{NewPair(records[0], records[2])}

	singles, groups := SinglesAndGroups(matches, records)
	total := len(singles)
	for _, g := range groups {
		total += len(g)
	}
	if total != len(records) {
		t.Errorf("%d records in the output, want %d", total, len(records))
	}
}

func TestSinglesAndGroupsNoMatches(t *testing.T) {
	records := []*Record{
		mustRecord(t, nil, "1"),
		mustRecord(t, nil, "2"),
	}
	singles, groups := SinglesAndGroups(nil, records)
	if len(singles) != 2 || len(groups) != 0 {
		t.Errorf("got %d singles and %d groups, want 2 and 0", len(singles), len(groups))
	}
}

func TestSinglesAndGroupsTransitiveClosure(t *testing.T) {
	// 1-2 and 2-3 link 1 and 3 transitively even though the pair (1, 3)
	// was never matched directly
	records := []*Record{
		mustRecord(t, nil, "1"),
		mustRecord(t, nil, "2"),
		mustRecord(t, nil, "3"),
	}
	matches := []Pair{
		NewPair(records[0], records[1]),
		NewPair(records[1], records[2]),
	}
	_, groups := SinglesAndGroups(matches, records)
	if len(groups) != 1 || len(groups[0]) != 3 {
		t.Fatalf("groups = %v, want one group of 3", groups)
	}
}
