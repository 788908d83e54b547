package twine

import "sort"

// Groups of mutually linked records. Matched pairs form the edges of a
// graph over records; each connected component is one group of records that
// refer, directly or transitively, to the same entity. This only groups
// records — it never merges or fuses their values.

// adjacency builds the neighbour lists for the match graph.
func adjacency(matches []Pair) map[*Record][]*Record {
	neighbours := make(map[*Record][]*Record)
	for _, p := range matches {
		neighbours[p.A] = append(neighbours[p.A], p.B)
		neighbours[p.B] = append(neighbours[p.B], p.A)
	}
	return neighbours
}

// SinglesAndGroups partitions records into those that matched nothing and
// the connected components of the match graph. Components are found by
// breadth-first search; each group is sorted by record identifier and the
// groups appear in order of their first record in the input, so the output
// is deterministic.
//
// Every input record appears exactly once, either as a single or in exactly
// one group.
func SinglesAndGroups(matches []Pair, records []*Record) (singles []*Record, groups [][]*Record) {
	neighbours := adjacency(matches)
	visited := make(map[*Record]struct{}, len(records))
	for _, r := range records {
		if _, ok := neighbours[r]; !ok {
			singles = append(singles, r)
			continue
		}
		if _, seen := visited[r]; seen {
			continue
		}
		var group []*Record
		queue := []*Record{r}
		for len(queue) > 0 {
			node := queue[0]
			queue = queue[1:]
			if _, seen := visited[node]; seen {
				continue
			}
			visited[node] = struct{}{}
			group = append(group, node)
			queue = append(queue, neighbours[node]...)
		}
		sort.Slice(group, func(i, j int) bool { return group[i].Less(group[j]) })
		groups = append(groups, group)
	}
	return singles, groups
}
