/*
Package twine performs record linkage and deduplication: given one or two
collections of structured records, it identifies which pairs of records
refer to the same real-world entity.

Comparing all pairs of records is quadratic and infeasible at scale. Twine
cuts the candidate set with inverted-index blocking — only pairs sharing at
least one blocking key (say, the phonetic code of a surname, or a postcode)
are compared — caches comparison results so no pair is ever evaluated
twice, and feeds the resulting similarity vectors into a classification
layer that separates matches from non-matches.

# Pipeline

Records flow through four sequential phases:

 1. BLOCKING: records are inserted into one or more named indexes, each
    driven by a key function. CountComparisons estimates the comparison
    volume before any work is done.
 2. COMPARISON: a RecordComparator evaluates an ordered set of named field
    comparators over every candidate pair, producing a fixed-shape
    similarity vector per pair. The comparison cache deduplicates pairs
    reached through multiple keys.
 3. CLASSIFICATION: a missing-value-aware two-centroid k-means clusterer
    (unsupervised), a rule-based classifier (deterministic predicate), or
    a nearest-neighbour classifier partitions the pairs into matches and
    non-matches.
 4. GROUPING: matched pairs form a graph whose connected components are
    the groups of records describing one entity.

# Quick Start

Deduplicate a small dataset, blocking on the first letter of the name:

	package main

	import (
	    "fmt"
	    "log"

	    "github.com/twinelabs/twine"
	)

	func main() {
	    people := twine.NewSchema("id", "name", "town")
	    var records []*twine.Record
	    for _, row := range [][]string{
	        {"1", "Jon Smith", "Cape Town"},
	        {"2", "John Smith", "Cape Town"},
	        {"3", "Amy Jones", "Durban"},
	    } {
	        rec, err := twine.NewRecord(people, row...)
	        if err != nil {
	            log.Fatal(err)
	        }
	        records = append(records, rec)
	    }

	    rc, err := twine.NewRecordComparator(
	        twine.NamedComparator{"name", twine.NewField(twine.Exact, twine.Attr("name"), twine.LowStrip)},
	        twine.NamedComparator{"town", twine.NewField(twine.Exact, twine.Attr("town"), twine.LowStrip)},
	    )
	    if err != nil {
	        log.Fatal(err)
	    }

	    specs := []twine.IndexSpec{{
	        Name: "FirstLetter",
	        Key: func(r *twine.Record) []string {
	            name, _ := twine.Attr("name").Get(r)
	            return []string{name[:1]}
	        },
	    }}
	    comps, _, err := twine.Within(rc, specs, records)
	    if err != nil {
	        log.Fatal(err)
	    }

	    matches, nonmatches, err := twine.ClassifyKMeans(comps)
	    if err != nil {
	        log.Fatal(err)
	    }
	    fmt.Println(len(matches), "matches,", len(nonmatches), "non-matches")
	}

# Missing Values

A field that cannot be compared on some pair (an empty set-valued field, a
guarded primitive) yields a missing score, never zero. Distances and
centroid computations skip missing components instead of penalizing them,
so "we couldn't tell" and "totally different" stay distinct throughout.

# Similarity Primitives

Concrete string and geographic metrics are deliberately out of scope.
Anything with the Similarity signature — taking two possibly-nil values and
returning a possibly-missing score — plugs into the field comparators;
only the trivial Exact primitive ships, for tests and blocking tuning.

# Concurrency

A matching run is sequential by default. Blocks are independent, so the
indexed drivers accept WithWorkers to compare them concurrently; the shared
cache serializes its check-then-claim step, guaranteeing each pair is still
compared at most once. The k-means assignment pass parallelizes the same
way. Indices are read-only once blocking completes, and a cache is
read-only once classification begins.
*/
package twine
