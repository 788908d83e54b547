package twine

import (
	"errors"
	"fmt"
)

// ErrInvalidVerdict is returned when a rule produces a value outside the
// closed Match/NonMatch/Undecided set. The error names the offending pair;
// an out-of-range verdict is a configuration bug and is never silently
// coerced into a class.
var ErrInvalidVerdict = errors.New("rule returned invalid verdict")

// Verdict is a rule's decision about one similarity vector.
type Verdict int

const (
	// NonMatch: the vector is a non-match.
	NonMatch Verdict = iota
	// Match: the vector is a match.
	Match
	// Undecided: the rule cannot decide either way.
	Undecided
)

// String renders the verdict for diagnostics.
func (v Verdict) String() string {
	switch v {
	case NonMatch:
		return "nonmatch"
	case Match:
		return "match"
	case Undecided:
		return "undecided"
	default:
		return fmt.Sprintf("Verdict(%d)", int(v))
	}
}

func (v Verdict) valid() bool {
	return v == NonMatch || v == Match || v == Undecided
}

// Rule is a deterministic predicate over a similarity vector, returning
// exactly one of Match, NonMatch or Undecided.
//
// Example:
//
//	rule := func(v Vector) Verdict {
//	    switch {
//	    case v[0].Valid && v[0].Value > 0.8:
//	        return Match
//	    case v[0].Valid && v[0].Value < 0.2:
//	        return NonMatch
//	    default:
//	        return Undecided
//	    }
//	}
type Rule func(v Vector) Verdict

// ClassifyRule applies the rule to every compared pair and partitions the
// pairs into three disjoint sets whose union is exactly the input. A rule
// returning anything outside the Verdict set fails the whole classification
// with the offending pair identified.
func ClassifyRule(rule Rule, comps *Comparisons) (matches, nonmatches, undecided PairSet, err error) {
	matches = NewPairSet()
	nonmatches = NewPairSet()
	undecided = NewPairSet()
	for _, p := range comps.Pairs() {
		v, _ := comps.Get(p)
		switch verdict := rule(v); verdict {
		case Match:
			matches.Add(p)
		case NonMatch:
			nonmatches.Add(p)
		case Undecided:
			undecided.Add(p)
		default:
			return nil, nil, nil, fmt.Errorf("%w: %v for pair %v with vector %v",
				ErrInvalidVerdict, verdict, p, v)
		}
	}
	return matches, nonmatches, undecided, nil
}

// ClassifyRuleScores applies the rule and returns match and non-match score
// maps with scores 1.0 and 0.0 — the same shape KMeans.Classify produces,
// for uniform downstream handling. Undecided pairs appear in neither map.
func ClassifyRuleScores(rule Rule, comps *Comparisons) (matches, nonmatches map[Pair]float64, err error) {
	matchSet, nonmatchSet, _, err := ClassifyRule(rule, comps)
	if err != nil {
		return nil, nil, err
	}
	matches = make(map[Pair]float64, matchSet.Len())
	for p := range matchSet {
		matches[p] = 1.0
	}
	nonmatches = make(map[Pair]float64, nonmatchSet.Len())
	for p := range nonmatchSet {
		nonmatches[p] = 0.0
	}
	return matches, nonmatches, nil
}
