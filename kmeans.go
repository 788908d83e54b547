package twine

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"
)

// DefaultMaxIter is the default iteration cap for k-means classification.
var DefaultMaxIter = 10

// ErrDegenerateInput is returned when a similarity-vector component has no
// non-missing value across the input, leaving nothing to seed a centroid
// component from.
var ErrDegenerateInput = errors.New("vector component has no non-missing values")

// ErrArityMismatch is returned when the input contains similarity vectors
// of different arities, which cannot come from a single RecordComparator.
var ErrArityMismatch = errors.New("similarity vectors have mixed arities")

// KMeans classifies record pairs as matches or non-matches by clustering
// their similarity vectors around two centroids, without training data.
//
// # ALGORITHM
//
// A special two-cluster k-means that is aware of missing vector components:
//
//  1. INITIALIZATION: the match centroid takes, per component, the maximum
//     observed value across the input (ignoring missing components); the
//     non-match centroid takes the minimum. This bakes in the directional
//     assumption that higher similarity means more likely match, which must
//     hold for the supplied vectors.
//  2. ASSIGNMENT: each pair is assigned to the nearer centroid under a
//     distance that skips components missing in either operand.
//  3. UPDATE: each centroid becomes the per-component mean of its members,
//     with missing components excluded from both the sum and the count.
//  4. REPEAT: steps 2-3 until no assignment changes or MaxIter passes run.
//
// Missing components are modeled as reduced dimensionality: the vector
// (0.95, missing, 0.5) behaves as a 2-dimensional vector in distance
// calculations. They are never coerced to an arbitrary penalty weight.
//
// Hitting the iteration cap is a convergence attempt, not an error: the
// partition at that point is returned.
//
// The assignment pass is independent per pair, so it fans out across
// Workers goroutines with per-worker component sums merged afterwards; the
// result is identical for any worker count.
type KMeans struct {
	// Distance between similarity vectors. Must skip missing components.
	// Defaults to L2.
	Distance VectorDistance

	// MaxIter caps the number of assignment passes. Defaults to
	// DefaultMaxIter.
	MaxIter int

	// Sample is the fraction of pairs, uniformly strided over the input,
	// used to seed the centroids. Assignment always covers every pair.
	// Defaults to 1.0 (seed from everything).
	Sample float64

	// Workers is the number of goroutines for the assignment pass.
	// Defaults to 1.
	Workers int

	// Logger receives per-iteration diagnostics. Defaults to a no-op.
	Logger *zap.Logger
}

// ClassifyKMeans classifies a comparison cache with default settings.
func ClassifyKMeans(comps *Comparisons) (matches, nonmatches map[Pair]float64, err error) {
	return KMeans{}.Classify(comps)
}

// Classify partitions every compared pair into matches and non-matches.
// The two score maps are disjoint and together cover the input exactly;
// empty input yields two empty maps without entering the loop. Scores are
// the log10 ratio of the pair's distance to the non-match centroid over its
// distance to the match centroid (higher means more confidently a match).
func (km KMeans) Classify(comps *Comparisons) (matches, nonmatches map[Pair]float64, err error) {
	distance := km.Distance
	if distance == nil {
		distance = L2
	}
	maxIter := km.MaxIter
	if maxIter <= 0 {
		maxIter = DefaultMaxIter
	}
	workers := km.Workers
	if workers < 1 {
		workers = 1
	}
	lg := km.Logger
	if lg == nil {
		lg = zap.NewNop()
	}

	pairs := comps.Pairs()
	matches = make(map[Pair]float64)
	nonmatches = make(map[Pair]float64)
	if len(pairs) == 0 {
		return matches, nonmatches, nil
	}

	vectors := make([]Vector, len(pairs))
	for i, p := range pairs {
		vectors[i], _ = comps.Get(p)
	}
	arity := len(vectors[0])
	for _, v := range vectors {
		if len(v) != arity {
			return nil, nil, fmt.Errorf("%w: %d and %d", ErrArityMismatch, arity, len(v))
		}
	}

	high, low, err := seedCentroids(vectors, km.Sample)
	if err != nil {
		return nil, nil, err
	}
	lg.Debug("initial centroids",
		zap.Stringer("match", high), zap.Stringer("nonmatch", low))

	// Pairs start in the non-match class; the first pass counts flips
	// against that.
	assigned := make([]bool, len(pairs))

	for iter := 0; iter < maxIter; iter++ {
		changed, highSum, lowSum, highCnt, lowCnt :=
			assignPass(vectors, assigned, high, low, distance, workers)

		for i := 0; i < arity; i++ {
			high[i] = meanComponent(highSum[i], highCnt[i])
			low[i] = meanComponent(lowSum[i], lowCnt[i])
			if !high[i].Valid || !low[i].Valid {
				lg.Warn("centroid component has no contributors",
					zap.Int("component", i), zap.Int("iteration", iter+1))
			}
		}
		lg.Debug("kmeans iteration",
			zap.Int("iteration", iter+1),
			zap.Int("changed", changed),
			zap.Stringer("match", high),
			zap.Stringer("nonmatch", low),
		)
		if changed == 0 {
			break
		}
	}

	for i, p := range pairs {
		score := math.Log10((distance(vectors[i], low) + 0.1) / (distance(vectors[i], high) + 0.1))
		if assigned[i] {
			matches[p] = score
		} else {
			nonmatches[p] = score
		}
	}
	lg.Info("kmeans classified",
		zap.Int("pairs", len(pairs)),
		zap.Int("matches", len(matches)),
		zap.Int("nonmatches", len(nonmatches)),
	)
	return matches, nonmatches, nil
}

// seedCentroids initializes the match centroid from per-component maxima
// and the non-match centroid from minima, over a uniformly strided sample
// of the vectors. A component missing everywhere in the sample is a
// degenerate input.
func seedCentroids(vectors []Vector, sample float64) (high, low Vector, err error) {
	sampled := vectors
	if sample > 0 && sample < 1 {
		count := int(math.Ceil(sample * float64(len(vectors))))
		if count < 1 {
			count = 1
		}
		step := len(vectors) / count
		if step < 1 {
			step = 1
		}
		sampled = make([]Vector, 0, count)
		for i := 0; i < count; i++ {
			idx := i * step
			if idx >= len(vectors) {
				idx = len(vectors) - 1
			}
			sampled = append(sampled, vectors[idx])
		}
	}

	arity := len(vectors[0])
	high = make(Vector, arity)
	low = make(Vector, arity)
	for i := 0; i < arity; i++ {
		seen := false
		var max, min float64
		for _, v := range sampled {
			if !v[i].Valid {
				continue
			}
			if !seen || v[i].Value > max {
				max = v[i].Value
			}
			if !seen || v[i].Value < min {
				min = v[i].Value
			}
			seen = true
		}
		if !seen {
			return nil, nil, fmt.Errorf("%w: component %d", ErrDegenerateInput, i)
		}
		high[i] = NewScore(max)
		low[i] = NewScore(min)
	}
	return high, low, nil
}

// assignPass assigns every vector to its nearer centroid, accumulating the
// per-component sums and counts needed to recompute the centroids. The
// input is partitioned across workers; each worker accumulates locally and
// the partials are merged, so the result is independent of worker count.
func assignPass(vectors []Vector, assigned []bool, high, low Vector,
	distance VectorDistance, workers int) (changed int, highSum, lowSum []float64, highCnt, lowCnt []int) {

	arity := len(high)
	type partial struct {
		changed         int
		highSum, lowSum []float64
		highCnt, lowCnt []int
	}

	if workers > len(vectors) {
		workers = len(vectors)
	}
	chunk := (len(vectors) + workers - 1) / workers
	partials := make([]partial, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > len(vectors) {
			end = len(vectors)
		}
		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			pt := partial{
				highSum: make([]float64, arity),
				lowSum:  make([]float64, arity),
				highCnt: make([]int, arity),
				lowCnt:  make([]int, arity),
			}
			for idx := start; idx < end; idx++ {
				v := vectors[idx]
				match := distance(v, high) < distance(v, low)
				if match != assigned[idx] {
					pt.changed++
					assigned[idx] = match
				}
				sum, cnt := pt.lowSum, pt.lowCnt
				if match {
					sum, cnt = pt.highSum, pt.highCnt
				}
				for i := range v {
					if v[i].Valid {
						sum[i] += v[i].Value
						cnt[i]++
					}
				}
			}
			partials[w] = pt
		}(w, start, end)
	}
	wg.Wait()

	highSum = make([]float64, arity)
	lowSum = make([]float64, arity)
	highCnt = make([]int, arity)
	lowCnt = make([]int, arity)
	for _, pt := range partials {
		changed += pt.changed
		for i := 0; i < arity; i++ {
			highSum[i] += pt.highSum[i]
			lowSum[i] += pt.lowSum[i]
			highCnt[i] += pt.highCnt[i]
			lowCnt[i] += pt.lowCnt[i]
		}
	}
	return changed, highSum, lowSum, highCnt, lowCnt
}

// meanComponent returns the mean as a Score, missing when there were no
// contributors — never a division by zero.
func meanComponent(sum float64, count int) Score {
	if count == 0 {
		return Missing()
	}
	return NewScore(sum / float64(count))
}
