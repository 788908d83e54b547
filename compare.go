package twine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// ErrSameIndices is returned when a dual-dataset comparison is invoked with
// the same Indices collection on both sides. Linking an index collection
// against itself is a caller error; use the single-dataset form instead.
var ErrSameIndices = errors.New("dual comparison needs two distinct indices collections")

// Option configures a comparison run.
type Option func(*runOptions)

type runOptions struct {
	workers int
	logger  *zap.Logger
	compact bool
}

func applyOptions(opts []Option) runOptions {
	ro := runOptions{workers: 1, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&ro)
	}
	if ro.workers < 1 {
		ro.workers = 1
	}
	return ro
}

// WithWorkers sets the number of goroutines comparing blocks concurrently.
// Blocks are independent; all workers share one cache whose check-then-claim
// step is serialized, so the result is identical for any worker count.
func WithWorkers(n int) Option {
	return func(ro *runOptions) { ro.workers = n }
}

// WithLogger sets the logger for index statistics and comparison estimates.
// The default discards everything.
func WithLogger(lg *zap.Logger) Option {
	return func(ro *runOptions) { ro.logger = lg }
}

// WithCompactVectors stores cached similarity vectors in half precision,
// halving cache memory for large runs at a precision cost of ~0.001 per
// score. Only affects caches created by the run, not ones passed in.
func WithCompactVectors() Option {
	return func(ro *runOptions) { ro.compact = true }
}

// Comparisons is the comparison cache: a mapping from record pair to
// similarity vector. It is the mechanism that turns overlapping block
// enumeration into a correct, non-redundant comparison set — the cache is
// checked immediately before every comparison, and the comparator runs at
// most once per distinct pair for the lifetime of the cache.
//
// The claim/store discipline is safe for concurrent workers. A cache grows
// monotonically during the comparison phase and is read-only once
// classification begins.
type Comparisons struct {
	mu      sync.Mutex
	compact bool
	claimed map[Pair]struct{}
	vectors map[Pair]Vector
	packed  map[Pair][]uint16
}

// NewComparisons creates an empty comparison cache.
func NewComparisons() *Comparisons {
	return &Comparisons{
		claimed: make(map[Pair]struct{}),
		vectors: make(map[Pair]Vector),
	}
}

// NewCompactComparisons creates an empty cache that stores vectors in half
// precision. See WithCompactVectors for the trade-off.
func NewCompactComparisons() *Comparisons {
	return &Comparisons{
		compact: true,
		claimed: make(map[Pair]struct{}),
		packed:  make(map[Pair][]uint16),
	}
}

// claim atomically reserves a pair for comparison. It returns true exactly
// once per pair; every later claim returns false. This is what guarantees
// at-most-once invocation of the comparator even with concurrent workers.
func (c *Comparisons) claim(p Pair) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.claimed[p]; dup {
		return false
	}
	c.claimed[p] = struct{}{}
	return true
}

// store records the similarity vector for a claimed pair.
func (c *Comparisons) store(p Pair, v Vector) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.storeLocked(p, v)
}

func (c *Comparisons) storeLocked(p Pair, v Vector) {
	c.claimed[p] = struct{}{}
	if c.compact {
		c.packed[p] = packVector(v)
		return
	}
	c.vectors[p] = v
}

// Len returns the number of cached pairs.
func (c *Comparisons) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.compact {
		return len(c.packed)
	}
	return len(c.vectors)
}

// Get returns the similarity vector cached for the pair.
func (c *Comparisons) Get(p Pair) (Vector, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.compact {
		bits, ok := c.packed[p]
		if !ok {
			return nil, false
		}
		return unpackVector(bits), true
	}
	v, ok := c.vectors[p]
	return v, ok
}

// Pairs returns the cached pairs sorted by identifier for deterministic
// iteration.
func (c *Comparisons) Pairs() []Pair {
	c.mu.Lock()
	defer c.mu.Unlock()
	pairs := make([]Pair, 0, len(c.claimed))
	if c.compact {
		for p := range c.packed {
			pairs = append(pairs, p)
		}
	} else {
		for p := range c.vectors {
			pairs = append(pairs, p)
		}
	}
	sortPairs(pairs)
	return pairs
}

// Range calls fn for every cached pair until fn returns false. Iteration
// order is unspecified; use Pairs for deterministic order.
func (c *Comparisons) Range(fn func(p Pair, v Vector) bool) {
	if c.compact {
		for p, bits := range c.packed {
			if !fn(p, unpackVector(bits)) {
				return
			}
		}
		return
	}
	for p, v := range c.vectors {
		if !fn(p, v) {
			return
		}
	}
}

// Merge folds another cache into this one, for workers that filled
// partitioned caches independently. On a duplicate pair the other cache
// wins, which is harmless: every writer computes the same deterministic
// vector for a given pair.
func (c *Comparisons) Merge(other *Comparisons) {
	other.Range(func(p Pair, v Vector) bool {
		c.mu.Lock()
		c.storeLocked(p, v)
		c.mu.Unlock()
		return true
	})
}

// block is one unit of comparison work: within-block pairs when cross is
// nil, the block1 x block2 cross product otherwise.
type blockJob struct {
	records []*Record
	cross   []*Record
}

// compareBlock enumerates the job's candidate pairs, claiming each against
// the cache before invoking the comparator.
func (rc *RecordComparator) compareBlock(job blockJob, cache *Comparisons) error {
	if job.cross == nil {
		for j := 1; j < len(job.records); j++ {
			for i := 0; i < j; i++ {
				a, b := job.records[i], job.records[j]
				if a == b {
					// same record reached via two keys is not a self-comparison
					continue
				}
				p := NewPair(a, b)
				if !cache.claim(p) {
					continue
				}
				v, err := rc.Compare(p.A, p.B)
				if err != nil {
					return fmt.Errorf("comparing pair %v: %w", p, err)
				}
				cache.store(p, v)
			}
		}
		return nil
	}
	for _, a := range job.records {
		for _, b := range job.cross {
			p := OrderedPair(a, b)
			if !cache.claim(p) {
				continue
			}
			v, err := rc.Compare(a, b)
			if err != nil {
				return fmt.Errorf("comparing pair %v: %w", p, err)
			}
			cache.store(p, v)
		}
	}
	return nil
}

// runJobs executes block jobs sequentially or across a worker pool.
func (rc *RecordComparator) runJobs(jobs []blockJob, cache *Comparisons, workers int) error {
	if workers <= 1 || len(jobs) <= 1 {
		for _, job := range jobs {
			if err := rc.compareBlock(job, cache); err != nil {
				return err
			}
		}
		return nil
	}

	var (
		wg       sync.WaitGroup
		stop     atomic.Bool
		errOnce  sync.Once
		firstErr error
	)
	ch := make(chan blockJob)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range ch {
				if stop.Load() {
					continue
				}
				if err := rc.compareBlock(job, cache); err != nil {
					errOnce.Do(func() { firstErr = err })
					stop.Store(true)
				}
			}
		}()
	}
	for _, job := range jobs {
		ch <- job
	}
	close(ch)
	wg.Wait()
	return firstErr
}

func newCache(ro runOptions) *Comparisons {
	if ro.compact {
		return NewCompactComparisons()
	}
	return NewComparisons()
}

// AllPairs compares every distinct unordered pair from one record
// collection, with pairs canonicalized by identifier order. Quadratic; use
// for small inputs or to validate a blocking strategy against ground truth.
func (rc *RecordComparator) AllPairs(records []*Record, opts ...Option) (*Comparisons, error) {
	ro := applyOptions(opts)
	cache := newCache(ro)
	if err := rc.compareBlock(blockJob{records: records}, cache); err != nil {
		return nil, err
	}
	return cache, nil
}

// AllPairsBetween compares the full cross product of two disjoint record
// collections, keeping (left, right) pair order.
func (rc *RecordComparator) AllPairsBetween(records1, records2 []*Record, opts ...Option) (*Comparisons, error) {
	ro := applyOptions(opts)
	cache := newCache(ro)
	if len(records1) == 0 || len(records2) == 0 {
		return cache, nil
	}
	if err := rc.compareBlock(blockJob{records: records1, cross: records2}, cache); err != nil {
		return nil, err
	}
	return cache, nil
}

// Indexed compares, within one indexed record collection, every unordered
// pair that shares at least one blocking key. A nil cache starts a fresh
// one; passing an existing cache skips its pairs, which is how comparisons
// accumulate across several Indices collections without recomputation.
func (rc *RecordComparator) Indexed(xs *Indices, cache *Comparisons, opts ...Option) (*Comparisons, error) {
	ro := applyOptions(opts)
	if cache == nil {
		cache = newCache(ro)
	}
	var jobs []blockJob
	for i := 0; i < xs.Len(); i++ {
		ix := xs.At(i)
		for _, key := range ix.Keys() {
			if block := ix.Block(key); len(block) > 1 {
				jobs = append(jobs, blockJob{records: block})
			}
		}
	}
	if err := rc.runJobs(jobs, cache, ro.workers); err != nil {
		return nil, err
	}
	return cache, nil
}

// IndexedBetween compares, across two indexed record collections, the cross
// product of each pair of blocks sharing a key, matching indexes
// positionally. The two collections must be distinct objects with the same
// layout. Pairs keep (left, right) order.
func (rc *RecordComparator) IndexedBetween(xs1, xs2 *Indices, cache *Comparisons, opts ...Option) (*Comparisons, error) {
	if xs1 == xs2 {
		return nil, ErrSameIndices
	}
	if xs1.Len() != xs2.Len() {
		return nil, fmt.Errorf("%w: %d vs %d indexes", ErrIndicesMismatch, xs1.Len(), xs2.Len())
	}
	ro := applyOptions(opts)
	if cache == nil {
		cache = newCache(ro)
	}
	var jobs []blockJob
	for i := 0; i < xs1.Len(); i++ {
		ix1, ix2 := xs1.At(i), xs2.At(i)
		for _, key := range ix1.Keys() {
			block2 := ix2.Block(key)
			if len(block2) == 0 {
				continue
			}
			jobs = append(jobs, blockJob{records: ix1.Block(key), cross: block2})
		}
	}
	if err := rc.runJobs(jobs, cache, ro.workers); err != nil {
		return nil, err
	}
	return cache, nil
}

// Within indexes one record collection with the given blocking strategy,
// logs the comparison estimates and block statistics, and returns the
// indexed comparison cache together with the populated indices.
//
// Example:
//
//	comps, xs, err := Within(rc, specs, records, WithWorkers(4))
func Within(rc *RecordComparator, specs []IndexSpec, records []*Record, opts ...Option) (*Comparisons, *Indices, error) {
	ro := applyOptions(opts)
	xs, err := NewIndices(specs...)
	if err != nil {
		return nil, nil, err
	}
	if err := xs.InsertAll(records); err != nil {
		return nil, nil, err
	}
	for i, name := range xs.Names() {
		ro.logger.Info("comparison estimate",
			zap.String("index", name),
			zap.Int("comparisons", xs.At(i).CountComparisons(nil)),
		)
	}
	xs.LogStats(ro.logger)
	comps, err := rc.Indexed(xs, nil, opts...)
	if err != nil {
		return nil, nil, err
	}
	return comps, xs, nil
}

// Between indexes two record collections with the same blocking strategy,
// logs the comparison estimates and block statistics, and returns the
// cross-linkage comparison cache together with both populated indices.
func Between(rc *RecordComparator, specs []IndexSpec, records1, records2 []*Record, opts ...Option) (*Comparisons, *Indices, *Indices, error) {
	ro := applyOptions(opts)
	xs1, err := NewIndices(specs...)
	if err != nil {
		return nil, nil, nil, err
	}
	xs2 := xs1.Clone()
	if err := xs1.InsertAll(records1); err != nil {
		return nil, nil, nil, err
	}
	if err := xs2.InsertAll(records2); err != nil {
		return nil, nil, nil, err
	}
	for i, name := range xs1.Names() {
		ro.logger.Info("comparison estimate",
			zap.String("index", name),
			zap.Int("comparisons", xs1.At(i).CountComparisons(xs2.At(i))),
		)
	}
	xs1.LogStats(ro.logger)
	xs2.LogStats(ro.logger)
	comps, err := rc.IndexedBetween(xs1, xs2, nil, opts...)
	if err != nil {
		return nil, nil, nil, err
	}
	return comps, xs1, xs2, nil
}
