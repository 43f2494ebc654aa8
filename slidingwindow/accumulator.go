package slidingwindow

import (
	"github.com/pkg/errors"

	"github.com/tsquery-io/tsquery/qtime"
	"github.com/tsquery-io/tsquery/value"
)

// windowAccumulator is the running state behind one sliding-window
// iterator: a ring buffer of the points currently inside the window, a
// running sum/count for sum/avg/count, and a pair of monotonic deques for
// min/max. One instance is built per source series per Result — it is
// per-query state and must not be shared across queries (spec.md §5).
type windowAccumulator struct {
	windowSize qtime.Duration
	infectious bool
	bound      int

	buf *ringBuffer

	isFloat    bool
	sum        float64
	validCount int64
	totalCount int64
	nanCount   int64

	minDeque, maxDeque *monotonicDeque

	evictedSinceRecompute int
}

func newWindowAccumulator(windowSize qtime.Duration, infectious bool) *windowAccumulator {
	return &windowAccumulator{
		windowSize: windowSize,
		infectious: infectious,
		bound:      DefaultRecomputeBound,
		buf:        &ringBuffer{},
		minDeque:   newMinDeque(),
		maxDeque:   newMaxDeque(),
	}
}

// Add admits one more point at the tail of the window.
func (w *windowAccumulator) Add(ts qtime.TimeStamp, v value.Number) {
	e := entry{ts: ts, v: v}
	w.buf.insert(e)
	w.totalCount++

	if v.IsNaN() {
		w.nanCount++
		return
	}
	if v.IsFloat() {
		w.isFloat = true
	}
	w.sum += v.Float64()
	w.validCount++
	w.minDeque.push(e)
	w.maxDeque.push(e)
}

// Evict drops every entry whose timestamp falls at or before threshold,
// the exclusive left edge (current - windowSize) of the half-open window
// (threshold, current].
func (w *windowAccumulator) Evict(threshold qtime.TimeStamp) {
	pred := func(e entry) bool { return e.ts.Compare(threshold) <= 0 }

	w.buf.evictWhile(pred, func(e entry) {
		w.totalCount--
		if e.v.IsNaN() {
			w.nanCount--
			return
		}
		w.sum -= e.v.Float64()
		w.validCount--
		w.evictedSinceRecompute++
	})
	w.minDeque.evictWhile(pred)
	w.maxDeque.evictWhile(pred)

	if w.evictedSinceRecompute > w.bound {
		w.recompute()
	}
}

// recompute rebuilds the running sum/validCount from the current window
// contents, discarding accumulated floating-point drift.
func (w *windowAccumulator) recompute() {
	var sum float64
	var valid int64
	for i := 0; i < w.buf.len(); i++ {
		e := w.buf.at(i)
		if e.v.IsNaN() {
			continue
		}
		sum += e.v.Float64()
		valid++
	}
	w.sum = sum
	w.validCount = valid
	w.evictedSinceRecompute = 0
}

func (w *windowAccumulator) poisoned() bool { return w.infectious && w.nanCount > 0 }

func (w *windowAccumulator) finalize(v value.Number) value.Number {
	if w.isFloat {
		return v.Promote()
	}
	return v
}

// firstNonNaN scans the window from the given direction for the first
// non-NaN entry; dir is +1 for earliest, -1 for latest.
func (w *windowAccumulator) firstNonNaN(dir int) (value.Number, bool) {
	n := w.buf.len()
	start, stop := 0, n
	if dir < 0 {
		for i := n - 1; i >= 0; i-- {
			if e := w.buf.at(i); !e.v.IsNaN() {
				return e.v, true
			}
		}
		return value.Number{}, false
	}
	for i := start; i < stop; i++ {
		if e := w.buf.at(i); !e.v.IsNaN() {
			return e.v, true
		}
	}
	return value.Number{}, false
}

// Resolve reads the requested aggregate off the current window contents.
func (w *windowAccumulator) Resolve(agg value.Aggregator) (value.Number, error) {
	switch agg {
	case value.Sum:
		if w.poisoned() {
			return value.NaN(), nil
		}
		if w.isFloat {
			return value.Float(w.sum), nil
		}
		return value.Int(int64(w.sum)), nil
	case value.Avg:
		if w.poisoned() || w.validCount == 0 {
			return value.NaN(), nil
		}
		return value.Float(w.sum / float64(w.validCount)), nil
	case value.Count:
		if w.infectious {
			return value.Int(w.totalCount), nil
		}
		return value.Int(w.validCount), nil
	case value.Min:
		if w.poisoned() {
			return value.NaN(), nil
		}
		e, ok := w.minDeque.front()
		if !ok {
			return value.NaN(), nil
		}
		return w.finalize(e.v), nil
	case value.Max:
		if w.poisoned() {
			return value.NaN(), nil
		}
		e, ok := w.maxDeque.front()
		if !ok {
			return value.NaN(), nil
		}
		return w.finalize(e.v), nil
	case value.First:
		if w.poisoned() {
			return value.NaN(), nil
		}
		v, ok := w.firstNonNaN(1)
		if !ok {
			return value.NaN(), nil
		}
		return w.finalize(v), nil
	case value.Last:
		if w.poisoned() {
			return value.NaN(), nil
		}
		v, ok := w.firstNonNaN(-1)
		if !ok {
			return value.NaN(), nil
		}
		return w.finalize(v), nil
	default:
		return value.Number{}, errors.Errorf("slidingwindow: unrecognized aggregator %q", string(agg))
	}
}

// Len reports how many points currently fall inside the window.
func (w *windowAccumulator) Len() int { return w.buf.len() }
