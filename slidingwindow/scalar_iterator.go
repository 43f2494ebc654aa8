package slidingwindow

import (
	"github.com/tsquery-io/tsquery"
	"github.com/tsquery-io/tsquery/qtime"
	"github.com/tsquery-io/tsquery/value"
)

// scalarIterator computes a rolling aggregate over a NumericScalar source,
// single-pass and forward-only. Points strictly before the query start are
// folded into the window but never themselves emitted (spec.md §4.4).
type scalarIterator struct {
	source tsquery.ScalarIterator
	acc    *windowAccumulator
	agg    value.Aggregator
	hasQ   bool
	q      qtime.TimeStamp
	pctx   *tsquery.PipelineContext
}

func newScalarIterator(cfg *Config, result tsquery.Result, source tsquery.ScalarIterator, pctx *tsquery.PipelineContext) *scalarIterator {
	q, hasQ := queryStart(result)
	return &scalarIterator{
		source: source,
		acc:    newWindowAccumulator(cfg.Window, cfg.InfectiousNaN),
		agg:    cfg.aggregator(),
		hasQ:   hasQ,
		q:      q,
		pctx:   pctx,
	}
}

func (it *scalarIterator) Kind() value.Kind { return value.NumericScalar }

// Next pulls source points until one at or after the query start can be
// emitted, or the source is exhausted. The pipeline's cancellation token is
// polled once per loop iteration (at least once per emitted point); a
// cancelled pipeline reports end-of-stream rather than raising.
func (it *scalarIterator) Next() (value.ScalarPoint, bool) {
	for {
		if it.pctx != nil && it.pctx.Cancelled() {
			return value.ScalarPoint{}, false
		}

		p, ok := it.source.Next()
		if !ok {
			return value.ScalarPoint{}, false
		}

		it.acc.Add(p.Timestamp, p.Value)
		it.acc.Evict(windowThreshold(p.Timestamp, it.acc.windowSize))

		if it.hasQ && p.Timestamp.Before(it.q) {
			continue
		}

		agg, err := it.acc.Resolve(it.agg)
		if err != nil {
			// Resolve only errors for an unrecognized aggregator, which
			// Config.Validate already rejects at construction time; this
			// path is unreachable in practice.
			return value.ScalarPoint{}, false
		}
		return value.ScalarPoint{Timestamp: p.Timestamp, Value: agg}, true
	}
}

// windowThreshold computes the exclusive left edge of the window ending
// at current: current - windowSize, expressed in milliseconds since the
// internal TimeStamp comparison is precision-agnostic.
func windowThreshold(current qtime.TimeStamp, windowSize qtime.Duration) qtime.TimeStamp {
	return qtime.FromMillis(current.UnixMillis() - windowSize.Millis())
}

// queryStart reports the Result's query-start timestamp, if it carries a
// TimeSpecification; absent a spec, every point is emitted (no head-of-
// series filtering).
func queryStart(result tsquery.Result) (qtime.TimeStamp, bool) {
	spec, ok := result.TimeSpec()
	if !ok {
		return qtime.TimeStamp{}, false
	}
	return spec.Start, true
}
