package summarizer

import (
	"github.com/pkg/errors"

	"github.com/tsquery-io/tsquery"
	"github.com/tsquery-io/tsquery/qtime"
	"github.com/tsquery-io/tsquery/value"
)

// NewTypedIterator is the node's IteratorFactory entry point, registered
// for value.NumericSummary via tsquery.RegisterFactory.
func (f *Factory) NewTypedIterator(kind value.Kind, n tsquery.Node, result tsquery.Result, sources []tsquery.TimeSeries) (tsquery.Iterator, error) {
	if kind != value.NumericSummary {
		return nil, errors.Errorf("summarizer: cannot build iterator for %s", kind)
	}
	node, ok := n.(*Node)
	if !ok {
		return nil, errors.Errorf("summarizer: unexpected node type %T", n)
	}
	if len(sources) != 1 {
		return nil, tsquery.NewTypeError(errors.New("summarizer: expected exactly one source series"))
	}
	return newIterator(node.cfg, result, sources[0], node.pctx)
}

// ProducedKinds implements tsquery.NodeFactory.
func (f *Factory) ProducedKinds() []value.Kind { return []value.Kind{value.NumericSummary} }

// ConsumedKinds implements tsquery.NodeFactory: the summarizer reads
// whichever of NumericScalar or NumericArray a source exposes.
func (f *Factory) ConsumedKinds() []value.Kind {
	return []value.Kind{value.NumericScalar, value.NumericArray}
}

// ProducesFor implements tsquery.NodeFactory: the summarizer can build a
// NumericSummary whenever the source exposes either of the kinds it knows
// how to reduce.
func (f *Factory) ProducesFor(kind value.Kind, sourceTypes []value.Kind) bool {
	if kind != value.NumericSummary {
		return false
	}
	for _, k := range sourceTypes {
		if k == value.NumericScalar || k == value.NumericArray {
			return true
		}
	}
	return false
}

// summaryIterator reduces its source series to exactly one NumericSummary
// point, computed eagerly at construction (before the first Next call),
// so an unresolved summary name surfaces before any point would have been
// returned rather than mid-iteration.
type summaryIterator struct {
	point    value.SummaryPoint
	hasPoint bool
	emitted  bool
	pctx     *tsquery.PipelineContext
}

func newIterator(cfg *Config, result tsquery.Result, source tsquery.TimeSeries, pctx *tsquery.PipelineContext) (*summaryIterator, error) {
	rollupCfg := result.Rollup()
	if rollupCfg == nil {
		return nil, tsquery.NewConfigError("summarizer", errors.New("summarizer: result carries no RollupConfig"))
	}

	ids := make([]int, len(cfg.Summaries))
	for i, name := range cfg.Summaries {
		id, ok := rollupCfg.SummaryID(name)
		if !ok {
			return nil, tsquery.NewConfigError("summarizer", errors.Errorf("summarizer: rollup config has no id for summary %q", name))
		}
		ids[i] = id
	}

	firstTs, acc, ok, err := accumulate(cfg, source, pctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &summaryIterator{pctx: pctx}, nil
	}

	point := value.NewSummaryPoint(firstTs)
	aggregators := cfg.aggregators()
	for i, agg := range aggregators {
		v, err := agg.Resolve(acc)
		if err != nil {
			return nil, tsquery.NewConfigError("summarizer", err)
		}
		point.Set(ids[i], v)
	}
	return &summaryIterator{point: point, hasPoint: true, pctx: pctx}, nil
}

// accumulate drains source (whichever of NumericScalar or NumericArray it
// exposes) into a fresh Accumulator, returning the timestamp of the first
// input point. ok is false if the series produced no points at all. The
// pipeline's cancellation token is polled once per point pulled from
// source, since this is a long-running, whole-series drain; a cancellation
// observed mid-drain ends the accumulation with whatever was already
// folded in rather than raising.
func accumulate(cfg *Config, source tsquery.TimeSeries, pctx *tsquery.PipelineContext) (qtime.TimeStamp, *value.Accumulator, bool, error) {
	acc := value.NewAccumulator(cfg.InfectiousNaN)

	if tsquery.HasKind(source, value.NumericScalar) {
		it, err := source.Iterator(value.NumericScalar)
		if err != nil {
			return qtime.TimeStamp{}, nil, false, err
		}
		scalarIt, ok := it.(tsquery.ScalarIterator)
		if it != nil && !ok {
			return qtime.TimeStamp{}, nil, false, tsquery.NewTypeError(errors.New("summarizer: NumericScalar iterator has unexpected type"))
		}
		var first qtime.TimeStamp
		have := false
		for scalarIt != nil {
			if pctx != nil && pctx.Cancelled() {
				break
			}
			p, more := scalarIt.Next()
			if !more {
				break
			}
			if !have {
				first = p.Timestamp
				have = true
			}
			acc.Add(p.Value)
		}
		return first, acc, have, nil
	}

	if tsquery.HasKind(source, value.NumericArray) {
		it, err := source.Iterator(value.NumericArray)
		if err != nil {
			return qtime.TimeStamp{}, nil, false, err
		}
		arrIt, ok := it.(tsquery.ArrayIterator)
		if it != nil && !ok {
			return qtime.TimeStamp{}, nil, false, tsquery.NewTypeError(errors.New("summarizer: NumericArray iterator has unexpected type"))
		}
		var first qtime.TimeStamp
		have := false
		for arrIt != nil {
			if pctx != nil && pctx.Cancelled() {
				break
			}
			series, more := arrIt.Next()
			if !more {
				break
			}
			for i := 0; i < series.Len(); i++ {
				if !have {
					first = series.TimestampAt(i)
					have = true
				}
				acc.Add(series.At(i))
			}
		}
		return first, acc, have, nil
	}

	return qtime.TimeStamp{}, acc, false, nil
}

func (it *summaryIterator) Kind() value.Kind { return value.NumericSummary }

// Next returns the single summary point on its first call; every
// subsequent call, and every call when the source was empty, returns
// ok=false (not restartable, per spec.md §4.5). A pipeline cancelled
// between construction and this call reports end-of-stream rather than
// the computed point.
func (it *summaryIterator) Next() (value.SummaryPoint, bool) {
	if it.emitted || !it.hasPoint {
		return value.SummaryPoint{}, false
	}
	it.emitted = true
	if it.pctx != nil && it.pctx.Cancelled() {
		return value.SummaryPoint{}, false
	}
	return it.point, true
}
