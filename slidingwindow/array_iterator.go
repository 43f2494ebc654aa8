package slidingwindow

import (
	"github.com/tsquery-io/tsquery"
	"github.com/tsquery-io/tsquery/value"
)

// arrayIterator computes a rolling aggregate over a NumericArray source,
// windowing by array index with timestamps derived from the series'
// own (Start, Interval) rather than per-point timestamps (spec.md §4.4).
// A NumericArray represents a whole series in one value, so this iterator
// yields at most one output series, built eagerly on the first Next call.
type arrayIterator struct {
	cfg      *Config
	result   tsquery.Result
	source   tsquery.ArrayIterator
	computed bool
	pctx     *tsquery.PipelineContext
}

func newArrayIterator(cfg *Config, result tsquery.Result, source tsquery.ArrayIterator, pctx *tsquery.PipelineContext) *arrayIterator {
	return &arrayIterator{cfg: cfg, result: result, source: source, pctx: pctx}
}

func (it *arrayIterator) Kind() value.Kind { return value.NumericArray }

func (it *arrayIterator) Next() (value.ArraySeries, bool) {
	if it.computed {
		return value.ArraySeries{}, false
	}
	it.computed = true

	if it.pctx != nil && it.pctx.Cancelled() {
		return value.ArraySeries{}, false
	}

	src, ok := it.source.Next()
	if !ok {
		return value.ArraySeries{}, false
	}

	q, hasQ := queryStart(it.result)
	acc := newWindowAccumulator(it.cfg.Window, it.cfg.InfectiousNaN)
	agg := it.cfg.aggregator()

	var outValues []value.Number
	firstIdx := -1
	for i := 0; i < src.Len(); i++ {
		if it.pctx != nil && it.pctx.Cancelled() {
			return value.ArraySeries{}, false
		}

		ts := src.TimestampAt(i)
		acc.Add(ts, src.At(i))
		acc.Evict(windowThreshold(ts, it.cfg.Window))

		if hasQ && ts.Before(q) {
			continue
		}
		if firstIdx < 0 {
			firstIdx = i
		}
		v, err := acc.Resolve(agg)
		if err != nil {
			return value.ArraySeries{}, false
		}
		outValues = append(outValues, v)
	}

	if firstIdx < 0 {
		return value.ArraySeries{}, false
	}

	isFloat := false
	for _, v := range outValues {
		if v.IsFloat() {
			isFloat = true
			break
		}
	}
	start := src.TimestampAt(firstIdx)
	if isFloat {
		floats := make([]float64, len(outValues))
		for i, v := range outValues {
			floats[i] = v.Promote().Float64()
		}
		return value.NewFloatArray(start, src.Interval, floats), true
	}
	ints := make([]int64, len(outValues))
	for i, v := range outValues {
		ints[i] = v.Int64()
	}
	return value.NewIntArray(start, src.Interval, ints), true
}
