package slidingwindow_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsquery-io/tsquery"
	"github.com/tsquery-io/tsquery/qtime"
	"github.com/tsquery-io/tsquery/rollup"
	"github.com/tsquery-io/tsquery/slidingwindow"
	"github.com/tsquery-io/tsquery/value"
)

type fakeScalarSeries struct {
	id     tsquery.TimeSeriesID
	points []value.ScalarPoint
}

func (s *fakeScalarSeries) ID() tsquery.TimeSeriesID { return s.id }
func (s *fakeScalarSeries) Types() []value.Kind      { return []value.Kind{value.NumericScalar} }
func (s *fakeScalarSeries) Iterator(kind value.Kind) (tsquery.Iterator, error) {
	if kind != value.NumericScalar {
		return nil, nil
	}
	return &fakeScalarIterator{points: s.points}, nil
}

type fakeScalarIterator struct {
	points []value.ScalarPoint
	i      int
}

func (it *fakeScalarIterator) Kind() value.Kind { return value.NumericScalar }
func (it *fakeScalarIterator) Next() (value.ScalarPoint, bool) {
	if it.i >= len(it.points) {
		return value.ScalarPoint{}, false
	}
	p := it.points[it.i]
	it.i++
	return p, true
}

type fakeArraySeries struct {
	id     tsquery.TimeSeriesID
	series value.ArraySeries
}

func (s *fakeArraySeries) ID() tsquery.TimeSeriesID { return s.id }
func (s *fakeArraySeries) Types() []value.Kind      { return []value.Kind{value.NumericArray} }
func (s *fakeArraySeries) Iterator(kind value.Kind) (tsquery.Iterator, error) {
	if kind != value.NumericArray {
		return nil, nil
	}
	return &fakeArrayIterator{series: s.series}, nil
}

type fakeArrayIterator struct {
	series value.ArraySeries
	done   bool
}

func (it *fakeArrayIterator) Kind() value.Kind { return value.NumericArray }
func (it *fakeArrayIterator) Next() (value.ArraySeries, bool) {
	if it.done {
		return value.ArraySeries{}, false
	}
	it.done = true
	return it.series, true
}

type fakeResult struct {
	series []tsquery.TimeSeries
	spec   *qtime.TimeSpecification
}

func (r *fakeResult) SequenceID() int64 { return 1 }
func (r *fakeResult) TimeSpec() (qtime.TimeSpecification, bool) {
	if r.spec == nil {
		return qtime.TimeSpecification{}, false
	}
	return *r.spec, true
}
func (r *fakeResult) Resolution() qtime.Unit          { return qtime.UnitSeconds }
func (r *fakeResult) Rollup() rollup.Config           { return rollup.Sample() }
func (r *fakeResult) IDKind() tsquery.IDKind          { return tsquery.StringID }
func (r *fakeResult) TimeSeries() []tsquery.TimeSeries { return r.series }
func (r *fakeResult) Source() tsquery.Node             { return nil }
func (r *fakeResult) Close() error                     { return nil }

type captureNode struct {
	tsquery.BaseNode
	results []tsquery.Result
}

func newCaptureNode() *captureNode {
	c := &captureNode{}
	c.BaseNode = tsquery.NewBaseNode("capture", c, nil)
	return c
}

func (c *captureNode) OnNext(result tsquery.Result) error {
	c.results = append(c.results, result)
	return nil
}
func (c *captureNode) OnComplete(tsquery.Node, int64, int64) error { return nil }
func (c *captureNode) OnError(err error) error                    { return err }
func (c *captureNode) Close() error                                { return nil }

func buildNode(t *testing.T, window qtime.Duration, aggregator string, infectious bool) tsquery.Node {
	t.Helper()
	registry := tsquery.NewRegistry()
	factory := slidingwindow.NewFactory()
	tsquery.RegisterFactory(registry, factory)
	pctx := tsquery.NewPipelineContext(nil, registry, nil, nil)
	node, err := factory.Create(pctx, "window1", map[string]interface{}{
		"window":        window.String(),
		"aggregator":    aggregator,
		"infectiousNan": infectious,
	})
	require.NoError(t, err)
	return node
}

func scalarPoints(values ...int64) []value.ScalarPoint {
	pts := make([]value.ScalarPoint, len(values))
	for i, v := range values {
		pts[i] = value.ScalarPoint{Timestamp: qtime.FromSeconds(int64(i) + 1), Value: value.Int(v)}
	}
	return pts
}

func drainScalar(t *testing.T, result tsquery.Result) []value.ScalarPoint {
	t.Helper()
	require.Len(t, result.TimeSeries(), 1)
	it, err := result.TimeSeries()[0].Iterator(value.NumericScalar)
	require.NoError(t, err)
	require.NotNil(t, it)
	sit := it.(tsquery.ScalarIterator)
	var out []value.ScalarPoint
	for {
		p, ok := sit.Next()
		if !ok {
			break
		}
		out = append(out, p)
	}
	return out
}

func TestSlidingWindowSumScenario(t *testing.T) {
	node := buildNode(t, qtime.Duration{Amount: 5, Unit: qtime.UnitSeconds}, "sum", false)
	capture := newCaptureNode()
	tsquery.Link(node, capture)

	series := &fakeScalarSeries{id: tsquery.StringTimeSeriesID{Metric: "m"}, points: scalarPoints(1, 1, 1, 1, 1, 1)}
	q := qtime.FromSeconds(1)
	result := &fakeResult{series: []tsquery.TimeSeries{series}, spec: &qtime.TimeSpecification{Start: q, Interval: qtime.Duration{Amount: 1, Unit: qtime.UnitSeconds}}}
	require.NoError(t, node.OnNext(result))

	out := drainScalar(t, capture.results[0])
	require.Len(t, out, 6)
	want := []int64{1, 2, 3, 4, 5, 5}
	for i, p := range out {
		assert.Equal(t, want[i], p.Value.Int64(), "index %d", i)
		assert.False(t, p.Value.IsFloat())
	}
}

func TestSlidingWindowHeadOfSeriesNotEmitted(t *testing.T) {
	node := buildNode(t, qtime.Duration{Amount: 5, Unit: qtime.UnitSeconds}, "sum", false)
	capture := newCaptureNode()
	tsquery.Link(node, capture)

	series := &fakeScalarSeries{id: tsquery.StringTimeSeriesID{Metric: "m"}, points: scalarPoints(1, 1, 1, 1, 1, 1)}
	q := qtime.FromSeconds(3)
	result := &fakeResult{series: []tsquery.TimeSeries{series}, spec: &qtime.TimeSpecification{Start: q, Interval: qtime.Duration{Amount: 1, Unit: qtime.UnitSeconds}}}
	require.NoError(t, node.OnNext(result))

	out := drainScalar(t, capture.results[0])
	// Points at t=1,2 feed the window but are not emitted; t=3 onward are.
	require.Len(t, out, 4)
	assert.Equal(t, int64(3), out[0].Timestamp.Epoch())
	want := []int64{3, 4, 5, 5}
	for i, p := range out {
		assert.Equal(t, want[i], p.Value.Int64(), "index %d", i)
	}
}

func TestSlidingWindowNaNSkipping(t *testing.T) {
	node := buildNode(t, qtime.Duration{Amount: 5, Unit: qtime.UnitSeconds}, "avg", false)
	capture := newCaptureNode()
	tsquery.Link(node, capture)

	points := []value.ScalarPoint{
		{Timestamp: qtime.FromSeconds(1), Value: value.Float(10)},
		{Timestamp: qtime.FromSeconds(2), Value: value.NaN()},
		{Timestamp: qtime.FromSeconds(3), Value: value.Float(20)},
	}
	series := &fakeScalarSeries{id: tsquery.StringTimeSeriesID{Metric: "m"}, points: points}
	q := qtime.FromSeconds(1)
	result := &fakeResult{series: []tsquery.TimeSeries{series}, spec: &qtime.TimeSpecification{Start: q, Interval: qtime.Duration{Amount: 1, Unit: qtime.UnitSeconds}}}
	require.NoError(t, node.OnNext(result))

	out := drainScalar(t, capture.results[0])
	require.Len(t, out, 3)
	assert.InDelta(t, 10.0, out[0].Value.Float64(), 1e-9)
	assert.InDelta(t, 10.0, out[1].Value.Float64(), 1e-9) // NaN skipped
	assert.InDelta(t, 15.0, out[2].Value.Float64(), 1e-9)
}

func TestSlidingWindowNaNInfectious(t *testing.T) {
	node := buildNode(t, qtime.Duration{Amount: 5, Unit: qtime.UnitSeconds}, "sum", true)
	capture := newCaptureNode()
	tsquery.Link(node, capture)

	points := []value.ScalarPoint{
		{Timestamp: qtime.FromSeconds(1), Value: value.Float(10)},
		{Timestamp: qtime.FromSeconds(2), Value: value.NaN()},
		{Timestamp: qtime.FromSeconds(3), Value: value.Float(20)},
	}
	series := &fakeScalarSeries{id: tsquery.StringTimeSeriesID{Metric: "m"}, points: points}
	q := qtime.FromSeconds(1)
	result := &fakeResult{series: []tsquery.TimeSeries{series}, spec: &qtime.TimeSpecification{Start: q, Interval: qtime.Duration{Amount: 1, Unit: qtime.UnitSeconds}}}
	require.NoError(t, node.OnNext(result))

	out := drainScalar(t, capture.results[0])
	require.Len(t, out, 3)
	assert.False(t, out[0].Value.IsNaN())
	assert.True(t, out[1].Value.IsNaN())
	assert.True(t, out[2].Value.IsNaN())
}

func TestSlidingWindowPassesThroughUnhandledKind(t *testing.T) {
	registry := tsquery.NewRegistry()
	factory := slidingwindow.NewFactory()
	tsquery.RegisterFactory(registry, factory)
	pctx := tsquery.NewPipelineContext(nil, registry, nil, nil)
	node, err := factory.Create(pctx, "window1", map[string]interface{}{
		"window":     "5s",
		"aggregator": "sum",
	})
	require.NoError(t, err)

	capture := newCaptureNode()
	tsquery.Link(node, capture)

	summary := value.NewSummaryPoint(qtime.FromSeconds(0))
	summary.Set(0, value.Int(7))
	series := &fakeSummarySeries{id: tsquery.StringTimeSeriesID{Metric: "m"}, point: summary}
	result := &fakeResult{series: []tsquery.TimeSeries{series}}
	require.NoError(t, node.OnNext(result))

	it, err := capture.results[0].TimeSeries()[0].Iterator(value.NumericSummary)
	require.NoError(t, err)
	require.NotNil(t, it)
	sit := it.(tsquery.SummaryIterator)
	p, ok := sit.Next()
	require.True(t, ok)
	v, ok := p.Value(0)
	require.True(t, ok)
	assert.Equal(t, int64(7), v.Int64())
}

type fakeSummarySeries struct {
	id      tsquery.TimeSeriesID
	point   value.SummaryPoint
	emitted bool
}

func (s *fakeSummarySeries) ID() tsquery.TimeSeriesID { return s.id }
func (s *fakeSummarySeries) Types() []value.Kind      { return []value.Kind{value.NumericSummary} }
func (s *fakeSummarySeries) Iterator(kind value.Kind) (tsquery.Iterator, error) {
	if kind != value.NumericSummary {
		return nil, nil
	}
	return &fakeSummaryIterator{point: s.point}, nil
}

type fakeSummaryIterator struct {
	point   value.SummaryPoint
	emitted bool
}

func (it *fakeSummaryIterator) Kind() value.Kind { return value.NumericSummary }
func (it *fakeSummaryIterator) Next() (value.SummaryPoint, bool) {
	if it.emitted {
		return value.SummaryPoint{}, false
	}
	it.emitted = true
	return it.point, true
}

func TestSlidingWindowDropsDeliveryWhenPipelineCancelled(t *testing.T) {
	registry := tsquery.NewRegistry()
	factory := slidingwindow.NewFactory()
	tsquery.RegisterFactory(registry, factory)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pctx := tsquery.NewPipelineContext(ctx, registry, nil, nil)
	node, err := factory.Create(pctx, "window1", map[string]interface{}{
		"window":     "5s",
		"aggregator": "sum",
	})
	require.NoError(t, err)

	capture := newCaptureNode()
	tsquery.Link(node, capture)

	series := &fakeScalarSeries{id: tsquery.StringTimeSeriesID{Metric: "m"}, points: scalarPoints(1, 1, 1)}
	result := &fakeResult{series: []tsquery.TimeSeries{series}}
	err = node.OnNext(result)
	require.Error(t, err)
	assert.ErrorIs(t, err, tsquery.ErrCancelled)
	assert.Empty(t, capture.results)
}

func TestSlidingWindowArrayWindowing(t *testing.T) {
	node := buildNode(t, qtime.Duration{Amount: 5, Unit: qtime.UnitSeconds}, "sum", false)
	capture := newCaptureNode()
	tsquery.Link(node, capture)

	arr := value.NewIntArray(qtime.FromSeconds(1), qtime.Duration{Amount: 1, Unit: qtime.UnitSeconds}, []int64{1, 1, 1, 1, 1, 1})
	series := &fakeArraySeries{id: tsquery.StringTimeSeriesID{Metric: "m"}, series: arr}
	q := qtime.FromSeconds(1)
	result := &fakeResult{series: []tsquery.TimeSeries{series}, spec: &qtime.TimeSpecification{Start: q, Interval: qtime.Duration{Amount: 1, Unit: qtime.UnitSeconds}}}
	require.NoError(t, node.OnNext(result))

	require.Len(t, capture.results, 1)
	it, err := capture.results[0].TimeSeries()[0].Iterator(value.NumericArray)
	require.NoError(t, err)
	require.NotNil(t, it)
	ait := it.(tsquery.ArrayIterator)
	out, ok := ait.Next()
	require.True(t, ok)
	require.Equal(t, 6, out.Len())
	want := []int64{1, 2, 3, 4, 5, 5}
	for i, w := range want {
		assert.Equal(t, w, out.At(i).Int64(), "index %d", i)
	}
}
