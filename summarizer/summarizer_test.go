package summarizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsquery-io/tsquery"
	"github.com/tsquery-io/tsquery/qtime"
	"github.com/tsquery-io/tsquery/rollup"
	"github.com/tsquery-io/tsquery/summarizer"
	"github.com/tsquery-io/tsquery/value"
)

// fakeScalarSeries is a minimal TimeSeries exposing only NumericScalar,
// used to drive the summarizer without a concrete storage backend.
type fakeScalarSeries struct {
	id     tsquery.TimeSeriesID
	points []value.ScalarPoint
}

func (s *fakeScalarSeries) ID() tsquery.TimeSeriesID  { return s.id }
func (s *fakeScalarSeries) Types() []value.Kind       { return []value.Kind{value.NumericScalar} }
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

// fakeResult is a minimal Result carrying one series and a RollupConfig.
type fakeResult struct {
	series []tsquery.TimeSeries
	rollup rollup.Config
}

func (r *fakeResult) SequenceID() int64                           { return 1 }
func (r *fakeResult) TimeSpec() (qtime.TimeSpecification, bool)   { return qtime.TimeSpecification{}, false }
func (r *fakeResult) Resolution() qtime.Unit                      { return qtime.UnitSeconds }
func (r *fakeResult) Rollup() rollup.Config                       { return r.rollup }
func (r *fakeResult) IDKind() tsquery.IDKind                      { return tsquery.StringID }
func (r *fakeResult) TimeSeries() []tsquery.TimeSeries             { return r.series }
func (r *fakeResult) Source() tsquery.Node                         { return nil }
func (r *fakeResult) Close() error                                 { return nil }

func scalarSeries(values ...struct {
	ts qtime.TimeStamp
	v  value.Number
}) *fakeScalarSeries {
	pts := make([]value.ScalarPoint, len(values))
	for i, p := range values {
		pts[i] = value.ScalarPoint{Timestamp: p.ts, Value: p.v}
	}
	return &fakeScalarSeries{id: tsquery.StringTimeSeriesID{Metric: "m"}, points: pts}
}

func point(sec int64, v value.Number) struct {
	ts qtime.TimeStamp
	v  value.Number
} {
	return struct {
		ts qtime.TimeStamp
		v  value.Number
	}{ts: qtime.FromSeconds(sec), v: v}
}

func buildContext(t *testing.T) *tsquery.PipelineContext {
	t.Helper()
	registry := tsquery.NewRegistry()
	factory := summarizer.NewFactory()
	tsquery.RegisterFactory(registry, factory)
	return tsquery.NewPipelineContext(nil, registry, nil, nil)
}

func newSummarizerNode(t *testing.T, summaries []string, infectious bool) tsquery.Node {
	t.Helper()
	pctx := buildContext(t)
	factory := summarizer.NewFactory()
	node, err := factory.Create(pctx, "summarizer1", map[string]interface{}{
		"summaries":     summaries,
		"infectiousNan": infectious,
	})
	require.NoError(t, err)
	return node
}

// captureNode records every Result it receives downstream of the node
// under test.
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

func summaryValuesOf(t *testing.T, result tsquery.Result) map[int]value.Number {
	t.Helper()
	require.Len(t, result.TimeSeries(), 1)
	it, err := result.TimeSeries()[0].Iterator(value.NumericSummary)
	require.NoError(t, err)
	require.NotNil(t, it)
	sit, ok := it.(tsquery.SummaryIterator)
	require.True(t, ok)
	p, ok := sit.Next()
	require.True(t, ok)
	_, ok = sit.Next()
	assert.False(t, ok, "summarizer iterator must not restart")
	return p.Values
}

func closeEnough(t *testing.T, want, got value.Number) {
	t.Helper()
	if want.IsNaN() {
		assert.True(t, got.IsNaN())
		return
	}
	assert.InDelta(t, want.Float64(), got.Float64(), 1e-3)
}

func TestSummarizerIntegers(t *testing.T) {
	node := newSummarizerNode(t, []string{"sum", "avg", "max", "min", "count"}, false)
	capture := newCaptureNode()
	tsquery.Link(node, capture)

	series := scalarSeries(
		point(0, value.Int(42)),
		point(60, value.Int(24)),
		point(120, value.Int(-8)),
		point(240, value.Int(1)),
	)
	result := &fakeResult{series: []tsquery.TimeSeries{series}, rollup: rollup.Sample()}
	require.NoError(t, node.OnNext(result))

	require.Len(t, capture.results, 1)
	got := summaryValuesOf(t, capture.results[0])
	closeEnough(t, value.Int(59), got[0])
	closeEnough(t, value.Int(4), got[1])
	closeEnough(t, value.Int(42), got[2])
	closeEnough(t, value.Int(-8), got[3])
	closeEnough(t, value.Float(14.75), got[5])
}

func TestSummarizerDoubles(t *testing.T) {
	node := newSummarizerNode(t, []string{"sum", "avg", "max", "min", "count"}, false)
	capture := newCaptureNode()
	tsquery.Link(node, capture)

	series := scalarSeries(
		point(0, value.Float(42.5)),
		point(60, value.Float(24.75)),
		point(120, value.Float(-8.3)),
		point(240, value.Float(1.2)),
	)
	result := &fakeResult{series: []tsquery.TimeSeries{series}, rollup: rollup.Sample()}
	require.NoError(t, node.OnNext(result))

	got := summaryValuesOf(t, capture.results[0])
	closeEnough(t, value.Float(60.15), got[0])
	closeEnough(t, value.Float(4), got[1])
	closeEnough(t, value.Float(42.5), got[2])
	closeEnough(t, value.Float(-8.3), got[3])
	closeEnough(t, value.Float(15.037), got[5])
}

func TestSummarizerMixedPromotesToFloat(t *testing.T) {
	node := newSummarizerNode(t, []string{"sum", "avg", "max", "min", "count"}, false)
	capture := newCaptureNode()
	tsquery.Link(node, capture)

	series := scalarSeries(
		point(0, value.Int(42)),
		point(60, value.Int(24)),
		point(120, value.Float(-8.3)),
		point(240, value.Float(1.2)),
	)
	result := &fakeResult{series: []tsquery.TimeSeries{series}, rollup: rollup.Sample()}
	require.NoError(t, node.OnNext(result))

	got := summaryValuesOf(t, capture.results[0])
	closeEnough(t, value.Float(58.9), got[0])
	closeEnough(t, value.Float(4), got[1])
	closeEnough(t, value.Float(42.0), got[2])
	closeEnough(t, value.Float(-8.3), got[3])
	closeEnough(t, value.Float(14.725), got[5])
	assert.True(t, got[0].IsFloat())
}

func TestSummarizerNaNSkipping(t *testing.T) {
	node := newSummarizerNode(t, []string{"sum", "avg", "max", "min", "count"}, false)
	capture := newCaptureNode()
	tsquery.Link(node, capture)

	series := scalarSeries(
		point(0, value.Float(42.5)),
		point(60, value.NaN()),
		point(120, value.NaN()),
		point(240, value.Float(1.2)),
	)
	result := &fakeResult{series: []tsquery.TimeSeries{series}, rollup: rollup.Sample()}
	require.NoError(t, node.OnNext(result))

	got := summaryValuesOf(t, capture.results[0])
	closeEnough(t, value.Float(43.7), got[0])
	closeEnough(t, value.Float(2), got[1])
	closeEnough(t, value.Float(42.5), got[2])
	closeEnough(t, value.Float(1.2), got[3])
	closeEnough(t, value.Float(21.85), got[5])
}

func TestSummarizerNaNInfectious(t *testing.T) {
	node := newSummarizerNode(t, []string{"sum", "avg", "max", "min", "count"}, true)
	capture := newCaptureNode()
	tsquery.Link(node, capture)

	series := scalarSeries(
		point(0, value.Float(42.5)),
		point(60, value.NaN()),
		point(120, value.NaN()),
		point(240, value.Float(1.2)),
	)
	result := &fakeResult{series: []tsquery.TimeSeries{series}, rollup: rollup.Sample()}
	require.NoError(t, node.OnNext(result))

	got := summaryValuesOf(t, capture.results[0])
	assert.True(t, got[0].IsNaN())
	closeEnough(t, value.Int(4), got[1])
	assert.True(t, got[2].IsNaN())
	assert.True(t, got[3].IsNaN())
	assert.True(t, got[5].IsNaN())
}

func TestSummarizerEmptySeriesEmitsNoPoint(t *testing.T) {
	node := newSummarizerNode(t, []string{"sum"}, false)
	capture := newCaptureNode()
	tsquery.Link(node, capture)

	series := scalarSeries()
	result := &fakeResult{series: []tsquery.TimeSeries{series}, rollup: rollup.Sample()}
	require.NoError(t, node.OnNext(result))

	require.Len(t, capture.results, 1)
	it, err := capture.results[0].TimeSeries()[0].Iterator(value.NumericSummary)
	require.NoError(t, err)
	require.NotNil(t, it)
	sit := it.(tsquery.SummaryIterator)
	_, ok := sit.Next()
	assert.False(t, ok)
}

func TestSummarizerUnmappedSummaryNameIsConfigError(t *testing.T) {
	registry := tsquery.NewRegistry()
	factory := summarizer.NewFactory()
	tsquery.RegisterFactory(registry, factory)
	pctx := tsquery.NewPipelineContext(nil, registry, nil, nil)

	node, err := factory.Create(pctx, "summarizer1", map[string]interface{}{
		"summaries": []string{"sum"},
	})
	require.NoError(t, err)

	rc := rollup.NewDefaultConfig() // defines nothing
	series := scalarSeries(point(0, value.Int(1)))
	result := &fakeResult{series: []tsquery.TimeSeries{series}, rollup: rc}

	capture := newCaptureNode()
	tsquery.Link(node, capture)
	require.NoError(t, node.OnNext(result))

	_, err = capture.results[0].TimeSeries()[0].Iterator(value.NumericSummary)
	var cfgErr *tsquery.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}
