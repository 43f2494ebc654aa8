package storage

import (
	"sync"

	"github.com/google/uuid"

	"github.com/tsquery-io/tsquery"
	"github.com/tsquery-io/tsquery/qtime"
	"github.com/tsquery-io/tsquery/rollup"
	"github.com/tsquery-io/tsquery/value"
)

// seriesNamespace roots the deterministic UUIDv5 identities
// MockDataStore hands out, so the same (metric, tag) pair always maps to
// the same synthetic series across runs.
var seriesNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// MockDataStoreFactory is a process-wide singleton, the direct
// replacement for the DCLP in original_source's MockDataStoreFactory: a
// sync.Once guarantees MockDataStore is constructed exactly once and the
// result is safe to read concurrently thereafter without further
// synchronization (spec.md §9, "Singleton data store").
type MockDataStoreFactory struct {
	once sync.Once
	mds  *MockDataStore
}

// defaultFactory is the package-level singleton instance returned by
// Default.
var defaultFactory = &MockDataStoreFactory{}

// Default returns the process-wide MockDataStoreFactory singleton.
func Default() *MockDataStoreFactory { return defaultFactory }

// Open returns the singleton MockDataStore, constructing it on first use.
func (f *MockDataStoreFactory) Open(id string) (DataStore, error) {
	f.once.Do(func() {
		f.mds = NewMockDataStore(SampleSeries())
	})
	return f.mds, nil
}

// IDKind reports the identity kind MockDataStore produces.
func (f *MockDataStoreFactory) IDKind() tsquery.IDKind { return tsquery.ByteID }

// SupportsPushdown always reports false: the mock backend has no
// pushdown-capable query engine of its own.
func (f *MockDataStoreFactory) SupportsPushdown(nodeKind string) bool { return false }

// MockDataStore is a read-only, in-memory DataStore: once constructed its
// series are fixed, matching the "instances returned from it are also
// read-only" guarantee in spec.md §5.
type MockDataStore struct {
	series []tsquery.TimeSeries
}

// NewMockDataStore builds a DataStore over a fixed slice of series.
func NewMockDataStore(series []tsquery.TimeSeries) *MockDataStore {
	return &MockDataStore{series: series}
}

// Run pushes a single synthetic Result carrying every configured series
// to node, then announces completion. The cancellation token is checked
// before and after the delivery; a pipeline cancelled at either check
// receives OnError(ErrCancelled) instead of the Result or the OnComplete
// call that would follow.
func (m *MockDataStore) Run(pctx *tsquery.PipelineContext, node tsquery.Node) error {
	if pctx != nil && pctx.Cancelled() {
		return node.OnError(tsquery.ErrCancelled)
	}

	result := &tsquery.BaseResult{
		Seq:       1,
		Res:       qtime.UnitSeconds,
		RollupCfg: rollup.Sample(),
		IDK:       tsquery.ByteID,
		Series:    m.series,
	}
	if err := node.OnNext(result); err != nil {
		return tsquery.NewUpstreamError(err)
	}

	if pctx != nil && pctx.Cancelled() {
		return node.OnError(tsquery.ErrCancelled)
	}
	return node.OnComplete(node, 1, 1)
}

// SampleSeries returns a small set of synthetic NumericScalar series with
// deterministic identities, useful for examples and tests exercising a
// full pipeline without a real backend.
func SampleSeries() []tsquery.TimeSeries {
	return []tsquery.TimeSeries{
		newMockSeries("cpu.usage", map[string]string{"host": "a"}, []value.ScalarPoint{
			{Timestamp: qtime.FromSeconds(0), Value: value.Int(10)},
			{Timestamp: qtime.FromSeconds(1), Value: value.Int(20)},
			{Timestamp: qtime.FromSeconds(2), Value: value.Int(30)},
		}),
	}
}

// newMockSeries builds a NumericScalar TimeSeries with a deterministic
// byte identity derived from a UUIDv5 of the metric and tag set.
func newMockSeries(metric string, tags map[string]string, points []value.ScalarPoint) *mockSeries {
	id := tsquery.StringTimeSeriesID{Metric: metric, Tags: tags}
	raw := uuid.NewSHA1(seriesNamespace, []byte(id.String()))
	return &mockSeries{id: tsquery.NewByteTimeSeriesID(raw[:]), points: points}
}

type mockSeries struct {
	id     tsquery.TimeSeriesID
	points []value.ScalarPoint
}

func (s *mockSeries) ID() tsquery.TimeSeriesID { return s.id }
func (s *mockSeries) Types() []value.Kind      { return []value.Kind{value.NumericScalar} }

func (s *mockSeries) Iterator(kind value.Kind) (tsquery.Iterator, error) {
	if kind != value.NumericScalar {
		return nil, nil
	}
	return &mockScalarIterator{points: s.points}, nil
}

type mockScalarIterator struct {
	points []value.ScalarPoint
	i      int
}

func (it *mockScalarIterator) Kind() value.Kind { return value.NumericScalar }

func (it *mockScalarIterator) Next() (value.ScalarPoint, bool) {
	if it.i >= len(it.points) {
		return value.ScalarPoint{}, false
	}
	p := it.points[it.i]
	it.i++
	return p, true
}
