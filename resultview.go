package tsquery

import (
	"sync"

	"github.com/tsquery-io/tsquery/qtime"
	"github.com/tsquery-io/tsquery/rollup"
	"github.com/tsquery-io/tsquery/value"
)

// ResultView is the result wrapper used by every transforming node. It
// delegates all metadata (TimeSpec, SequenceID, Resolution, Rollup, IDKind)
// to the wrapped upstream Result and replaces only TimeSeries() with
// freshly projected series that route through a Registry. It reports
// itself as the source node for downstream traversal. Closing the view
// closes the wrapped Result exactly once, even if Close is called more
// than once.
type ResultView struct {
	upstream Result
	source   Node
	series   []TimeSeries
	closeOne sync.Once
	closeErr error
}

// NewResultView wraps upstream, projecting each contained series through
// registry for nodeKind. The owning node is reported as Source() so
// downstream nodes see the correct provenance.
func NewResultView(upstream Result, source Node, registry *Registry, nodeKind string) *ResultView {
	rv := &ResultView{upstream: upstream, source: source}
	upstreamSeries := upstream.TimeSeries()
	series := make([]TimeSeries, len(upstreamSeries))
	for i, ts := range upstreamSeries {
		series[i] = &projectedSeries{
			source:   ts,
			node:     source,
			result:   rv,
			registry: registry,
			nodeKind: nodeKind,
		}
	}
	rv.series = series
	return rv
}

func (v *ResultView) SequenceID() int64 { return v.upstream.SequenceID() }

func (v *ResultView) TimeSpec() (qtime.TimeSpecification, bool) { return v.upstream.TimeSpec() }

func (v *ResultView) Resolution() qtime.Unit { return v.upstream.Resolution() }

func (v *ResultView) Rollup() rollup.Config { return v.upstream.Rollup() }

func (v *ResultView) IDKind() IDKind { return v.upstream.IDKind() }

func (v *ResultView) TimeSeries() []TimeSeries { return v.series }

func (v *ResultView) Source() Node { return v.source }

// Close releases the wrapped upstream Result exactly once.
func (v *ResultView) Close() error {
	v.closeOne.Do(func() {
		v.closeErr = v.upstream.Close()
	})
	return v.closeErr
}

// projectedSeries is the generic stand-in for the Java original's
// per-node "SlidingWindowTimeSeries" nested class: it delegates ID/Types to
// the wrapped source series and routes Iterator requests through the
// node's Registry, implementing the Registry.NewIterator dispatch rule in
// one shared place instead of once per node kind.
type projectedSeries struct {
	source   TimeSeries
	node     Node
	result   Result
	registry *Registry
	nodeKind string
}

func (p *projectedSeries) ID() TimeSeriesID { return p.source.ID() }

func (p *projectedSeries) Types() []value.Kind {
	sourceTypes := p.source.Types()
	produced := p.registry.ProducedKinds(p.nodeKind)
	consumed := p.registry.ConsumedKinds(p.nodeKind)

	seen := make(map[value.Kind]bool, len(produced))
	kinds := make([]value.Kind, 0, len(produced)+len(sourceTypes))
	for _, k := range produced {
		// A produced kind is only real for this series if the registry's
		// ProducesFor predicate confirms the source actually exposes what
		// this node kind needs to build it; otherwise advertising it here
		// would make HasKind report present for a kind whose Iterator call
		// then yields (nil, nil), matching the Java original's
		// "source.types()" passthrough.
		if seen[k] || !p.registry.Produces(p.nodeKind, k, sourceTypes) {
			continue
		}
		seen[k] = true
		kinds = append(kinds, k)
	}
	for _, k := range sourceTypes {
		if seen[k] || isConsumed(consumed, k) {
			continue
		}
		seen[k] = true
		kinds = append(kinds, k)
	}
	return kinds
}

func isConsumed(consumed []value.Kind, k value.Kind) bool {
	for _, c := range consumed {
		if c == k {
			return true
		}
	}
	return false
}

func (p *projectedSeries) Iterator(kind value.Kind) (Iterator, error) {
	return p.registry.NewIterator(p.nodeKind, kind, p.node, p.result, []TimeSeries{p.source})
}
