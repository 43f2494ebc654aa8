package tsquery

import (
	"sync"

	"github.com/tsquery-io/tsquery/value"
)

// IteratorFactory produces a typed point iterator for one (node-kind,
// ValueKind) pair from the wrapping node, the wrapping result, and the
// source series list it projects over.
type IteratorFactory func(node Node, result Result, sources []TimeSeries) (Iterator, error)

// Registry maps (node-kind, ValueKind) to the IteratorFactory that handles
// it, an explicit table rather than reflection (per the spec's design
// notes). It also records, per node kind, which ValueKinds it reads from
// its source series in order to produce its own output (its "consumed"
// kinds) — distinct from the kinds it produces, since a node may change
// kind (the summarizer reads NumericScalar/NumericArray and produces
// NumericSummary) rather than transform in place (the sliding-window node
// reads and produces the same kind). It is safe for concurrent
// registration and lookup.
type Registry struct {
	mu       sync.RWMutex
	byKind   map[string]map[value.Kind]IteratorFactory
	consumed map[string][]value.Kind
	produces map[string]ProducesPredicate
}

// ProducesPredicate reports whether a node kind can actually produce kind
// given the ValueKinds its particular source series exposes (sourceTypes).
// This is distinct from ProducedKinds, which only reports what a node kind
// could ever produce in the abstract: a sliding-window node registered for
// both NumericScalar and NumericArray still cannot produce NumericArray for
// a source series that never exposes it.
type ProducesPredicate func(kind value.Kind, sourceTypes []value.Kind) bool

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byKind:   make(map[string]map[value.Kind]IteratorFactory),
		consumed: make(map[string][]value.Kind),
		produces: make(map[string]ProducesPredicate),
	}
}

// Register associates an IteratorFactory with (nodeKind, kind). Intended to
// be called once per node factory at construction time. kind is a
// "produced" kind: it is what a projected series of this node kind reports
// in Types() and what downstream receives when it asks for this kind.
func (r *Registry) Register(nodeKind string, kind value.Kind, factory IteratorFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byKind[nodeKind]
	if !ok {
		m = make(map[value.Kind]IteratorFactory)
		r.byKind[nodeKind] = m
	}
	m[kind] = factory
}

// RegisterConsumed records the ValueKinds nodeKind reads from its source
// series to produce its own output, so projectedSeries.Types() can omit
// them from the passthrough set instead of reporting a kind twice under
// two different meanings (e.g. a summarizer's source NumericScalar is
// consumed, not also offered unchanged alongside the NumericSummary it
// produces).
func (r *Registry) RegisterConsumed(nodeKind string, kinds []value.Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.consumed[nodeKind] = kinds
}

// RegisterProduces records nodeKind's ProducesPredicate, so
// projectedSeries.Types() can ask whether a produced kind is actually
// available for a given source series rather than unconditionally
// reporting every kind the node kind could ever produce.
func (r *Registry) RegisterProduces(nodeKind string, predicate ProducesPredicate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.produces[nodeKind] = predicate
}

// Produces reports whether nodeKind can produce kind given sourceTypes, the
// ValueKinds its source series actually exposes. A nodeKind with no
// registered predicate is treated as never able to produce any kind, the
// conservative default a passthrough-only node kind satisfies trivially.
func (r *Registry) Produces(nodeKind string, kind value.Kind, sourceTypes []value.Kind) bool {
	r.mu.RLock()
	predicate, ok := r.produces[nodeKind]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	return predicate(kind, sourceTypes)
}

// ProducedKinds reports the ValueKinds a node kind has registered factories
// for (what it produces).
func (r *Registry) ProducedKinds(nodeKind string) []value.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m := r.byKind[nodeKind]
	kinds := make([]value.Kind, 0, len(m))
	for k := range m {
		kinds = append(kinds, k)
	}
	return kinds
}

// ConsumedKinds reports the ValueKinds nodeKind reads from its source
// series, registered via RegisterConsumed.
func (r *Registry) ConsumedKinds(nodeKind string) []value.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.consumed[nodeKind]
}

// NewIterator implements the IteratorFactory rule of spec.md §4.3,
// generalized to kind-changing transforms: a node-specific factory is
// itself the authority on whether it can produce kind from sources (it
// reads whatever input kinds it needs and returns "absent" (nil, nil)
// itself if none are present); only the passthrough case (3) relies on
// the source series' own "absent" behavior.
//  1. If nodeKind has a registered factory for kind, use it.
//  2. Else pass through the source's own iterator for kind unchanged
//     (itself "absent" if the source does not expose kind).
func (r *Registry) NewIterator(nodeKind string, kind value.Kind, node Node, result Result, sources []TimeSeries) (Iterator, error) {
	r.mu.RLock()
	factory, ok := r.byKind[nodeKind][kind]
	r.mu.RUnlock()
	if ok {
		return factory(node, result, sources)
	}

	if len(sources) == 0 {
		return nil, nil
	}
	return sources[0].Iterator(kind)
}
