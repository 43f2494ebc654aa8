package tsquery

import "github.com/tsquery-io/tsquery/value"

// NodeFactory is the per-node-kind constructor contract named by
// spec.md §6: it builds a Node from a raw descriptor, reports the
// ValueKinds it understands, and supplies the typed iterator constructor
// the Registry dispatches to for each of those kinds.
type NodeFactory interface {
	// Kind is this factory's node-kind name, the key the Registry uses to
	// look up its iterator factories.
	Kind() string
	// Create builds a Node from a raw descriptor (see package descriptor),
	// returning a ConfigError if the descriptor is invalid.
	Create(pctx *PipelineContext, id string, raw map[string]interface{}) (Node, error)
	// ProducedKinds reports the ValueKinds this node kind emits; any other
	// kind passes through its source unchanged (spec.md §4.3). For a node
	// that transforms in place (sliding-window) this equals ConsumedKinds;
	// for one that changes kind (summarizer) it does not.
	ProducedKinds() []value.Kind
	// ConsumedKinds reports the ValueKinds this node reads from its source
	// series to build ProducedKinds. Removed from a projected series'
	// passthrough set so a consumed kind is not also reported unchanged.
	ConsumedKinds() []value.Kind
	// ProducesFor reports whether this node kind can actually produce kind
	// given sourceTypes, the ValueKinds one particular source series
	// exposes. Unlike ProducedKinds, which is a fixed, source-independent
	// set, this lets a projected series' Types() tell a source that
	// exposes nothing this node can consume apart from a kind it cannot
	// produce from it.
	ProducesFor(kind value.Kind, sourceTypes []value.Kind) bool
	// NewTypedIterator builds the iterator for one of ProducedKinds().
	NewTypedIterator(kind value.Kind, node Node, result Result, sources []TimeSeries) (Iterator, error)
}

// RegisterFactory wires every (Kind(), ValueKind) pair a NodeFactory
// reports into registry, so node construction and registry population
// stay in lockstep: a factory cannot forget to register one of the kinds
// it claims to handle.
func RegisterFactory(registry *Registry, f NodeFactory) {
	registry.RegisterConsumed(f.Kind(), f.ConsumedKinds())
	registry.RegisterProduces(f.Kind(), f.ProducesFor)
	for _, kind := range f.ProducedKinds() {
		k := kind
		registry.Register(f.Kind(), k, func(node Node, result Result, sources []TimeSeries) (Iterator, error) {
			return f.NewTypedIterator(k, node, result, sources)
		})
	}
}
