package slidingwindow

import (
	"github.com/pkg/errors"

	"github.com/tsquery-io/tsquery"
	"github.com/tsquery-io/tsquery/descriptor"
	"github.com/tsquery-io/tsquery/value"
)

// Node computes a rolling aggregate over each series of an incoming
// Result. It holds no per-query state; every windowAccumulator lives on
// the iterator built for a given Result's series, so one Node instance is
// safe to reuse across queries (spec.md §5).
type Node struct {
	tsquery.BaseNode
	cfg      *Config
	registry *tsquery.Registry
	pctx     *tsquery.PipelineContext
}

// NewNode builds a sliding-window Node from a validated Config.
func NewNode(id string, cfg *Config, pctx *tsquery.PipelineContext) *Node {
	n := &Node{cfg: cfg, registry: pctx.Registry(), pctx: pctx}
	n.BaseNode = tsquery.NewBaseNode(id, n, pctx.Logger().Named(Kind).Named(id))
	return n
}

// OnNext wraps result in a ResultView projecting through this node's
// registry entry and forwards it downstream, unless the pipeline has been
// cancelled, in which case pending deliveries are dropped.
func (n *Node) OnNext(result tsquery.Result) error {
	if n.Failed() {
		return nil
	}
	n.MarkCollected()
	if cancelled, err := n.CancelIfNeeded(n.pctx); cancelled {
		return err
	}
	view := tsquery.NewResultView(result, n, n.registry, Kind)
	return n.SendDownstream(view)
}

// OnComplete forwards completion downstream, preserving (finalSeq, totalSeq).
func (n *Node) OnComplete(upstream tsquery.Node, finalSeq, totalSeq int64) error {
	return n.ForwardComplete(finalSeq, totalSeq)
}

// OnError marks the node failed and propagates err downstream unchanged.
func (n *Node) OnError(err error) error {
	return n.ForwardError(err)
}

// Close is a no-op beyond the idempotent-close bookkeeping; the node
// retains no resources of its own.
func (n *Node) Close() error {
	return n.CloseOnce(func() error { return nil })
}

// Factory builds sliding-window Nodes from descriptors and supplies the
// iterator construction the Registry dispatches to.
type Factory struct{}

// NewFactory returns a sliding-window Factory.
func NewFactory() *Factory { return &Factory{} }

func (f *Factory) Kind() string { return Kind }

// Create decodes raw into a Config, validates it, and builds a Node.
func (f *Factory) Create(pctx *tsquery.PipelineContext, id string, raw map[string]interface{}) (tsquery.Node, error) {
	cfg := &Config{}
	if err := descriptor.Decode(raw, cfg); err != nil {
		return nil, tsquery.NewConfigError(id, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, tsquery.NewConfigError(id, err)
	}
	return NewNode(id, cfg, pctx), nil
}

// ProducedKinds implements tsquery.NodeFactory: the sliding-window node
// transforms in place, so its produced kinds equal its consumed kinds.
func (f *Factory) ProducedKinds() []value.Kind {
	return []value.Kind{value.NumericScalar, value.NumericArray}
}

// ConsumedKinds implements tsquery.NodeFactory.
func (f *Factory) ConsumedKinds() []value.Kind {
	return []value.Kind{value.NumericScalar, value.NumericArray}
}

// ProducesFor implements tsquery.NodeFactory: this node transforms each
// kind in place, so it can only produce kind for a source series that
// already exposes that same kind.
func (f *Factory) ProducesFor(kind value.Kind, sourceTypes []value.Kind) bool {
	for _, k := range sourceTypes {
		if k == kind {
			return true
		}
	}
	return false
}

// NewTypedIterator is the node's IteratorFactory entry point, registered
// for NumericScalar and NumericArray via tsquery.RegisterFactory.
func (f *Factory) NewTypedIterator(kind value.Kind, n tsquery.Node, result tsquery.Result, sources []tsquery.TimeSeries) (tsquery.Iterator, error) {
	node, ok := n.(*Node)
	if !ok {
		return nil, errors.Errorf("slidingwindow: unexpected node type %T", n)
	}
	if len(sources) != 1 {
		return nil, tsquery.NewTypeError(errors.New("slidingwindow: expected exactly one source series"))
	}
	src := sources[0]

	switch kind {
	case value.NumericScalar:
		it, err := src.Iterator(value.NumericScalar)
		if err != nil {
			return nil, err
		}
		if it == nil {
			return nil, nil
		}
		scalarIt, ok := it.(tsquery.ScalarIterator)
		if !ok {
			return nil, tsquery.NewTypeError(errors.New("slidingwindow: NumericScalar iterator has unexpected type"))
		}
		return newScalarIterator(node.cfg, result, scalarIt, node.pctx), nil
	case value.NumericArray:
		it, err := src.Iterator(value.NumericArray)
		if err != nil {
			return nil, err
		}
		if it == nil {
			return nil, nil
		}
		arrIt, ok := it.(tsquery.ArrayIterator)
		if !ok {
			return nil, tsquery.NewTypeError(errors.New("slidingwindow: NumericArray iterator has unexpected type"))
		}
		return newArrayIterator(node.cfg, result, arrIt, node.pctx), nil
	default:
		return nil, errors.Errorf("slidingwindow: cannot build iterator for %s", kind)
	}
}
