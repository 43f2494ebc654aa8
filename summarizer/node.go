package summarizer

import (
	"github.com/tsquery-io/tsquery"
	"github.com/tsquery-io/tsquery/descriptor"
)

// Node reduces every series of an incoming Result to a single
// NumericSummary point. It holds no per-query state itself; all
// accumulation happens inside the iterators built per Result, so one
// Node instance is safe to reuse across queries provided its Config is
// immutable (spec.md §5).
type Node struct {
	tsquery.BaseNode
	cfg      *Config
	registry *tsquery.Registry
	pctx     *tsquery.PipelineContext
}

// NewNode builds a summarizer Node from a validated Config.
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

// Factory builds summarizer Nodes from descriptors and supplies the
// iterator construction the Registry dispatches to.
type Factory struct{}

// NewFactory returns a summarizer Factory.
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
