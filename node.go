package tsquery

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Node is the contract every pipeline node implements: a step that
// consumes Results from upstream and produces Results for downstream. No
// backpressure protocol is prescribed — upstreams push synchronously and
// downstreams must accept.
type Node interface {
	// ID is the node's unique identifier within the graph.
	ID() string

	// OnNext is called by upstream when a Result is available.
	OnNext(result Result) error
	// OnComplete is called by upstream to announce it produced totalSeq
	// results, the last bearing sequence id finalSeq.
	OnComplete(upstream Node, finalSeq, totalSeq int64) error
	// OnError propagates an upstream error as-is; no recovery happens here.
	OnError(err error) error
	// Close releases any retained resources. Idempotent.
	Close() error

	addDownstream(n Node)
	addUpstream(n Node)
}

// BaseNode supplies the wiring, error-latch, and idempotent-close behavior
// common to every node, mirroring influxdata-kapacitor's `node` struct
// (parent/child slices, a retained logger) with its goroutine/channel
// machinery removed: this spec's nodes run synchronously on the caller's
// thread (spec.md §5).
type BaseNode struct {
	id         string
	upstreams  []Node
	downstream []Node
	logger     *zap.Logger

	// SelfOverride lets an embedding node type register itself so
	// ForwardComplete can report the correct Node identity downstream,
	// working around Go's lack of virtual dispatch through embedding.
	SelfOverride Node

	mu     sync.Mutex
	failed bool

	closeOnce sync.Once
	closeErr  error

	// collectedCount and emittedCount track how many Results this node has
	// taken in from upstream and pushed downstream, mirroring
	// influxdata-kapacitor's node.collectedCount/emittedCount bookkeeping.
	// Accessed with sync/atomic since OnNext may run concurrently with a
	// diagnostic read of these counters.
	collectedCount int64
	emittedCount   int64
}

// NewBaseNode returns a BaseNode ready to be embedded by a concrete node
// type. self should be the embedding node's own Node value, so
// ForwardComplete can report correct provenance to downstream nodes.
func NewBaseNode(id string, self Node, logger *zap.Logger) BaseNode {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("node constructed", zap.String("node", id))
	return BaseNode{id: id, SelfOverride: self, logger: logger}
}

func (n *BaseNode) ID() string { return n.id }

func (n *BaseNode) addDownstream(child Node) { n.downstream = append(n.downstream, child) }
func (n *BaseNode) addUpstream(parent Node)   { n.upstreams = append(n.upstreams, parent) }

// Link wires child as a downstream consumer of n.
func Link(parent, child Node) {
	parent.addDownstream(child)
	child.addUpstream(parent)
}

// Failed reports whether this node has already seen an error from any
// upstream; per spec.md §4.1, a node that has failed must not produce
// further results of its own, though it must still forward onComplete from
// other upstreams.
func (n *BaseNode) Failed() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.failed
}

// MarkCollected records that this node has taken in one Result from
// upstream. Concrete nodes call this at the top of their own OnNext,
// before any cancellation check or transformation.
func (n *BaseNode) MarkCollected() {
	atomic.AddInt64(&n.collectedCount, 1)
}

// CollectedCount reports how many Results this node has received from
// upstream so far.
func (n *BaseNode) CollectedCount() int64 {
	return atomic.LoadInt64(&n.collectedCount)
}

// EmittedCount reports how many Results this node has pushed downstream so
// far.
func (n *BaseNode) EmittedCount() int64 {
	return atomic.LoadInt64(&n.emittedCount)
}

// SendDownstream pushes result to every downstream consumer, stopping (and
// returning) at the first error. Concrete nodes call this from their own
// OnNext implementation after wrapping the upstream Result.
func (n *BaseNode) SendDownstream(result Result) error {
	atomic.AddInt64(&n.emittedCount, 1)
	for _, child := range n.downstream {
		if err := child.OnNext(result); err != nil {
			return err
		}
	}
	return nil
}

// ForwardComplete propagates onComplete to every downstream node,
// preserving (finalSeq, totalSeq) as required by spec.md §4.1.
func (n *BaseNode) ForwardComplete(finalSeq, totalSeq int64) error {
	for _, child := range n.downstream {
		if err := child.OnComplete(n.self(), finalSeq, totalSeq); err != nil {
			return err
		}
	}
	return nil
}

// self returns the embedding node's own identity, as registered via
// NewBaseNode, so ForwardComplete can report correct provenance downstream.
func (n *BaseNode) self() Node {
	return n.SelfOverride
}

// ForwardError marks this node as failed and propagates err to every
// downstream node unchanged, per the "errors short-circuit subsequent
// onNext calls" policy in spec.md §4.1.
func (n *BaseNode) ForwardError(err error) error {
	n.mu.Lock()
	alreadyFailed := n.failed
	n.failed = true
	n.mu.Unlock()

	if !alreadyFailed {
		n.logger.Error("node failed", zap.String("node", n.id), zap.Error(err))
	}

	for _, child := range n.downstream {
		if cerr := child.OnError(err); cerr != nil {
			return cerr
		}
	}
	return nil
}

// CancelIfNeeded checks pctx for cancellation and, if the pipeline has been
// cancelled and this node has not already failed, forwards ErrCancelled
// downstream via ForwardError, marking the node failed so any pending
// upstream deliveries still in flight are dropped by the Failed() guard in
// OnNext. Returns true if the node is cancelled (whether just now or
// previously), so the caller can skip its own transformation for this
// OnNext call.
func (n *BaseNode) CancelIfNeeded(pctx *PipelineContext) (bool, error) {
	if n.Failed() {
		return true, nil
	}
	if !pctx.Cancelled() {
		return false, nil
	}
	n.logger.Warn("node cancelled", zap.String("node", n.id))
	return true, n.ForwardError(ErrCancelled)
}

// CloseOnce runs closeFn at most once and caches its result, the
// idempotent-close guarantee spec.md §4.1 requires, implemented with
// sync.Once rather than a boolean flag per the spec's own guidance (§9)
// to replace double-checked locking with a one-shot initialization
// primitive.
func (n *BaseNode) CloseOnce(closeFn func() error) error {
	n.closeOnce.Do(func() {
		n.closeErr = closeFn()
	})
	return n.closeErr
}

// Logger returns the node's logger, a zap.Logger configured (if at all) by
// the owning pipeline; never consulted on the per-point hot path, only at
// construction and on error/close paths.
func (n *BaseNode) Logger() *zap.Logger { return n.logger }
