package tsquery

import (
	"context"

	"go.uber.org/zap"

	"github.com/tsquery-io/tsquery/clock"
)

// PipelineContext carries the resources a pipeline's nodes share for the
// lifetime of one query: a cancellation token, the iterator registry, a
// clock, and a logger. It is constructed once per executed query and
// threaded through every node factory, mirroring how
// influxdata-kapacitor's nodes close over a shared *ExecutionStats and
// *log.Logger rather than looking either up globally.
type PipelineContext struct {
	ctx      context.Context
	registry *Registry
	clock    clock.Clock
	logger   *zap.Logger
}

// NewPipelineContext builds a PipelineContext. A nil clock defaults to
// clock.Wall(); a nil logger defaults to zap.NewNop().
func NewPipelineContext(ctx context.Context, registry *Registry, c clock.Clock, logger *zap.Logger) *PipelineContext {
	if ctx == nil {
		ctx = context.Background()
	}
	if c == nil {
		c = clock.Wall()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PipelineContext{ctx: ctx, registry: registry, clock: c, logger: logger}
}

// Context returns the cancellation token nodes must poll between
// onNext calls; a node observing ctx.Err() != nil must stop producing and
// forward ErrCancelled downstream (see BaseNode.CancelIfNeeded).
func (p *PipelineContext) Context() context.Context { return p.ctx }

// Cancelled reports whether the pipeline's context has already been
// cancelled, the poll-once-per-point check required by spec.md §5.
func (p *PipelineContext) Cancelled() bool {
	select {
	case <-p.ctx.Done():
		return true
	default:
		return false
	}
}

// Registry returns the IteratorFactory registry shared by every node in
// this pipeline.
func (p *PipelineContext) Registry() *Registry { return p.registry }

// Clock returns the clock nodes should use for any wall-clock read
// (construction-time defaults, diagnostic timestamps), never the hot
// per-point path, which only ever uses timestamps carried on the data
// itself.
func (p *PipelineContext) Clock() clock.Clock { return p.clock }

// Logger returns the pipeline-wide base logger; nodes derive their own
// child logger from it (see BaseNode.Logger), scoped with their id.
func (p *PipelineContext) Logger() *zap.Logger { return p.logger }
