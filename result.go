package tsquery

import (
	"github.com/tsquery-io/tsquery/qtime"
	"github.com/tsquery-io/tsquery/rollup"
)

// Result is one batch of time-series produced by a node for a given
// sequence id. A Result's sequenceId strictly increases within a single
// upstream; it never repeats. A Result is owned by the node that emitted
// it; downstream consumers must not mutate it and must release it via
// Close when done.
type Result interface {
	SequenceID() int64
	// TimeSpec reports the result's time grid, if any.
	TimeSpec() (qtime.TimeSpecification, bool)
	Resolution() qtime.Unit
	// Rollup is immutable for the lifetime of the Result; nil if the
	// result carries no NumericSummary data.
	Rollup() rollup.Config
	IDKind() IDKind
	TimeSeries() []TimeSeries
	// Source is the node that produced this Result.
	Source() Node
	Close() error
}

// BaseResult is a concrete, source-owned Result implementation used by leaf
// (data-store) nodes. Interior nodes wrap it (or a ResultView of it) rather
// than constructing their own.
type BaseResult struct {
	Seq        int64
	Spec       *qtime.TimeSpecification
	Res        qtime.Unit
	RollupCfg  rollup.Config
	IDK        IDKind
	Series     []TimeSeries
	SourceNode Node
}

func (r *BaseResult) SequenceID() int64 { return r.Seq }

func (r *BaseResult) TimeSpec() (qtime.TimeSpecification, bool) {
	if r.Spec == nil {
		return qtime.TimeSpecification{}, false
	}
	return *r.Spec, true
}

func (r *BaseResult) Resolution() qtime.Unit       { return r.Res }
func (r *BaseResult) Rollup() rollup.Config         { return r.RollupCfg }
func (r *BaseResult) IDKind() IDKind                { return r.IDK }
func (r *BaseResult) TimeSeries() []TimeSeries      { return r.Series }
func (r *BaseResult) Source() Node                  { return r.SourceNode }
func (r *BaseResult) Close() error                  { return nil }
