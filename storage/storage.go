// Package storage defines the DataStoreFactory/DataStore collaborators
// the core consumes from a concrete backend (spec.md §6, out of the
// core's own scope) and supplies one reference implementation,
// MockDataStoreFactory, a deterministic in-memory test double so the
// pipeline is runnable end-to-end without a real backend.
package storage

import (
	"github.com/tsquery-io/tsquery"
)

// DataStoreFactory opens a DataStore for a query id and reports the
// identity kind and pushdown capability of the backend it constructs.
type DataStoreFactory interface {
	Open(id string) (DataStore, error)
	IDKind() tsquery.IDKind
	SupportsPushdown(nodeKind string) bool
}

// DataStore emits Results to a leaf node, synchronously, preserving
// sequenceId order, and terminates the delivery with exactly one
// OnComplete or OnError call. Run must poll pctx's cancellation token at
// least once per emitted Result and terminate with OnError(ErrCancelled)
// rather than OnComplete once cancellation is observed.
type DataStore interface {
	Run(pctx *tsquery.PipelineContext, node tsquery.Node) error
}
