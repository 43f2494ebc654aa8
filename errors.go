// Package tsquery implements the core of a streaming time-series query
// pipeline: a DAG of Nodes that consume Results from upstream, transform
// them lazily, and push them downstream. See SPEC_FULL.md for the full
// design.
package tsquery

import (
	"fmt"

	"github.com/pkg/errors"
)

// ConfigError reports invalid or missing node configuration, raised at
// node construction time.
type ConfigError struct {
	Node string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("tsquery: config error in node %q: %v", e.Node, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError wraps cause as a ConfigError attributed to the named node.
func NewConfigError(node string, cause error) error {
	return &ConfigError{Node: node, Err: errors.WithStack(cause)}
}

// UpstreamError tags an error as having originated outside the node that is
// reporting it (typically the data store or another node's onNext). Nodes
// must re-emit it to their own downstream unchanged; no recovery happens at
// this layer.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string { return e.Err.Error() }
func (e *UpstreamError) Unwrap() error { return e.Err }

// NewUpstreamError wraps cause as an UpstreamError.
func NewUpstreamError(cause error) error {
	if cause == nil {
		return nil
	}
	if _, ok := cause.(*UpstreamError); ok {
		return cause
	}
	return &UpstreamError{Err: errors.WithStack(cause)}
}

// TypeError reports that a series exposed a kind whose element
// representation violates an invariant: timestamps out of order, a
// NumericArray with no interval, and similar shape violations.
type TypeError struct {
	Err error
}

func (e *TypeError) Error() string { return "tsquery: type error: " + e.Err.Error() }
func (e *TypeError) Unwrap() error { return e.Err }

// NewTypeError wraps cause as a TypeError.
func NewTypeError(cause error) error {
	return &TypeError{Err: errors.WithStack(cause)}
}

// CancelledError reports that an operation was aborted by the pipeline's
// cancellation token.
type CancelledError struct{}

func (e *CancelledError) Error() string { return "tsquery: operation cancelled" }

// ErrCancelled is the sentinel CancelledError value; compare with errors.Is.
var ErrCancelled error = &CancelledError{}
