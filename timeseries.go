package tsquery

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/tsquery-io/tsquery/value"
)

// IDKind distinguishes the two identity representations a TimeSeriesID may
// take, so nodes can refuse inputs whose id kind they cannot interpret.
type IDKind int

const (
	StringID IDKind = iota
	ByteID
)

func (k IDKind) String() string {
	if k == ByteID {
		return "ByteID"
	}
	return "StringID"
}

// TimeSeriesID is the opaque identity of a series: a metric name plus a tag
// set, or an internal byte encoding. Two kinds are distinguished at the
// type level (via Kind) so nodes can refuse incompatible inputs.
type TimeSeriesID interface {
	Kind() IDKind
	String() string
}

// StringTimeSeriesID is a metric-name-plus-tags identity, the id kind
// produced by most concrete storage backends.
type StringTimeSeriesID struct {
	Metric string
	Tags   map[string]string
}

func (id StringTimeSeriesID) Kind() IDKind { return StringID }

func (id StringTimeSeriesID) String() string {
	keys := make([]string, 0, len(id.Tags))
	for k := range id.Tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(id.Metric)
	for _, k := range keys {
		fmt.Fprintf(&b, "{%s=%s}", k, id.Tags[k])
	}
	return b.String()
}

// ByteTimeSeriesID is a pre-encoded identity: an internal storage backend's
// own byte representation, hashed once so it can be used as a stable map
// key without retaining the underlying bytes.
type ByteTimeSeriesID struct {
	hash uint64
}

// NewByteTimeSeriesID hashes raw with xxhash, the same fast, allocation-free
// hash used elsewhere in the retrieved example pack for series identity.
func NewByteTimeSeriesID(raw []byte) ByteTimeSeriesID {
	return ByteTimeSeriesID{hash: xxhash.Sum64(raw)}
}

func (id ByteTimeSeriesID) Kind() IDKind { return ByteID }
func (id ByteTimeSeriesID) String() string {
	return fmt.Sprintf("byteid:%x", id.hash)
}

// Iterator is the common marker interface for the three kind-specific point
// iterators. Points within an iterator emerge in non-decreasing timestamp
// order.
type Iterator interface {
	Kind() value.Kind
}

// ScalarIterator yields NumericScalar points.
type ScalarIterator interface {
	Iterator
	// Next returns the next point, or ok=false at end of stream.
	Next() (point value.ScalarPoint, ok bool)
}

// ArrayIterator yields the single NumericArray value representing a whole
// series (a dense array keyed by a start timestamp and interval).
type ArrayIterator interface {
	Iterator
	Next() (series value.ArraySeries, ok bool)
}

// SummaryIterator yields NumericSummary points.
type SummaryIterator interface {
	Iterator
	Next() (point value.SummaryPoint, ok bool)
}

// TimeSeries is an identified sequence of values that may expose multiple
// value kinds. iterator(kind) for a kind the series does not expose yields
// "absent": (nil, nil).
type TimeSeries interface {
	ID() TimeSeriesID
	// Types reports the stable set of ValueKinds this series exposes for
	// its lifetime.
	Types() []value.Kind
	// Iterator returns an iterator for the given kind. A nil, nil result
	// means the kind is absent; a non-nil error means construction failed
	// (e.g. a TypeError).
	Iterator(kind value.Kind) (Iterator, error)
}

// HasKind reports whether ts exposes the given ValueKind.
func HasKind(ts TimeSeries, kind value.Kind) bool {
	for _, k := range ts.Types() {
		if k == kind {
			return true
		}
	}
	return false
}
