package qtime

import (
	"time"

	"github.com/pkg/errors"
)

// TimeSpecification describes the time grid a Result's contained series are
// implicitly aligned to: a start, an end, an interval between points, and
// the time zone absolute dates should be interpreted in. It is optional on a
// Result; when absent, series carry their own per-point timestamps.
type TimeSpecification struct {
	Start    TimeStamp
	End      TimeStamp
	Interval Duration
	TimeZone *time.Location
}

// NewTimeSpecification builds a TimeSpecification, defaulting TimeZone to
// UTC when nil.
func NewTimeSpecification(start, end TimeStamp, interval Duration, tz *time.Location) TimeSpecification {
	if tz == nil {
		tz = time.UTC
	}
	return TimeSpecification{Start: start, End: end, Interval: interval, TimeZone: tz}
}

// At returns the timestamp of the i-th element of any NumericArray series
// tied to this spec: start + i*interval. A NumericArray's length and
// interval together fully determine its element timestamps (spec
// invariant); value.ArraySeries.TimestampAt performs the same arithmetic
// from the array's own Start and Interval.
func (ts TimeSpecification) At(i int) TimeStamp {
	step := Duration{Amount: ts.Interval.Amount * int64(i), Unit: ts.Interval.Unit}
	return ts.Start.Add(step)
}

// Timestamps returns the first n element timestamps of any NumericArray
// series tied to this spec, in order: At(0), At(1), ..., At(n-1). n is
// supplied by the caller since a TimeSpecification does not itself carry
// an array length — that belongs to the paired ArraySeries.
func (ts TimeSpecification) Timestamps(n int) []TimeStamp {
	out := make([]TimeStamp, n)
	for i := 0; i < n; i++ {
		out[i] = ts.At(i)
	}
	return out
}

// IndexOf returns the smallest array index i such that At(i) >= q, the
// first emitted index for a query start q. ok is false if the interval is
// zero (cannot derive an index) or q is beyond End.
func (ts TimeSpecification) IndexOf(q TimeStamp) (idx int, ok bool) {
	if ts.Interval.Millis() <= 0 {
		return 0, false
	}
	if q.After(ts.End) {
		return 0, false
	}
	if q.Before(ts.Start) {
		return 0, true
	}
	diff := q.Sub(ts.Start).Millis()
	step := ts.Interval.Millis()
	idx = int(diff / step)
	if diff%step != 0 {
		idx++
	}
	return idx, true
}

// Validate reports a TypeError-shaped error when the interval is absent
// (spec.md §7: "array interval absent" is a TypeError condition).
func (ts TimeSpecification) Validate() error {
	if ts.Interval.Millis() <= 0 {
		return errors.New("qtime: time specification has no positive interval")
	}
	return nil
}
