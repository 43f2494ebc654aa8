package value

import (
	"github.com/tsquery-io/tsquery/qtime"
)

// ArraySeries is the NumericArray value kind: a dense array of values tied
// to a start timestamp and an interval. Values are tagged "all integral" or
// "all floating" at the series level; once any element is floating the
// whole series promotes to floating, permanently.
type ArraySeries struct {
	Start    qtime.TimeStamp
	Interval qtime.Duration
	isFloat  bool
	ints     []int64
	floats   []float64
}

// NewIntArray builds an all-integral ArraySeries.
func NewIntArray(start qtime.TimeStamp, interval qtime.Duration, values []int64) ArraySeries {
	return ArraySeries{Start: start, Interval: interval, ints: values}
}

// NewFloatArray builds an all-floating ArraySeries.
func NewFloatArray(start qtime.TimeStamp, interval qtime.Duration, values []float64) ArraySeries {
	return ArraySeries{Start: start, Interval: interval, isFloat: true, floats: values}
}

// IsFloat reports whether the series has been promoted to floating values.
func (a ArraySeries) IsFloat() bool { return a.isFloat }

// Len returns the number of elements; a NumericArray's length and interval
// together fully determine the timestamps of its elements.
func (a ArraySeries) Len() int {
	if a.isFloat {
		return len(a.floats)
	}
	return len(a.ints)
}

// At returns the value at index i as a tagged Number.
func (a ArraySeries) At(i int) Number {
	if a.isFloat {
		return Float(a.floats[i])
	}
	return Int(a.ints[i])
}

// TimestampAt returns the timestamp of the i-th element: Start + i*Interval.
func (a ArraySeries) TimestampAt(i int) qtime.TimeStamp {
	step := qtime.Duration{Amount: a.Interval.Amount * int64(i), Unit: a.Interval.Unit}
	return a.Start.Add(step)
}

// Promote returns a floating copy of the series if it is currently
// integral; a no-op if it is already floating. Promotion from integral to
// floating is monotonic and is never reversed.
func (a ArraySeries) Promote() ArraySeries {
	if a.isFloat {
		return a
	}
	floats := make([]float64, len(a.ints))
	for i, v := range a.ints {
		floats[i] = float64(v)
	}
	return NewFloatArray(a.Start, a.Interval, floats)
}

// AppendInt appends an integral value in place; panics if the series has
// already been promoted to floating (callers must Promote first).
func (a *ArraySeries) AppendInt(v int64) {
	if a.isFloat {
		panic("value: cannot append int64 to a promoted (floating) ArraySeries")
	}
	a.ints = append(a.ints, v)
}

// AppendFloat appends a floating value, promoting the series first if it is
// still integral.
func (a *ArraySeries) AppendFloat(v float64) {
	if !a.isFloat {
		*a = a.Promote()
	}
	a.floats = append(a.floats, v)
}
