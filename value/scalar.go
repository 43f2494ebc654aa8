package value

import (
	"math"

	"github.com/tsquery-io/tsquery/qtime"
)

// Number is a tagged int64/float64 union: the point carries a one-bit tag
// distinguishing integral from floating representation, with no implicit
// coercion at the point level.
type Number struct {
	isFloat bool
	i       int64
	f       float64
}

// Int builds an integral Number.
func Int(v int64) Number { return Number{i: v} }

// Float builds a floating-point Number.
func Float(v float64) Number { return Number{isFloat: true, f: v} }

// NaN is the floating not-a-number Number.
func NaN() Number { return Float(math.NaN()) }

// IsFloat reports whether the Number is floating-point.
func (n Number) IsFloat() bool { return n.isFloat }

// Int64 returns the integral value, truncating a float if necessary.
func (n Number) Int64() int64 {
	if n.isFloat {
		return int64(n.f)
	}
	return n.i
}

// Float64 returns the value widened to float64, the standard coercion used
// whenever an integral and a floating value must be combined.
func (n Number) Float64() float64 {
	if n.isFloat {
		return n.f
	}
	return float64(n.i)
}

// IsNaN reports whether the Number is a floating NaN.
func (n Number) IsNaN() bool {
	return n.isFloat && math.IsNaN(n.f)
}

// Promote returns n widened to a floating Number, a one-way operation:
// promotion from integral to floating is monotonic and permanent.
func (n Number) Promote() Number {
	if n.isFloat {
		return n
	}
	return Float(float64(n.i))
}

// ScalarPoint is a single (timestamp, Number) pair, the NumericScalar value
// kind.
type ScalarPoint struct {
	Timestamp qtime.TimeStamp
	Value     Number
}
