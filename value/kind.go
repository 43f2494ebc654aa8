// Package value implements the tagged numeric variant that flows through
// the pipeline: NumericScalar points, NumericArray series, and
// NumericSummary points, plus the coercion and accumulation rules between
// them.
package value

// Kind is the closed set of value kinds a TimeSeries may expose.
type Kind int

const (
	NumericScalar Kind = iota
	NumericArray
	NumericSummary
)

func (k Kind) String() string {
	switch k {
	case NumericScalar:
		return "NumericScalar"
	case NumericArray:
		return "NumericArray"
	case NumericSummary:
		return "NumericSummary"
	default:
		return "Unknown"
	}
}
