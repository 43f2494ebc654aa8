package value

import "github.com/tsquery-io/tsquery/qtime"

// SummaryPoint is the NumericSummary value kind: a timestamp paired with a
// mapping from summary-id (defined by a RollupConfig) to a scalar Number.
type SummaryPoint struct {
	Timestamp qtime.TimeStamp
	Values    map[int]Number
}

// NewSummaryPoint builds an empty SummaryPoint at the given timestamp.
func NewSummaryPoint(ts qtime.TimeStamp) SummaryPoint {
	return SummaryPoint{Timestamp: ts, Values: make(map[int]Number)}
}

// Set records the value for a given summary-id.
func (s SummaryPoint) Set(id int, v Number) {
	s.Values[id] = v
}

// Value returns the value for a given summary-id, and whether it was
// present.
func (s SummaryPoint) Value(id int) (Number, bool) {
	v, ok := s.Values[id]
	return v, ok
}
