package value

import "github.com/pkg/errors"

// Aggregator names the seven statistics summaries and the sliding-window
// node both support.
type Aggregator string

const (
	Sum   Aggregator = "sum"
	Avg   Aggregator = "avg"
	Max   Aggregator = "max"
	Min   Aggregator = "min"
	Count Aggregator = "count"
	First Aggregator = "first"
	Last  Aggregator = "last"
)

// ValidAggregators enumerates the recognized aggregator names, in the order
// they are listed in the node configuration tables.
var ValidAggregators = []Aggregator{Sum, Avg, Max, Min, Count, First, Last}

// ParseAggregator validates a config-supplied aggregator name.
func ParseAggregator(name string) (Aggregator, error) {
	a := Aggregator(name)
	for _, v := range ValidAggregators {
		if v == a {
			return a, nil
		}
	}
	return "", errors.Errorf("value: unrecognized aggregator %q", name)
}

// Resolve reads the named statistic off a finalized Accumulator.
func (a Aggregator) Resolve(acc *Accumulator) (Number, error) {
	switch a {
	case Sum:
		return acc.Sum(), nil
	case Avg:
		return acc.Avg(), nil
	case Max:
		return acc.Max(), nil
	case Min:
		return acc.Min(), nil
	case Count:
		return acc.Count(), nil
	case First:
		return acc.First(), nil
	case Last:
		return acc.Last(), nil
	default:
		return Number{}, errors.Errorf("value: unrecognized aggregator %q", string(a))
	}
}
