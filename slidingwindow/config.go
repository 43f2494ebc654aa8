// Package slidingwindow implements the rolling-aggregate transform node:
// for each source point it maintains a trailing window of recent points
// and emits the aggregate over that window.
package slidingwindow

import (
	"github.com/pkg/errors"

	"github.com/tsquery-io/tsquery/qtime"
	"github.com/tsquery-io/tsquery/value"
)

// Kind is the node-kind name this package registers under.
const Kind = "sliding-window"

// DefaultRecomputeBound is the number of evictions the running sum
// accumulator tolerates before a full recomputation pass over the current
// window, guarding against floating-point drift on long-running series.
const DefaultRecomputeBound = 1024

// Config is the sliding-window node's decoded descriptor.
type Config struct {
	ID            string        `mapstructure:"id"`
	Window        qtime.Duration `mapstructure:"window"`
	Aggregator    string        `mapstructure:"aggregator"`
	InfectiousNaN bool          `mapstructure:"infectiousNan"`
}

// Validate checks Window is positive and Aggregator is recognized.
func (c *Config) Validate() error {
	if c.Window.Millis() <= 0 {
		return errors.New("slidingwindow: window must be a positive duration")
	}
	if _, err := value.ParseAggregator(c.Aggregator); err != nil {
		return err
	}
	return nil
}

func (c *Config) aggregator() value.Aggregator { return value.Aggregator(c.Aggregator) }
