// Package summarizer implements the whole-series-reduction node: it
// reduces each input time-series to a single NumericSummary point carrying
// one entry per requested summary statistic.
package summarizer

import (
	"github.com/pkg/errors"

	"github.com/tsquery-io/tsquery/value"
)

// Kind is the node-kind name this package registers under.
const Kind = "summarizer"

// Config is the summarizer node's decoded descriptor: which statistics to
// compute and the NaN policy to apply while computing them.
type Config struct {
	ID            string   `mapstructure:"id"`
	Summaries     []string `mapstructure:"summaries"`
	InfectiousNaN bool     `mapstructure:"infectiousNan"`
}

// Validate checks that Summaries names are all recognized aggregators and
// that at least one was requested.
func (c *Config) Validate() error {
	if len(c.Summaries) == 0 {
		return errors.New("summarizer: summaries must not be empty")
	}
	for _, name := range c.Summaries {
		if _, err := value.ParseAggregator(name); err != nil {
			return err
		}
	}
	return nil
}

// aggregators parses Summaries into value.Aggregators, assuming Validate
// already succeeded.
func (c *Config) aggregators() []value.Aggregator {
	out := make([]value.Aggregator, len(c.Summaries))
	for i, name := range c.Summaries {
		out[i] = value.Aggregator(name)
	}
	return out
}
