// Package rollup defines the RollupConfig external collaborator: the
// mapping between human-readable aggregation names (e.g. "sum", "avg") and
// the compact numeric summary-ids carried inside NumericSummary points.
package rollup

// Config maps between summary names and the small integer ids a
// NumericSummary point keys its values by. It is immutable for the
// lifetime of the Result that references it.
type Config interface {
	// SummaryID resolves a summary name to its id, if the config defines one.
	SummaryID(name string) (int, bool)
	// SummaryName resolves a summary id back to its name, if defined.
	SummaryName(id int) (string, bool)
}

// DefaultConfig is a simple bidirectional Config built with a fluent
// builder, mirroring DefaultRollupConfig.newBuilder() in the original
// implementation this package's semantics are drawn from.
type DefaultConfig struct {
	byName map[string]int
	byID   map[int]string
}

// NewDefaultConfig returns an empty, mutable-until-built DefaultConfig.
func NewDefaultConfig() *DefaultConfig {
	return &DefaultConfig{
		byName: make(map[string]int),
		byID:   make(map[int]string),
	}
}

// AddAggregationID registers a name <-> id pair and returns the config for
// chaining, the Go equivalent of the Java builder's addAggregationId.
func (c *DefaultConfig) AddAggregationID(name string, id int) *DefaultConfig {
	c.byName[name] = id
	c.byID[id] = name
	return c
}

// SummaryID implements Config.
func (c *DefaultConfig) SummaryID(name string) (int, bool) {
	id, ok := c.byName[name]
	return id, ok
}

// SummaryName implements Config.
func (c *DefaultConfig) SummaryName(id int) (string, bool) {
	name, ok := c.byID[id]
	return name, ok
}

// Sample returns the RollupConfig used throughout spec scenarios S1-S5:
// sum=0, count=1, max=2, min=3, avg=5 (4 is deliberately left unassigned).
func Sample() *DefaultConfig {
	return NewDefaultConfig().
		AddAggregationID("sum", 0).
		AddAggregationID("count", 1).
		AddAggregationID("max", 2).
		AddAggregationID("min", 3).
		AddAggregationID("avg", 5)
}
