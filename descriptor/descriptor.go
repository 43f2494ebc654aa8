// Package descriptor decodes the loosely-typed map[string]interface{}
// configuration a query parser (out of scope) hands the core into a
// node's own typed config struct, the same job
// influxdata-kapacitor's service configs do with mapstructure against
// parsed TOML.
package descriptor

import (
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/tsquery-io/tsquery/qtime"
)

var durationType = reflect.TypeOf(qtime.Duration{})

// Decode populates out (a pointer to a node config struct) from raw, a
// descriptor map such as a JSON/YAML decoder would produce. A "window"
// field that is supplied as a duration string ("5m", "1h", "2d") is
// recognized via DurationHookFunc and converted to a qtime.Duration,
// matching the same "window" field spec.md §6 defines for the
// sliding-window node's descriptor.
func Decode(raw map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(DurationHookFunc()),
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      false,
	})
	if err != nil {
		return errors.Wrap(err, "descriptor: building decoder")
	}
	if err := decoder.Decode(raw); err != nil {
		return errors.Wrap(err, "descriptor: decoding")
	}
	return nil
}

// DurationHookFunc converts a string value into a qtime.Duration when the
// decode target field is of that type, so a descriptor's "window": "5m"
// decodes straight into a typed config without a manual post-decode step.
func DurationHookFunc() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != durationType {
			return data, nil
		}
		s, ok := data.(string)
		if !ok {
			return data, nil
		}
		d, err := qtime.ParseDuration(s)
		if err != nil {
			return nil, errors.Wrapf(err, "descriptor: decoding window duration %q", s)
		}
		return d, nil
	}
}
