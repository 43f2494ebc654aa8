package qtime

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Unit is one of the duration units a TimeStamp addition or a sliding-window
// size can be expressed in.
type Unit int

const (
	UnitMillis Unit = iota
	UnitSeconds
	UnitMinutes
	UnitHours
	UnitDays
)

func (u Unit) String() string {
	switch u {
	case UnitMillis:
		return "ms"
	case UnitSeconds:
		return "s"
	case UnitMinutes:
		return "m"
	case UnitHours:
		return "h"
	case UnitDays:
		return "d"
	default:
		return "unknown"
	}
}

// Duration is an (amount, unit) pair, e.g. (5, UnitMinutes) for "5m".
type Duration struct {
	Amount int64
	Unit   Unit
}

// Millis converts the duration to milliseconds.
func (d Duration) Millis() int64 {
	switch d.Unit {
	case UnitMillis:
		return d.Amount
	case UnitSeconds:
		return d.Amount * 1000
	case UnitMinutes:
		return d.Amount * 60 * 1000
	case UnitHours:
		return d.Amount * 60 * 60 * 1000
	case UnitDays:
		return d.Amount * 24 * 60 * 60 * 1000
	default:
		return 0
	}
}

// AsTimeDuration converts to a standard library time.Duration.
func (d Duration) AsTimeDuration() time.Duration {
	return time.Duration(d.Millis()) * time.Millisecond
}

// ParseDuration parses strings like "5m", "1h", "30s", "2d" into a Duration.
// The unit suffixes ms/s/m/h/d follow the same convention
// influxdata-kapacitor's configuration loader uses for time.ParseDuration
// values, extended with "d" for calendar days since the standard library
// does not support it.
func ParseDuration(s string) (Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Duration{}, errors.New("qtime: empty duration string")
	}

	if strings.HasSuffix(s, "ms") {
		n, err := strconv.ParseInt(strings.TrimSuffix(s, "ms"), 10, 64)
		if err != nil {
			return Duration{}, errors.Wrapf(err, "qtime: invalid duration %q", s)
		}
		return Duration{Amount: n, Unit: UnitMillis}, nil
	}

	suffix := s[len(s)-1:]
	amountStr := s[:len(s)-1]
	amount, err := strconv.ParseInt(amountStr, 10, 64)
	if err != nil {
		return Duration{}, errors.Wrapf(err, "qtime: invalid duration %q", s)
	}

	switch suffix {
	case "s":
		return Duration{Amount: amount, Unit: UnitSeconds}, nil
	case "m":
		return Duration{Amount: amount, Unit: UnitMinutes}, nil
	case "h":
		return Duration{Amount: amount, Unit: UnitHours}, nil
	case "d":
		return Duration{Amount: amount, Unit: UnitDays}, nil
	default:
		return Duration{}, errors.Errorf("qtime: unrecognized duration unit in %q", s)
	}
}

func (d Duration) String() string {
	return strconv.FormatInt(d.Amount, 10) + d.Unit.String()
}
