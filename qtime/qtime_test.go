package qtime_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsquery-io/tsquery/qtime"
)

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in   string
		want qtime.Duration
	}{
		{"5m", qtime.Duration{Amount: 5, Unit: qtime.UnitMinutes}},
		{"1h", qtime.Duration{Amount: 1, Unit: qtime.UnitHours}},
		{"30s", qtime.Duration{Amount: 30, Unit: qtime.UnitSeconds}},
		{"2d", qtime.Duration{Amount: 2, Unit: qtime.UnitDays}},
		{"100ms", qtime.Duration{Amount: 100, Unit: qtime.UnitMillis}},
	}
	for _, c := range cases {
		got, err := qtime.ParseDuration(c.in)
		require.NoError(t, err)
		assert.Equal(t, c.want, got)
	}
}

func TestParseDurationInvalid(t *testing.T) {
	_, err := qtime.ParseDuration("")
	assert.Error(t, err)
	_, err = qtime.ParseDuration("5x")
	assert.Error(t, err)
}

func TestDurationMillisAndTimeDuration(t *testing.T) {
	d := qtime.Duration{Amount: 5, Unit: qtime.UnitMinutes}
	assert.Equal(t, int64(5*60*1000), d.Millis())
	assert.Equal(t, 5*time.Minute, d.AsTimeDuration())
}

func TestTimeStampArithmetic(t *testing.T) {
	ts := qtime.FromSeconds(0)
	later := ts.Add(qtime.Duration{Amount: 60, Unit: qtime.UnitSeconds})
	assert.Equal(t, int64(60), later.Epoch())
	assert.True(t, later.After(ts))
	assert.True(t, ts.Before(later))
}

func TestTimeSpecificationAt(t *testing.T) {
	spec := qtime.NewTimeSpecification(
		qtime.FromSeconds(0),
		qtime.FromSeconds(240),
		qtime.Duration{Amount: 60, Unit: qtime.UnitSeconds},
		nil,
	)
	assert.Equal(t, int64(0), spec.At(0).Epoch())
	assert.Equal(t, int64(120), spec.At(2).Epoch())

	idx, ok := spec.IndexOf(qtime.FromSeconds(1))
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestTimeSpecificationValidateRequiresInterval(t *testing.T) {
	spec := qtime.TimeSpecification{}
	assert.Error(t, spec.Validate())
}
