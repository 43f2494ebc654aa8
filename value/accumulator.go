package value

// Accumulator performs a single, non-windowed reduction over a whole
// series, the engine behind the summarizer node. It implements the numeric
// promotion and NaN policy rules shared by all seven summary statistics:
// sum, avg, min, max, count, first, last.
//
// A running accumulator starts integral. If any input point is floating,
// the accumulator promotes to floating and never reverts. sum/min/max/
// first/last are reported with the accumulator's current kind at
// finalization; count is always integral; avg is always floating.
type Accumulator struct {
	Infectious bool

	isFloat bool
	nanSeen bool

	total int64 // every input, including NaN
	valid int64 // non-NaN inputs

	sum            float64
	min, max       Number
	first, last    Number
	haveMinMax     bool
	haveFirstLast  bool
}

// NewAccumulator returns an empty Accumulator with the given NaN policy.
func NewAccumulator(infectious bool) *Accumulator {
	return &Accumulator{Infectious: infectious}
}

// Add folds one more input value into the accumulator.
//
// infectiousNan = false (default): NaN inputs are skipped entirely for
// sum/min/max/first/last and are not counted. infectiousNan = true: the
// first NaN seen poisons sum/min/max/first/last/avg; count still counts
// every input, NaN or not.
func (a *Accumulator) Add(v Number) {
	a.total++
	if v.IsNaN() {
		a.nanSeen = true
		return
	}
	if v.IsFloat() {
		a.isFloat = true
	}
	a.sum += v.Float64()
	a.valid++

	if !a.haveMinMax {
		a.min, a.max = v, v
		a.haveMinMax = true
	} else {
		if v.Float64() < a.min.Float64() {
			a.min = v
		}
		if v.Float64() > a.max.Float64() {
			a.max = v
		}
	}

	if !a.haveFirstLast {
		a.first = v
		a.haveFirstLast = true
	}
	a.last = v
}

// poisoned reports whether the infectious-NaN policy has already forced a
// NaN result.
func (a *Accumulator) poisoned() bool {
	return a.Infectious && a.nanSeen
}

// finalize reports v at the accumulator's current kind, or NaN if the
// infectious policy has poisoned the result.
func (a *Accumulator) finalize(v Number) Number {
	if a.poisoned() {
		return NaN()
	}
	if a.isFloat {
		return v.Promote()
	}
	return v
}

// Sum returns the running sum.
func (a *Accumulator) Sum() Number {
	if a.poisoned() {
		return NaN()
	}
	if a.isFloat {
		return Float(a.sum)
	}
	return Int(int64(a.sum))
}

// Avg returns the mean over the non-NaN subset; always floating.
func (a *Accumulator) Avg() Number {
	if a.poisoned() {
		return NaN()
	}
	if a.valid == 0 {
		return NaN()
	}
	return Float(a.sum / float64(a.valid))
}

// Min returns the smallest non-NaN value seen.
func (a *Accumulator) Min() Number { return a.finalize(a.min) }

// Max returns the largest non-NaN value seen.
func (a *Accumulator) Max() Number { return a.finalize(a.max) }

// First returns the value of the earliest input.
func (a *Accumulator) First() Number { return a.finalize(a.first) }

// Last returns the value of the most recent input.
func (a *Accumulator) Last() Number { return a.finalize(a.last) }

// Count returns the integral count: every input under the infectious
// policy, only the non-NaN subset otherwise.
func (a *Accumulator) Count() Number {
	if a.Infectious {
		return Int(a.total)
	}
	return Int(a.valid)
}

// Empty reports whether Add has never been called.
func (a *Accumulator) Empty() bool {
	return a.total == 0
}
