package slidingwindow

import (
	"github.com/tsquery-io/tsquery/qtime"
	"github.com/tsquery-io/tsquery/value"
)

// entry is one (timestamp, value) pair currently held in a window.
type entry struct {
	ts qtime.TimeStamp
	v  value.Number
}

// ringBuffer is a purpose-built growable ring buffer holding the points
// currently inside a sliding window, adapted from
// influxdata-kapacitor's windowBuffer (window.go) to the tagged Number
// representation instead of *models.Point, and without its mutex since a
// window's accumulator is owned by exactly one iterator.
type ringBuffer struct {
	buf         []entry
	start, stop int
	size        int
}

// insert appends e at the tail, growing the backing array geometrically
// when full.
func (b *ringBuffer) insert(e entry) {
	if b.size == cap(b.buf) {
		c := 2 * (b.size + 1)
		w := make([]entry, b.size+1, c)
		switch {
		case b.size == 0:
		case b.stop > b.start:
			copy(w, b.buf[b.start:b.stop])
		default:
			n := copy(w, b.buf[b.start:])
			copy(w[n:], b.buf[:b.stop])
		}
		b.buf = w
		b.start = 0
		b.stop = b.size
	}

	if len(b.buf) == cap(b.buf) && b.stop == len(b.buf) {
		b.stop = 0
	}

	if b.stop == len(b.buf) {
		b.buf = append(b.buf, e)
	} else {
		b.buf[b.stop] = e
	}
	b.size++
	b.stop++
}

// evictWhile removes entries from the head while pred holds, invoking
// onEvict for each removed entry.
func (b *ringBuffer) evictWhile(pred func(entry) bool, onEvict func(entry)) {
	for b.size > 0 {
		e := b.buf[b.start]
		if !pred(e) {
			break
		}
		onEvict(e)
		b.start++
		if b.start == len(b.buf) {
			b.start = 0
		}
		b.size--
	}
}

func (b *ringBuffer) len() int { return b.size }

// at returns the i-th entry in insertion order (0 is the oldest still
// present, len()-1 is the newest).
func (b *ringBuffer) at(i int) entry {
	idx := b.start + i
	if idx >= len(b.buf) {
		idx -= len(b.buf)
	}
	return b.buf[idx]
}

// monotonicDeque maintains the candidate set for a running window min or
// max in amortized O(1) per step: pushing a new entry discards every
// previously pushed entry the new one dominates (per keep), so the front
// of the deque is always the current window's extremum. Grounded on the
// same sliding-window-minimum deque technique as
// grafana-mimir's streamingpromql ring buffer, generalized from indices
// to timestamped Numbers.
type monotonicDeque struct {
	entries []entry
	keep    func(newer, older value.Number) bool
}

func newMinDeque() *monotonicDeque {
	return &monotonicDeque{keep: func(newer, older value.Number) bool { return newer.Float64() > older.Float64() }}
}

func newMaxDeque() *monotonicDeque {
	return &monotonicDeque{keep: func(newer, older value.Number) bool { return newer.Float64() < older.Float64() }}
}

// push admits e, discarding from the back every entry e dominates.
func (d *monotonicDeque) push(e entry) {
	for len(d.entries) > 0 && !d.keep(e.v, d.entries[len(d.entries)-1].v) {
		d.entries = d.entries[:len(d.entries)-1]
	}
	d.entries = append(d.entries, e)
}

// evictWhile discards entries from the front while pred holds, mirroring
// the main ringBuffer's eviction so the deque never outlives the window.
func (d *monotonicDeque) evictWhile(pred func(entry) bool) {
	i := 0
	for i < len(d.entries) && pred(d.entries[i]) {
		i++
	}
	d.entries = d.entries[i:]
}

// front returns the current extremum, if any entry remains.
func (d *monotonicDeque) front() (entry, bool) {
	if len(d.entries) == 0 {
		return entry{}, false
	}
	return d.entries[0], true
}
