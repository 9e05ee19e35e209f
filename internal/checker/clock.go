package checker

import "sync/atomic"

// Clock stamps steps with sequence numbers.
// Implemented by LogicalClock and testutil.StepClock.
type Clock interface {
	Next() int64
}

// LogicalClock is a monotonic logical clock for step ordering.
//
// All steps are stamped with a strictly increasing seq number. Wall-clock time
// is never used for ordering, so a replay produces identical sequence numbers.
type LogicalClock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0. The first call to Next returns 1.
func NewClock() *LogicalClock {
	return &LogicalClock{}
}

// NewClockAt creates a clock starting at a specific sequence number.
// Used to continue numbering across several runs.
func NewClockAt(start int64) *LogicalClock {
	c := &LogicalClock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *LogicalClock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *LogicalClock) Current() int64 {
	return c.seq.Load()
}
