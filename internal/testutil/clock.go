package testutil

import "sync"

// StepClock is a checker.Clock for tests that can be rewound, so one message
// sequence can be checked repeatedly with the same step numbers. It keeps
// every number it handed out.
type StepClock struct {
	mu     sync.Mutex
	start  int64
	issued []int64
}

// NewStepClock creates a clock whose first Next returns start+1.
func NewStepClock(start int64) *StepClock {
	return &StepClock{start: start}
}

// Next stamps one step.
func (c *StepClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.start + int64(len(c.issued)) + 1
	c.issued = append(c.issued, n)
	return n
}

// Issued returns the numbers handed out since the last Rewind, oldest first.
func (c *StepClock) Issued() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int64(nil), c.issued...)
}

// Rewind forgets every issued number.
func (c *StepClock) Rewind() {
	c.mu.Lock()
	c.issued = c.issued[:0]
	c.mu.Unlock()
}
