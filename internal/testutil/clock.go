package testutil

import (
	"sync"
	"time"
)

// StepClock is a fake wall clock. Each call to Now returns the previous value
// advanced by a fixed step, starting at a fixed instant.
//
// Thread-safety: all methods are safe for concurrent use.
type StepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// Epoch is the first instant returned by a new StepClock.
var Epoch = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

// NewStepClock creates a clock starting at Epoch that advances by step.
func NewStepClock(step time.Duration) *StepClock {
	return &StepClock{now: Epoch, step: step}
}

// Now returns the current instant and advances the clock.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}
