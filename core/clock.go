package core

import (
	"time"
)

// Clock reports time elapsed since the render core started.
type Clock interface {
	Now() time.Duration
}

type wallClock struct {
	start time.Time
}

// NewWallClock returns a Clock backed by the monotonic wall clock.
func NewWallClock() Clock {
	return &wallClock{start: time.Now()}
}

func (c *wallClock) Now() time.Duration {
	return time.Since(c.start)
}

// StepClock advances by a fixed Step every time Now is called.
// Useful for headless runs and tests.
type StepClock struct {
	Step    time.Duration
	Current time.Duration
}

func (c *StepClock) Now() time.Duration {
	c.Current += c.Step
	return c.Current
}

// Timer for profiling.
// Usage :
//
//	{
//		timer := NewProfTimer()
//		defer func() { observe(timer.Elapsed()) }()
//	}
type ProfTimer struct {
	Start time.Time
}

func NewProfTimer() ProfTimer {
	return ProfTimer{Start: time.Now()}
}

func (p ProfTimer) Elapsed() time.Duration {
	return time.Since(p.Start)
}
