package core

import "time"

// SimClock is a manually advanced clock measured in seconds.
// The host advances it once per tick, which keeps runs deterministic and
// lets a paused run stop time simply by not advancing.
type SimClock struct {
	now float64
}

// NewSimClock creates a clock starting at the given time in seconds.
func NewSimClock(start float64) *SimClock {
	return &SimClock{now: start}
}

// Now returns the current time in seconds.
func (c *SimClock) Now() float64 {
	return c.now
}

// Advance moves the clock forward by dt seconds. Negative steps are ignored.
func (c *SimClock) Advance(dt float64) {
	if dt > 0 {
		c.now += dt
	}
}

// WallClock reports seconds elapsed since it was created.
type WallClock struct {
	origin time.Time
}

// NewWallClock creates a wall clock anchored at the current instant.
func NewWallClock() *WallClock {
	return &WallClock{origin: time.Now()}
}

// Now returns seconds elapsed since the clock was created.
func (c *WallClock) Now() float64 {
	return time.Since(c.origin).Seconds()
}
