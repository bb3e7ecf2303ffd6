package tasks

import (
	"fmt"

	"github.com/vovakirdan/drivetest/internal/level"
)

// ReachSpeed completes once the vehicle reaches a target speed.
type ReachSpeed struct {
	base
	target float64 // m/s
}

// NewReachSpeed creates a reach_speed task.
func NewReachSpeed(points, target float64) (*ReachSpeed, error) {
	if target <= 0 {
		return nil, fmt.Errorf("speed must be positive, got %v", target)
	}
	t := &ReachSpeed{base: base{points: points}, target: target}
	t.self = t
	return t, nil
}

// Observe checks the current speed against the target.
func (t *ReachSpeed) Observe(tel level.Telemetry, _ float64) {
	if t.enabled && tel.Speed() >= t.target {
		t.complete()
	}
}

// Stop completes once the vehicle is below a speed threshold.
type Stop struct {
	base
	below float64
}

// NewStop creates a stop task.
func NewStop(points, below float64) (*Stop, error) {
	if below <= 0 {
		return nil, fmt.Errorf("below must be positive, got %v", below)
	}
	t := &Stop{base: base{points: points}, below: below}
	t.self = t
	return t, nil
}

// Observe checks whether the vehicle has stopped.
func (t *Stop) Observe(tel level.Telemetry, _ float64) {
	if t.enabled && tel.Speed() < t.below {
		t.complete()
	}
}

// HoldSpeed completes after the speed stays inside a band for a duration.
// Leaving the band restarts the count.
type HoldSpeed struct {
	base
	lo, hi  float64
	seconds float64

	holding bool
	since   float64
}

// NewHoldSpeed creates a hold_speed task.
func NewHoldSpeed(points, lo, hi, seconds float64) (*HoldSpeed, error) {
	if lo < 0 || hi <= lo {
		return nil, fmt.Errorf("invalid speed band [%v, %v]", lo, hi)
	}
	if seconds <= 0 {
		return nil, fmt.Errorf("seconds must be positive, got %v", seconds)
	}
	t := &HoldSpeed{base: base{points: points}, lo: lo, hi: hi, seconds: seconds}
	t.self = t
	return t, nil
}

// Enable starts the task with a fresh hold timer.
func (t *HoldSpeed) Enable() {
	t.enabled = true
	t.holding = false
}

// Held returns how long the speed has been inside the band as of now.
func (t *HoldSpeed) Held(now float64) float64 {
	if !t.holding {
		return 0
	}
	return now - t.since
}

// Observe tracks time spent inside the band.
func (t *HoldSpeed) Observe(tel level.Telemetry, now float64) {
	if !t.enabled {
		return
	}

	speed := tel.Speed()
	if speed < t.lo || speed > t.hi {
		t.holding = false
		return
	}

	if !t.holding {
		t.holding = true
		t.since = now
		return
	}

	if now-t.since >= t.seconds {
		t.complete()
	}
}
