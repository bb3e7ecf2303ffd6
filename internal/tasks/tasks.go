// Package tasks implements the task variants a course can put in a level.
// Every variant watches vehicle telemetry while it is enabled and reports
// itself complete to the level it was attached to.
package tasks

import (
	"github.com/vovakirdan/drivetest/internal/level"
)

// Odometer is the optional telemetry needed by position-based tasks.
type Odometer interface {
	Position() float64 // Meters along the track
	Distance() float64 // Meters travelled in total
}

// base carries the bookkeeping shared by all variants.
type base struct {
	points    float64
	enabled   bool
	completer level.Completer
	self      level.Task // The embedding variant, passed back on completion
}

// Points returns the points awarded for completing the task.
func (b *base) Points() float64 {
	return b.points
}

// Attach sets the level the task reports completion to.
func (b *base) Attach(c level.Completer) {
	b.completer = c
}

// Enabled reports whether the task is currently being attempted.
func (b *base) Enabled() bool {
	return b.enabled
}

func (b *base) Enable()  { b.enabled = true }
func (b *base) Disable() { b.enabled = false }

// complete signals completion once. The level disables the task on success.
func (b *base) complete() {
	if !b.enabled || b.completer == nil {
		return
	}
	b.completer.CompleteTask(b.self) //nolint:errcheck // Level logs rejections
}
