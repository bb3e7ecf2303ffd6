package tasks

import (
	"fmt"
	"math"

	"github.com/vovakirdan/drivetest/internal/level"
)

// DriveDistance completes after the vehicle covers a distance measured from
// the odometer reading when it became active.
type DriveDistance struct {
	base
	distance float64

	started bool
	start   float64
}

// NewDriveDistance creates a drive_distance task.
func NewDriveDistance(points, distance float64) (*DriveDistance, error) {
	if distance <= 0 {
		return nil, fmt.Errorf("distance must be positive, got %v", distance)
	}
	t := &DriveDistance{base: base{points: points}, distance: distance}
	t.self = t
	return t, nil
}

// Enable starts the task and clears the measured origin.
func (t *DriveDistance) Enable() {
	t.enabled = true
	t.started = false
}

// Prime records the odometer origin. Without an odometer the origin is
// taken at the first observation instead.
func (t *DriveDistance) Prime(tel level.Telemetry) {
	if odo, ok := tel.(Odometer); ok && t.enabled {
		t.started = true
		t.start = odo.Distance()
	}
}

// Observe measures progress. Telemetry without an odometer never completes.
func (t *DriveDistance) Observe(tel level.Telemetry, _ float64) {
	odo, ok := tel.(Odometer)
	if !t.enabled || !ok {
		return
	}

	if !t.started {
		t.started = true
		t.start = odo.Distance()
	}
	if odo.Distance()-t.start >= t.distance {
		t.complete()
	}
}

// Checkpoint completes when the vehicle is within tolerance of a position.
type Checkpoint struct {
	base
	position  float64
	tolerance float64
}

// NewCheckpoint creates a checkpoint task.
func NewCheckpoint(points, position, tolerance float64) (*Checkpoint, error) {
	if tolerance <= 0 {
		return nil, fmt.Errorf("tolerance must be positive, got %v", tolerance)
	}
	t := &Checkpoint{base: base{points: points}, position: position, tolerance: tolerance}
	t.self = t
	return t, nil
}

// Observe checks the vehicle position against the checkpoint.
func (t *Checkpoint) Observe(tel level.Telemetry, _ float64) {
	odo, ok := tel.(Odometer)
	if !t.enabled || !ok {
		return
	}
	if math.Abs(odo.Position()-t.position) <= t.tolerance {
		t.complete()
	}
}
