// Package level implements the level run controller of an evaluation run:
// it sequences a level's tasks, accumulates score, tracks elapsed time
// against the limit and the time bonus schedule, and decides exactly once
// how the level ends and what the run does next.
//
// Everything outside that lifecycle is a collaborator reached through the
// small interfaces declared here: the HUD, vehicle telemetry, the course
// (level configuration provider) and the level-transition facade.
package level

import "math"

// Infinite is the threshold sentinel for a final bonus window that lasts
// until the level's time limit.
var Infinite = math.Inf(1)

// TimeBonus is one bonus window: finishing before Threshold seconds
// awards Bonus points.
type TimeBonus struct {
	Threshold float64
	Bonus     float64
}

// IsFinal reports whether the window runs until the level time limit.
func (b TimeBonus) IsFinal() bool {
	return math.IsInf(b.Threshold, 1)
}

// Info is the read-only configuration of a single level.
type Info struct {
	Title       string
	Description string
	MaxPoints   float64
	TimeLimit   float64     // Seconds
	TimeBonuses []TimeBonus // Ordered by threshold; empty means no schedule

	// IsRequired ends the run when the level finishes below MaxPoints.
	IsRequired bool

	// DoNotProceedUntilStopped defers finalization after the last task
	// until the vehicle has come to a stop.
	DoNotProceedUntilStopped bool
}

// LevelScore is the recorded outcome of one level instance.
type LevelScore struct {
	Score float64
	Time  float64 // Seconds, including penalties
}

// Task is one step of a level. Variants decide on their own when they are
// done and report it by calling CompleteTask on the Completer they were
// attached to. Implementations must be comparable (typically pointers).
// Points must be non-negative; negative or NaN points still complete the
// task but credit nothing and are logged at Warn.
type Task interface {
	Enable()
	Disable()
	Points() float64
}

// Completer receives task completion signals.
type Completer interface {
	CompleteTask(task Task) error
}

// Attacher is implemented by tasks that need a Completer to report to.
// The controller attaches itself to every such task when it is created.
type Attacher interface {
	Attach(c Completer)
}

// Observer is implemented by tasks that watch the vehicle. The active task
// is observed once per tick with the current telemetry and clock time.
type Observer interface {
	Observe(t Telemetry, now float64)
}

// Primer is implemented by tasks that snapshot telemetry when they become
// active. The controller calls Prime right after Enable.
type Primer interface {
	Prime(t Telemetry)
}

// HUD is the one-way display sink for level state.
type HUD interface {
	SetLevelInfo(index int, title, description string)
	UpdateScore(current, max float64)
	UpdateTime(elapsed, limit float64)
	SetTimeBonus(threshold, bonus float64, isFinal bool)
	SetMaxTime(limit float64)
}

// Telemetry exposes the vehicle state the controller cares about.
type Telemetry interface {
	Speed() float64
}

// Clock returns the current time in seconds.
type Clock interface {
	Now() float64
}

// Course provides level configuration by index.
type Course interface {
	LevelCount() int
	Level(index int) Info
}

// Transitioner is the level-transition facade. Exactly one of its methods
// is invoked when a level instance is finalized.
type Transitioner interface {
	FinishRun()
	AdvanceToNextLevel()
}
