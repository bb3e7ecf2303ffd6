package config

import (
	"fmt"
	"math"
)

// Validate checks the course for structural errors. Task kinds and their
// parameters are checked when the course builds its tasks.
func (c Course) Validate() error {
	if c.Settings.TickRate <= 0 || c.Settings.TickRate > MaxTickRate {
		return fmt.Errorf("settings: tick_rate must be between 1 and %d, got %d", MaxTickRate, c.Settings.TickRate)
	}
	if !positive(c.Settings.StopSpeed) {
		return fmt.Errorf("settings: stop_speed must be positive, got %v", c.Settings.StopSpeed)
	}
	if !nonNegative(c.Settings.PenaltyPerHarshBrake) {
		return fmt.Errorf("settings: penalty_per_harsh_brake must be a finite non-negative number, got %v", c.Settings.PenaltyPerHarshBrake)
	}

	v := c.Vehicle
	if !positive(v.Accel) || !positive(v.Brake) || !positive(v.MaxSpeed) {
		return fmt.Errorf("vehicle: accel, brake and max_speed must be positive")
	}
	if !nonNegative(v.Drag) || !nonNegative(v.HarshBrakeSpeed) {
		return fmt.Errorf("vehicle: drag and harsh_brake_speed cannot be negative")
	}

	if len(c.Levels) == 0 {
		return fmt.Errorf("at least one level is required")
	}
	for i, l := range c.Levels {
		if err := l.validate(); err != nil {
			return fmt.Errorf("level %d (%s): %w", i, l.Title, err)
		}
	}
	return nil
}

func (l LevelConfig) validate() error {
	if l.Title == "" {
		return fmt.Errorf("title is required")
	}
	if !positive(l.TimeLimit) {
		return fmt.Errorf("time_limit must be a positive number of seconds, got %v", l.TimeLimit)
	}
	if !nonNegative(l.MaxPoints) {
		return fmt.Errorf("max_points must be a finite non-negative number, got %v", l.MaxPoints)
	}

	prev := 0.0
	for i, b := range l.TimeBonuses {
		if !nonNegative(b.Bonus) {
			return fmt.Errorf("time_bonuses[%d]: bonus must be a finite non-negative number, got %v", i, b.Bonus)
		}
		if math.IsNaN(b.Threshold) || b.Threshold <= prev {
			return fmt.Errorf("time_bonuses[%d]: threshold must be greater than %v, got %v", i, prev, b.Threshold)
		}
		if math.IsInf(b.Threshold, 1) && i != len(l.TimeBonuses)-1 {
			return fmt.Errorf("time_bonuses[%d]: only the last window may be .inf", i)
		}
		prev = b.Threshold
	}

	for i, t := range l.Tasks {
		if t.Kind == "" {
			return fmt.Errorf("tasks[%d]: kind is required", i)
		}
		if !nonNegative(t.Points) {
			return fmt.Errorf("tasks[%d]: points must be a finite non-negative number, got %v", i, t.Points)
		}
	}
	return nil
}

// positive reports whether v is finite and greater than zero. NaN fails.
func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func nonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}
