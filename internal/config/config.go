// Package config provides YAML-based course configuration loading for
// evaluation runs: run settings, the vehicle model and the ordered levels
// with their tasks and time bonus schedules.
package config

import (
	"github.com/vovakirdan/drivetest/internal/level"
	"github.com/vovakirdan/drivetest/internal/vehicle"
)

// Course is a complete course file.
type Course struct {
	Name     string          `yaml:"name"`
	Settings Settings        `yaml:"settings"`
	Vehicle  VehicleSettings `yaml:"vehicle"`
	Levels   []LevelConfig   `yaml:"levels"`
}

// Settings defines run-wide parameters.
type Settings struct {
	TickRate             int     `yaml:"tick_rate"`               // Ticks per second
	StopSpeed            float64 `yaml:"stop_speed"`              // m/s below which the vehicle counts as stopped
	PenaltyPerHarshBrake float64 `yaml:"penalty_per_harsh_brake"` // Seconds added to level time per harsh brake
}

// VehicleSettings defines the simulated car.
type VehicleSettings struct {
	Accel           float64 `yaml:"accel"`
	Brake           float64 `yaml:"brake"`
	Drag            float64 `yaml:"drag"`
	MaxSpeed        float64 `yaml:"max_speed"`
	HarshBrakeSpeed float64 `yaml:"harsh_brake_speed"`
}

// LevelConfig defines one level.
type LevelConfig struct {
	Title       string        `yaml:"title"`
	Description string        `yaml:"description"`
	MaxPoints   float64       `yaml:"max_points"` // Defaults to the sum of task points
	TimeLimit   float64       `yaml:"time_limit"` // Seconds
	TimeBonuses []BonusConfig `yaml:"time_bonuses"`
	Required    bool          `yaml:"required"`
	WaitForStop bool          `yaml:"wait_for_stop"`
	Tasks       []TaskConfig  `yaml:"tasks"`
}

// BonusConfig is one time bonus window. Threshold may be .inf for a final
// window that lasts until the time limit.
type BonusConfig struct {
	Threshold float64 `yaml:"threshold"`
	Bonus     float64 `yaml:"bonus"`
}

// TaskConfig names a task kind and its parameters.
type TaskConfig struct {
	Kind   string             `yaml:"kind"`
	Points float64            `yaml:"points"`
	Params map[string]float64 `yaml:"params"`
}

// Info converts the level to the controller's read-only configuration.
func (l LevelConfig) Info() level.Info {
	bonuses := make([]level.TimeBonus, len(l.TimeBonuses))
	for i, b := range l.TimeBonuses {
		bonuses[i] = level.TimeBonus{Threshold: b.Threshold, Bonus: b.Bonus}
	}
	return level.Info{
		Title:                    l.Title,
		Description:              l.Description,
		MaxPoints:                l.MaxPoints,
		TimeLimit:                l.TimeLimit,
		TimeBonuses:              bonuses,
		IsRequired:               l.Required,
		DoNotProceedUntilStopped: l.WaitForStop,
	}
}

// TaskPoints returns the sum of the level's task points.
func (l LevelConfig) TaskPoints() float64 {
	var sum float64
	for _, t := range l.Tasks {
		sum += t.Points
	}
	return sum
}

// Params converts the vehicle settings to model parameters.
func (v VehicleSettings) Params() vehicle.Params {
	return vehicle.Params{
		Accel:           v.Accel,
		Brake:           v.Brake,
		Drag:            v.Drag,
		MaxSpeed:        v.MaxSpeed,
		HarshBrakeSpeed: v.HarshBrakeSpeed,
	}
}
