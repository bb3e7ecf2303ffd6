package config

import (
	_ "embed"

	"github.com/vovakirdan/drivetest/internal/level"
	"github.com/vovakirdan/drivetest/internal/vehicle"
)

//go:embed defaults/course.yaml
var defaultCourseYAML []byte

// Default run settings.
const (
	DefaultTickRate = 30
	MaxTickRate     = 240
)

// DefaultSettings returns the run settings used when a course omits them.
func DefaultSettings() Settings {
	return Settings{
		TickRate:  DefaultTickRate,
		StopSpeed: level.DefaultStopSpeed,
	}
}

// DefaultVehicle returns the vehicle used when a course omits it.
func DefaultVehicle() VehicleSettings {
	p := vehicle.DefaultParams()
	return VehicleSettings{
		Accel:           p.Accel,
		Brake:           p.Brake,
		Drag:            p.Drag,
		MaxSpeed:        p.MaxSpeed,
		HarshBrakeSpeed: p.HarshBrakeSpeed,
	}
}

// DefaultYAML returns the embedded default course.
func DefaultYAML() []byte {
	return defaultCourseYAML
}

// applyDefaults fills zero values with defaults.
func applyDefaults(c *Course) {
	if c.Name == "" {
		c.Name = "default"
	}

	d := DefaultSettings()
	if c.Settings.TickRate == 0 {
		c.Settings.TickRate = d.TickRate
	}
	if c.Settings.StopSpeed == 0 {
		c.Settings.StopSpeed = d.StopSpeed
	}

	v := DefaultVehicle()
	if c.Vehicle.Accel == 0 {
		c.Vehicle.Accel = v.Accel
	}
	if c.Vehicle.Brake == 0 {
		c.Vehicle.Brake = v.Brake
	}
	if c.Vehicle.Drag == 0 {
		c.Vehicle.Drag = v.Drag
	}
	if c.Vehicle.MaxSpeed == 0 {
		c.Vehicle.MaxSpeed = v.MaxSpeed
	}
	if c.Vehicle.HarshBrakeSpeed == 0 {
		c.Vehicle.HarshBrakeSpeed = v.HarshBrakeSpeed
	}

	for i := range c.Levels {
		l := &c.Levels[i]
		if l.MaxPoints == 0 {
			l.MaxPoints = l.TaskPoints()
		}
	}
}
