// Package vehicle implements a deterministic one-dimensional driving model.
// The vehicle is stepped once per tick from platform input and exposes the
// telemetry tasks observe.
package vehicle

import "github.com/vovakirdan/drivetest/internal/core"

// Params tunes the vehicle model. Units are meters and seconds.
type Params struct {
	Accel           float64 // Acceleration while the throttle is held, m/s²
	Brake           float64 // Deceleration while braking, m/s²
	Drag            float64 // Coasting deceleration, m/s²
	MaxSpeed        float64 // Top speed, m/s
	HarshBrakeSpeed float64 // Braking that starts above this speed counts as harsh; 0 disables
}

// DefaultParams returns a small car tuned for a terminal course.
func DefaultParams() Params {
	return Params{
		Accel:           3.0,
		Brake:           8.0,
		Drag:            0.6,
		MaxSpeed:        30.0,
		HarshBrakeSpeed: 20.0,
	}
}

// Vehicle is the simulated car. It implements level.Telemetry.
type Vehicle struct {
	params Params

	speed    float64
	position float64
	distance float64

	braking     bool
	harshBrakes int
}

// New creates a stationary vehicle at position 0.
func New(p Params) *Vehicle {
	return &Vehicle{params: p}
}

// Reset puts the vehicle back at the start, stationary.
func (v *Vehicle) Reset() {
	v.speed = 0
	v.position = 0
	v.distance = 0
	v.braking = false
	v.harshBrakes = 0
}

// Step advances the model by dt seconds under the given input.
// Brake wins when both pedals are pressed.
func (v *Vehicle) Step(in core.InputFrame, dt float64) {
	if dt <= 0 {
		return
	}

	braking := in.Has(core.ActionBrake)
	switch {
	case braking:
		if !v.braking && v.params.HarshBrakeSpeed > 0 && v.speed > v.params.HarshBrakeSpeed {
			v.harshBrakes++
		}
		v.speed -= v.params.Brake * dt
	case in.Has(core.ActionAccelerate):
		v.speed += v.params.Accel * dt
	default:
		v.speed -= v.params.Drag * dt
	}
	v.braking = braking

	if v.speed < 0 {
		v.speed = 0
	}
	if v.params.MaxSpeed > 0 && v.speed > v.params.MaxSpeed {
		v.speed = v.params.MaxSpeed
	}

	moved := v.speed * dt
	v.position += moved
	v.distance += moved
}

// Speed returns the current speed in m/s.
func (v *Vehicle) Speed() float64 { return v.speed }

// Position returns meters from the start line.
func (v *Vehicle) Position() float64 { return v.position }

// Distance returns meters travelled since the last reset.
func (v *Vehicle) Distance() float64 { return v.distance }

// HarshBrakes returns how many times braking started above HarshBrakeSpeed.
func (v *Vehicle) HarshBrakes() int { return v.harshBrakes }

// Params returns the model parameters.
func (v *Vehicle) Params() Params { return v.params }
