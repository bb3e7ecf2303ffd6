package tasks

import (
	"github.com/vovakirdan/drivetest/internal/level"
	"github.com/vovakirdan/drivetest/internal/registry"
)

// Task kinds as written in course files.
const (
	KindReachSpeed    = "reach_speed"
	KindStop          = "stop"
	KindDriveDistance = "drive_distance"
	KindHoldSpeed     = "hold_speed"
	KindCheckpoint    = "checkpoint"
)

// DefaultCheckpointTolerance is used when a checkpoint omits tolerance.
const DefaultCheckpointTolerance = 2.0

func init() {
	registry.Register(registry.KindInfo{
		Kind:        KindReachSpeed,
		Description: "Accelerate to at least speed m/s",
		Params:      []string{"speed"},
	}, func(points float64, p registry.Params) (level.Task, error) {
		speed, err := p.Require("speed")
		if err != nil {
			return nil, err
		}
		return NewReachSpeed(points, speed)
	})

	registry.Register(registry.KindInfo{
		Kind:        KindStop,
		Description: "Bring the vehicle below `below` m/s",
		Params:      []string{"below"},
	}, func(points float64, p registry.Params) (level.Task, error) {
		return NewStop(points, p.Get("below", level.DefaultStopSpeed))
	})

	registry.Register(registry.KindInfo{
		Kind:        KindDriveDistance,
		Description: "Cover distance meters",
		Params:      []string{"distance"},
	}, func(points float64, p registry.Params) (level.Task, error) {
		distance, err := p.Require("distance")
		if err != nil {
			return nil, err
		}
		return NewDriveDistance(points, distance)
	})

	registry.Register(registry.KindInfo{
		Kind:        KindHoldSpeed,
		Description: "Keep speed between min and max for seconds",
		Params:      []string{"min", "max", "seconds"},
	}, func(points float64, p registry.Params) (level.Task, error) {
		lo, err := p.Require("min")
		if err != nil {
			return nil, err
		}
		hi, err := p.Require("max")
		if err != nil {
			return nil, err
		}
		seconds, err := p.Require("seconds")
		if err != nil {
			return nil, err
		}
		return NewHoldSpeed(points, lo, hi, seconds)
	})

	registry.Register(registry.KindInfo{
		Kind:        KindCheckpoint,
		Description: "Reach position within tolerance meters",
		Params:      []string{"position", "tolerance"},
	}, func(points float64, p registry.Params) (level.Task, error) {
		pos, err := p.Require("position")
		if err != nil {
			return nil, err
		}
		return NewCheckpoint(points, pos, p.Get("tolerance", DefaultCheckpointTolerance))
	})
}
