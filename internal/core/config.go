// Package core holds the host-side primitives shared by the simulation and
// the terminal platform: runtime settings, input frames and clocks.
package core

// RuntimeConfig contains settings passed to the host when a run begins.
type RuntimeConfig struct {
	ScreenW  int // Screen width in characters
	ScreenH  int // Screen height in characters
	TickRate int // Simulation ticks per second (default 30)
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 30,
	}
}

// TickSeconds returns the duration of one simulation tick in seconds.
func (c RuntimeConfig) TickSeconds() float64 {
	if c.TickRate <= 0 {
		return 1.0 / 30.0
	}
	return 1.0 / float64(c.TickRate)
}
