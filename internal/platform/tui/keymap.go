package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/drivetest/internal/core"
)

// KeyMap defines the key bindings for a run.
type KeyMap struct {
	Accelerate key.Binding
	Brake      key.Binding
	Skip       key.Binding
	GiveUp     key.Binding
	Pause      key.Binding
	Restart    key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Accelerate, k.Brake, k.Pause, k.Quit, k.Help}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Accelerate, k.Brake},
		{k.Skip, k.GiveUp, k.Pause},
		{k.Restart, k.Help, k.Quit},
	}
}

// DefaultKeyMap returns default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Accelerate: key.NewBinding(
			key.WithKeys("up", "w", "k"),
			key.WithHelp("↑/w", "accelerate"),
		),
		Brake: key.NewBinding(
			key.WithKeys("down", "s", "j", " "),
			key.WithHelp("↓/s/space", "brake"),
		),
		Skip: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "skip level"),
		),
		GiveUp: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "give up level"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p", "esc"),
			key.WithHelp("p", "pause"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart run"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// MapKey translates a key message to a run action.
func (k KeyMap) MapKey(msg tea.KeyMsg) core.Action {
	switch {
	case key.Matches(msg, k.Quit):
		return core.ActionQuit
	case key.Matches(msg, k.Accelerate):
		return core.ActionAccelerate
	case key.Matches(msg, k.Brake):
		return core.ActionBrake
	case key.Matches(msg, k.Skip):
		return core.ActionSkip
	case key.Matches(msg, k.Pause):
		return core.ActionPause
	case key.Matches(msg, k.Restart):
		return core.ActionConfirm
	}
	return core.ActionNone
}

// HeldInput turns key presses into held pedals. Terminals report no key
// releases, so a pedal stays down for a number of ticks after each press
// and auto-repeat keeps it there.
type HeldInput struct {
	holdTicks int
	remaining map[core.Action]int
	pending   core.InputFrame
}

// NewHeldInput creates held input that keeps pedals down for holdTicks.
func NewHeldInput(holdTicks int) *HeldInput {
	if holdTicks < 1 {
		holdTicks = 1
	}
	return &HeldInput{
		holdTicks: holdTicks,
		remaining: make(map[core.Action]int),
		pending:   core.NewInputFrame(),
	}
}

// Press records a key action for the next tick.
func (h *HeldInput) Press(a core.Action) {
	switch a {
	case core.ActionAccelerate:
		delete(h.remaining, core.ActionBrake)
		h.remaining[a] = h.holdTicks
	case core.ActionBrake:
		delete(h.remaining, core.ActionAccelerate)
		h.remaining[a] = h.holdTicks
	case core.ActionNone:
	default:
		h.pending.Set(a)
	}
}

// Frame returns the input for this tick and ages held pedals.
func (h *HeldInput) Frame() core.InputFrame {
	frame := h.pending
	h.pending = core.NewInputFrame()
	for a, n := range h.remaining {
		frame.Set(a)
		if n <= 1 {
			delete(h.remaining, a)
		} else {
			h.remaining[a] = n - 1
		}
	}
	return frame
}

// Release drops all held pedals and pending actions.
func (h *HeldInput) Release() {
	clear(h.remaining)
	h.pending = core.NewInputFrame()
}
