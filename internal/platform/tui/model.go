package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/vovakirdan/drivetest/internal/config"
	"github.com/vovakirdan/drivetest/internal/core"
)

// pedalHold is how long a pedal stays down after a key press. It only has
// to bridge the gap between terminal key repeats.
const pedalHold = 550 * time.Millisecond

// Model is the Bubble Tea model for driving a course.
type Model struct {
	runner   *Runner
	keys     KeyMap
	help     help.Model
	input    *HeldInput
	summary  SummaryModel
	config   core.RuntimeConfig
	quitting bool
	inReview bool // Summary is showing
	err      error
}

// NewModel creates a model for a runner. The runner must already be started.
func NewModel(r *Runner, cfg core.RuntimeConfig) Model {
	cfg.TickRate = r.TickRate()
	hold := int(pedalHold.Seconds() * float64(cfg.TickRate))

	return Model{
		runner: r,
		keys:   DefaultKeyMap(),
		help:   help.New(),
		input:  NewHeldInput(hold),
		config: cfg,
	}
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.help.Width = msg.Width
		if m.inReview {
			m.summary = NewSummaryModel(m.runner, m.config.ScreenW, m.config.ScreenH)
		}
		return m, nil

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.runner.Abort()
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case msg.String() == "ctrl+s":
		m.saveScreenshot()
		return m, nil
	}

	if m.inReview {
		if key.Matches(msg, m.keys.Restart) {
			if err := m.runner.Restart(); err != nil {
				m.err = err
				return m, nil
			}
			m.inReview = false
			m.input.Release()
			return m, tickCmd(m.config.TickRate)
		}
		var cmd tea.Cmd
		m.summary, cmd = m.summary.Update(msg)
		return m, cmd
	}

	if key.Matches(msg, m.keys.GiveUp) {
		m.runner.GiveUp()
		m.input.Release()
		return m.checkFinished(), nil
	}

	m.input.Press(m.keys.MapKey(msg))
	return m, nil
}

// handleTick processes simulation ticks.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.inReview {
		return m, nil
	}

	m.runner.Step(m.input.Frame())

	m = m.checkFinished()
	if m.inReview {
		return m, nil
	}
	return m, tickCmd(m.config.TickRate)
}

// checkFinished switches to the summary once the run has ended.
func (m Model) checkFinished() Model {
	if m.runner.Finished() && !m.inReview {
		m.inReview = true
		m.input.Release()
		m.summary = NewSummaryModel(m.runner, m.config.ScreenW, m.config.ScreenH)
	}
	return m
}

// saveScreenshot saves the current view to a file.
func (m *Model) saveScreenshot() {
	dir := config.UserPath("screenshots")
	if dir == "" {
		return
	}
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.txt", m.runner.Course().Name(), timestamp)
	path := filepath.Join(dir, filename)

	//nolint:errcheck // Best-effort save, run continues regardless
	os.WriteFile(path, []byte(ansi.Strip(m.View())), 0o600)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	if m.inReview {
		b.WriteString(m.summary.View())
	} else {
		b.WriteString(m.runner.HUD().View(m.config.ScreenW))
		if m.runner.Paused() {
			b.WriteString("\n")
			b.WriteString(pausedStyle.Render("PAUSED"))
		}
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(warnStyle.Render(m.err.Error()))
	}

	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))

	if m.config.ScreenW > 0 && m.config.ScreenH > 0 {
		return lipgloss.Place(m.config.ScreenW, m.config.ScreenH, lipgloss.Center, lipgloss.Center, b.String())
	}
	return b.String()
}

// Runner returns the model's runner.
func (m Model) Runner() *Runner {
	return m.runner
}

// InReview reports whether the summary screen is showing.
func (m Model) InReview() bool {
	return m.inReview
}

// Run starts the runner and the Bubble Tea program.
func Run(r *Runner, cfg core.RuntimeConfig) error {
	if err := r.Start(); err != nil {
		return err
	}

	p := tea.NewProgram(
		NewModel(r, cfg),
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	_, err := p.Run()
	return err
}
