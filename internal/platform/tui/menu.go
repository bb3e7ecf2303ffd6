package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/drivetest/internal/core"
	"github.com/vovakirdan/drivetest/internal/course"
	"github.com/vovakirdan/drivetest/internal/storage"
)

// MenuItem represents a selectable start level in the menu.
type MenuItem struct {
	Index    int
	Title    string
	Required bool
}

type menuKeys struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Quit   key.Binding
}

func defaultMenuKeys() menuKeys {
	return menuKeys{
		Up:     key.NewBinding(key.WithKeys("up", "k", "w")),
		Down:   key.NewBinding(key.WithKeys("down", "j", "s")),
		Select: key.NewBinding(key.WithKeys("enter", " ")),
		Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c")),
	}
}

// MenuModel is the Bubble Tea model for picking the level to start from.
type MenuModel struct {
	course   string
	items    []MenuItem
	best     string
	cursor   int
	width    int
	height   int
	config   core.RuntimeConfig
	keys     menuKeys
	quitting bool
	selected *MenuItem // Set when the driver picks a level
}

// NewMenuModel creates a level menu for the course. store may be nil.
func NewMenuModel(c *course.Course, store *storage.Store, cfg core.RuntimeConfig) MenuModel {
	items := make([]MenuItem, c.LevelCount())
	for i := range items {
		info := c.Level(i)
		items[i] = MenuItem{
			Index:    i,
			Title:    info.Title,
			Required: info.IsRequired,
		}
	}

	m := MenuModel{
		course: c.Name(),
		items:  items,
		width:  cfg.ScreenW,
		height: cfg.ScreenH,
		config: cfg,
		keys:   defaultMenuKeys(),
	}
	if store != nil {
		if best, ok, err := store.BestRun(c.Name()); err == nil && ok {
			m.best = fmt.Sprintf("Best: %g points in %.1fs", best.Total, best.TotalTime)
		}
	}
	return m
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Select):
		if len(m.items) > 0 {
			selected := m.items[m.cursor]
			m.selected = &selected
			return m, tea.Quit // Exit menu to start the run
		}
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText(titleStyle.Render("D R I V E T E S T"), "D R I V E T E S T", m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText(m.course, m.course, m.width))
	b.WriteString("\n")
	sub := "Select a starting level"
	b.WriteString(centerText(dimStyle.Render(sub), sub, m.width))
	b.WriteString("\n\n")

	for i, item := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%d. %s", cursor, item.Index+1, item.Title)
		if item.Required {
			line += " *"
		}
		b.WriteString(centerText(line, line, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.best != "" {
		b.WriteString(centerText(bonusStyle.Render(m.best), m.best, m.width))
		b.WriteString("\n")
	}
	controls := "Up/Down: Navigate  |  Enter: Start  |  Q: Quit  |  * required"
	b.WriteString(centerText(dimStyle.Render(controls), controls, m.width))
	b.WriteString("\n")

	return b.String()
}

// Selected returns the selected menu item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// IsQuitting returns true if the driver left the menu without a pick.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// Config returns the current runtime config (may have been updated by resize).
func (m MenuModel) Config() core.RuntimeConfig {
	return m.config
}

// centerText centers rendered text within width, measuring the plain text.
func centerText(rendered, plain string, width int) string {
	if len(plain) >= width {
		return rendered
	}
	padding := (width - len(plain)) / 2
	return strings.Repeat(" ", padding) + rendered
}

// RunLevelMenu shows the level menu and returns the picked level index.
// ok is false when the driver quit without picking.
func RunLevelMenu(c *course.Course, store *storage.Store, cfg core.RuntimeConfig) (index int, ok bool, err error) {
	p := tea.NewProgram(
		NewMenuModel(c, store, cfg),
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return 0, false, err
	}

	m, isMenu := finalModel.(MenuModel)
	if !isMenu || m.IsQuitting() || m.Selected() == nil {
		return 0, false, nil
	}
	return m.Selected().Index, true, nil
}
