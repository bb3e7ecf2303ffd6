package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/drivetest/internal/level"
	"github.com/vovakirdan/drivetest/internal/storage"
)

// SummaryModel shows the outcome of a finished run.
type SummaryModel struct {
	course  string
	runID   string
	sum     level.RunSummary
	best    *storage.RunRecord
	saveErr error
	table   table.Model
}

// NewSummaryModel builds the summary for the runner's finished run.
func NewSummaryModel(r *Runner, width, height int) SummaryModel {
	m := SummaryModel{
		course:  r.Course().Name(),
		runID:   r.RunID(),
		sum:     r.Session().Summary(),
		saveErr: r.SaveErr(),
	}

	if store := r.Store(); store != nil {
		if best, ok, err := store.BestRun(m.course); err == nil && ok {
			m.best = &best
		}
	}

	m.table = newLevelTable(r.Titles(), m.sum.Levels, width, height)
	return m
}

// newLevelTable creates the per-level results table.
func newLevelTable(titles []string, levels []level.LevelScore, width, height int) table.Model {
	titleWidth := width - 40
	if titleWidth < 16 {
		titleWidth = 16
	}
	if titleWidth > 32 {
		titleWidth = 32
	}

	columns := []table.Column{
		{Title: "#", Width: 3},
		{Title: "Level", Width: titleWidth},
		{Title: "Score", Width: 8},
		{Title: "Time", Width: 9},
	}

	rows := make([]table.Row, len(levels))
	for i, ls := range levels {
		title := ""
		if i < len(titles) {
			title = titles[i]
		}
		rows[i] = table.Row{
			fmt.Sprintf("%d", i+1),
			title,
			fmt.Sprintf("%g", ls.Score),
			fmt.Sprintf("%.1fs", ls.Time),
		}
	}

	tableHeight := height - 12 // Header, totals and help
	if tableHeight < 3 {
		tableHeight = 3
	}
	if tableHeight > len(rows)+1 {
		tableHeight = len(rows) + 1
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(tableHeight),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// Update forwards navigation keys to the table.
func (m SummaryModel) Update(msg tea.Msg) (SummaryModel, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// Summary returns the run summary being shown.
func (m SummaryModel) Summary() level.RunSummary {
	return m.sum
}

// View renders the summary screen.
func (m SummaryModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Run complete: " + m.course))
	b.WriteString("\n\n")
	b.WriteString(m.table.View())
	b.WriteString("\n\n")

	b.WriteString(row("Total", fmt.Sprintf("%g points in %.1fs", m.sum.Total, m.sum.TotalTime)))
	b.WriteString(row("Result", verdictText(m.sum.Passed(), m.sum.RequiredFailed, m.sum.Errored)))
	if m.best != nil {
		b.WriteString(row("Best", fmt.Sprintf("%g points in %.1fs", m.best.Total, m.best.TotalTime)))
	}
	b.WriteString(row("Run", dimStyle.Render(m.runID)))
	if m.saveErr != nil {
		b.WriteString(warnStyle.Render("Not saved: " + m.saveErr.Error()))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}
