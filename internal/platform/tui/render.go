package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Shared styles for the driving and summary views.
var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	bonusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	passStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	failStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	labelStyle = lipgloss.NewStyle().Width(10).Foreground(lipgloss.Color("12"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	pausedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Padding(0, 2)
)

// verdictText renders the run outcome.
func verdictText(passed, requiredFailed, errored bool) string {
	switch {
	case errored:
		return failStyle.Render("ABORTED")
	case requiredFailed:
		return failStyle.Render("FAILED (required level)")
	case passed:
		return passStyle.Render("PASSED")
	default:
		return dimStyle.Render("IN PROGRESS")
	}
}
