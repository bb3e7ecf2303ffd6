package tui

import (
	"fmt"
	"strings"
)

// HUD holds what the driver sees during a level. It implements level.HUD;
// the controller pushes updates and View renders the latest state.
type HUD struct {
	levelIndex  int
	title       string
	description string

	score    float64
	maxScore float64

	elapsed float64
	limit   float64

	hasBonus       bool
	bonusThreshold float64
	bonus          float64
	bonusFinal     bool

	taskIndex int
	taskCount int
	penalty   float64

	speed    float64
	position float64
}

// NewHUD creates an empty HUD.
func NewHUD() *HUD {
	return &HUD{}
}

// SetLevelInfo shows the level header and clears the bonus display.
func (h *HUD) SetLevelInfo(index int, title, description string) {
	h.levelIndex = index
	h.title = title
	h.description = description
	h.hasBonus = false
}

// UpdateScore shows the current and maximum score.
func (h *HUD) UpdateScore(current, max float64) {
	h.score = current
	h.maxScore = max
}

// UpdateTime shows elapsed time against the limit.
func (h *HUD) UpdateTime(elapsed, limit float64) {
	h.elapsed = elapsed
	h.limit = limit
}

// SetTimeBonus shows the active bonus window.
func (h *HUD) SetTimeBonus(threshold, bonus float64, isFinal bool) {
	h.hasBonus = true
	h.bonusThreshold = threshold
	h.bonus = bonus
	h.bonusFinal = isFinal
}

// SetMaxTime shows the time limit with no bonus schedule.
func (h *HUD) SetMaxTime(limit float64) {
	h.hasBonus = false
	h.limit = limit
}

// SetTaskProgress shows how many tasks are done.
func (h *HUD) SetTaskProgress(index, count int) {
	h.taskIndex = index
	h.taskCount = count
}

// SetPenalty shows accumulated penalty seconds.
func (h *HUD) SetPenalty(seconds float64) {
	h.penalty = seconds
}

// SetTelemetry shows the vehicle state.
func (h *HUD) SetTelemetry(speed, position float64) {
	h.speed = speed
	h.position = position
}

// BonusLine returns the bonus window text, or empty with no schedule.
func (h *HUD) BonusLine() string {
	if !h.hasBonus {
		return ""
	}
	if h.bonusFinal {
		return fmt.Sprintf("+%g until time limit (%.0fs)", h.bonus, h.bonusThreshold)
	}
	return fmt.Sprintf("+%g if done by %.0fs", h.bonus, h.bonusThreshold)
}

// Title returns the current level title.
func (h *HUD) Title() string { return h.title }

// Score returns the displayed score.
func (h *HUD) Score() float64 { return h.score }

// Elapsed returns the displayed elapsed time.
func (h *HUD) Elapsed() float64 { return h.elapsed }

// View renders the HUD in a box of the given width.
func (h *HUD) View(width int) string {
	if width < 40 {
		width = 40
	}
	inner := width - 4

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Level %d  %s", h.levelIndex+1, h.title)))
	b.WriteString("\n")
	if h.description != "" {
		b.WriteString(dimStyle.Render(h.description))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(row("Score", fmt.Sprintf("%g / %g", h.score, h.maxScore)))
	b.WriteString(row("Tasks", fmt.Sprintf("%d / %d", h.taskIndex, h.taskCount)))

	timeText := fmt.Sprintf("%5.1fs / %.0fs", h.elapsed, h.limit)
	if h.penalty > 0 {
		timeText += warnStyle.Render(fmt.Sprintf("  +%gs penalty", h.penalty))
	}
	b.WriteString(row("Time", timeText))
	b.WriteString(timeBar(h.elapsed, h.limit, inner))
	b.WriteString("\n")

	if line := h.BonusLine(); line != "" {
		style := bonusStyle
		if h.bonusFinal {
			style = dimStyle
		}
		b.WriteString(row("Bonus", style.Render(line)))
	}

	b.WriteString("\n")
	b.WriteString(row("Speed", fmt.Sprintf("%5.1f m/s", h.speed)))
	b.WriteString(row("Position", fmt.Sprintf("%6.1f m", h.position)))

	return boxStyle.Width(inner).Render(strings.TrimRight(b.String(), "\n"))
}

func row(label, value string) string {
	return labelStyle.Render(label) + value + "\n"
}

// timeBar draws elapsed time as a fraction of the limit.
func timeBar(elapsed, limit float64, width int) string {
	if limit <= 0 || width <= 0 {
		return ""
	}
	filled := int(elapsed / limit * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	style := barStyle
	if elapsed > limit*0.8 {
		style = warnStyle
	}
	return style.Render(strings.Repeat("█", filled)) + dimStyle.Render(strings.Repeat("░", width-filled))
}
