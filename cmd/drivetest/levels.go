package main

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/drivetest/internal/config"
	"github.com/vovakirdan/drivetest/internal/registry"
)

var flagKinds bool

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List the levels of the course",
	Long: `Shows every level of the course with its time limit, bonus schedule
and tasks. With --kinds, lists the task kinds a course file may use instead.`,
	Args: cobra.NoArgs,
	Run:  runLevels,
}

func init() {
	levelsCmd.Flags().BoolVar(&flagKinds, "kinds", false, "List available task kinds")
}

func runLevels(_ *cobra.Command, _ []string) {
	if flagKinds {
		printKinds()
		return
	}

	c := loadCourse(newLogger(os.Stderr))
	cfg := c.Config()

	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	bold.Printf("Course: %s\n", c.Name())
	fmt.Printf("  %d levels, %d ticks/s, penalty %gs per harsh brake\n",
		len(cfg.Levels), cfg.Settings.TickRate, cfg.Settings.PenaltyPerHarshBrake)

	for i, l := range cfg.Levels {
		fmt.Println()
		cyan.Printf("%d. %s", i+1, l.Title)
		if l.Required {
			yellow.Print("  [required]")
		}
		if l.WaitForStop {
			fmt.Print("  [stop to finish]")
		}
		fmt.Println()
		if l.Description != "" {
			fmt.Printf("   %s\n", l.Description)
		}
		fmt.Printf("   Limit %gs, max %g points\n", l.TimeLimit, l.MaxPoints)
		if len(l.TimeBonuses) > 0 {
			fmt.Printf("   Bonuses: %s\n", formatBonuses(l.TimeBonuses))
		}
		for _, t := range l.Tasks {
			fmt.Printf("   - %-15s %4g pts  %s\n", t.Kind, t.Points, formatParams(t.Params))
		}
	}
}

func printKinds() {
	kinds := registry.List()

	// Calculate column widths
	maxKindLen := 4 // "Kind" header
	for _, k := range kinds {
		if len(k.Kind) > maxKindLen {
			maxKindLen = len(k.Kind)
		}
	}

	fmt.Println("Task kinds:")
	fmt.Println()
	fmt.Printf("  %-*s  %-28s  %s\n", maxKindLen, "Kind", "Params", "Description")
	fmt.Printf("  %-*s  %-28s  %s\n", maxKindLen, "----", "------", "-----------")
	for _, k := range kinds {
		fmt.Printf("  %-*s  %-28s  %s\n", maxKindLen, k.Kind, strings.Join(k.Params, ", "), k.Description)
	}
}

// formatBonuses renders a bonus schedule such as "+5 by 10s, +2 until limit".
func formatBonuses(bonuses []config.BonusConfig) string {
	parts := make([]string, len(bonuses))
	for i, b := range bonuses {
		if math.IsInf(b.Threshold, 1) {
			parts[i] = fmt.Sprintf("+%g until limit", b.Bonus)
		} else {
			parts[i] = fmt.Sprintf("+%g by %gs", b.Bonus, b.Threshold)
		}
	}
	return strings.Join(parts, ", ")
}

// formatParams renders task parameters in name order.
func formatParams(params map[string]float64) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%g", name, params[name])
	}
	return strings.Join(parts, " ")
}
