package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/drivetest/internal/level"
	"github.com/vovakirdan/drivetest/internal/storage"
)

var (
	flagLimit int
	flagAll   bool
	flagClear bool
)

var resultsCmd = &cobra.Command{
	Use:   "results [run-id]",
	Short: "Show stored runs",
	Long: `Display recent runs of the course with totals and verdicts, or the
per-level scores of a single run.

Examples:
  drivetest results
  drivetest results --all --limit 50
  drivetest results 3f6c2a4e-5b1d-4c8e-9a7f-0d2e1b3c4a5f
  drivetest results --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runResults,
}

func init() {
	resultsCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of runs to show")
	resultsCmd.Flags().BoolVar(&flagAll, "all", false, "Show runs of every course")
	resultsCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete all stored runs of the course")
}

func runResults(_ *cobra.Command, args []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fail("opening runs database: %v", err)
	}
	defer closeStore(store)

	if len(args) == 1 {
		if err := showRun(os.Stdout, store, args[0]); err != nil {
			closeStore(store)
			fail("%v", err)
		}
		return
	}

	c := loadCourse(newLogger(os.Stderr))

	if flagClear {
		if err := store.ClearRuns(c.Name()); err != nil {
			closeStore(store)
			fail("%v", err)
		}
		fmt.Printf("Cleared runs of %s.\n", c.Name())
		return
	}

	course := c.Name()
	if flagAll {
		course = ""
	}
	runs, err := store.RecentRuns(course, flagLimit)
	if err != nil {
		closeStore(store)
		fail("retrieving runs: %v", err)
	}

	bold := color.New(color.Bold)
	if flagAll {
		bold.Println("Recent runs")
	} else {
		bold.Printf("Recent runs - %s\n", course)
	}
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Run 'drivetest run' to record the first one!")
		return
	}

	fmt.Printf("  %-36s  %-10s  %8s  %8s  %-8s  %s\n", "Run", "Course", "Total", "Time", "Result", "Date")
	fmt.Printf("  %-36s  %-10s  %8s  %8s  %-8s  %s\n", "---", "------", "-----", "----", "------", "----")
	for _, r := range runs {
		fmt.Printf("  %-36s  %-10s  %8g  %7.1fs  %s  %s\n",
			r.ID, r.Course, r.Total, r.TotalTime,
			verdict(r.Passed(), r.RequiredFailed, r.Errored),
			r.CreatedAt.Format("2006-01-02 15:04"))
	}

	if flagAll {
		return
	}
	stats, err := store.GetCourseStats(course)
	if err == nil && stats.Runs > 0 {
		fmt.Println()
		fmt.Printf("Runs: %d, passed: %d, average: %.1f\n", stats.Runs, stats.Passed, stats.AvgTotal)
	}
	if best, ok, err := store.BestRun(course); err == nil && ok {
		fmt.Printf("Best: %g points in %.1fs (%s)\n", best.Total, best.TotalTime, best.ID)
	}
}

// showRun prints one stored run with its level scores.
func showRun(w io.Writer, store *storage.Store, id string) error {
	run, err := store.Run(id)
	if errors.Is(err, storage.ErrRunNotFound) {
		return fmt.Errorf("no run with ID %q", id)
	}
	if err != nil {
		return err
	}
	levels, err := store.RunLevels(id)
	if err != nil {
		return err
	}

	sum := level.RunSummary{
		Total:          run.Total,
		TotalTime:      run.TotalTime,
		RequiredFailed: run.RequiredFailed,
		Errored:        run.Errored,
	}
	titles := make([]string, len(levels))
	for i, l := range levels {
		sum.Levels = append(sum.Levels, level.LevelScore{Score: l.Score, Time: l.Time})
		titles[i] = l.Title
	}

	printRunSummary(w, run.Course, run.ID, sum, titles)
	fmt.Fprintf(w, "  Recorded: %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

// printRunSummary prints the per-level scores and verdict of a run.
func printRunSummary(w io.Writer, course, runID string, sum level.RunSummary, titles []string) {
	cyan := color.New(color.FgCyan, color.Bold)

	cyan.Fprintf(w, "\n=== %s ===\n\n", course)

	fmt.Fprintf(w, "  %-3s  %-28s  %8s  %8s\n", "#", "Level", "Score", "Time")
	fmt.Fprintf(w, "  %-3s  %-28s  %8s  %8s\n", "-", "-----", "-----", "----")
	for i, ls := range sum.Levels {
		title := ""
		if i < len(titles) {
			title = titles[i]
		}
		fmt.Fprintf(w, "  %-3d  %-28s  %8g  %7.1fs\n", i+1, title, ls.Score, ls.Time)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Total: %g points in %.1fs\n", sum.Total, sum.TotalTime)
	fmt.Fprintf(w, "  Result: %s\n", verdict(sum.Passed(), sum.RequiredFailed, sum.Errored))
	fmt.Fprintf(w, "  Run: %s\n", runID)
}

// verdict renders a colored run outcome.
func verdict(passed, requiredFailed, errored bool) string {
	switch {
	case errored:
		return color.YellowString("%-8s", "ABORTED")
	case requiredFailed:
		return color.RedString("%-8s", "FAILED")
	case passed:
		return color.GreenString("%-8s", "PASSED")
	}
	return fmt.Sprintf("%-8s", "-")
}
