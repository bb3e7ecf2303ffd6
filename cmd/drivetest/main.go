// drivetest runs a driving-test style evaluation course in the terminal.
//
// Usage:
//
//	drivetest run                - Drive the course
//	drivetest levels             - List the course levels
//	drivetest results [run-id]   - Show stored runs or one run in detail
//	drivetest validate [path]    - Check a course file
//	drivetest serve              - Start SSH server for remote runs
//
// Global flags:
//
//	--course <path>     - Course YAML (default: search ~/.drivetest/courses, ./courses, built-in)
//	--fps <rate>        - Override the course tick rate
//	--db <path>         - Runs database (default: ~/.drivetest/runs.db)
//	--log-level <lvl>   - debug, info, warn or error
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/drivetest/internal/course"
)

var (
	// Global flags
	flagCourse   string
	flagFPS      int
	flagDBPath   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "drivetest",
	Short: "Drivetest - timed driving levels in your terminal",
	Long: `Drivetest runs an evaluation course: an ordered list of timed levels,
each made of driving tasks such as reaching a speed or stopping at a mark.
Finishing early earns time bonuses; failing a required level ends the run.

Available commands:
  run       - Drive the course
  levels    - List the levels of the course
  results   - View stored runs
  validate  - Check a course file
  serve     - Start SSH server for remote runs

Examples:
  drivetest run
  drivetest run --course ./courses/city.yaml --start-level 2
  drivetest levels --kinds
  drivetest results
  drivetest serve --ssh :2222`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagCourse, "course", "", "Path to course YAML")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 0, "Tick rate override (0 = course setting)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.drivetest/runs.db", "Path to runs database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(levelsCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(serveCmd)
}

// newLogger creates the command logger at the --log-level level.
func newLogger(w io.Writer) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "drivetest",
	})
	lvl, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		logger.Warn("unknown log level, using info", "level", flagLogLevel)
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// loadCourse loads the course named by --course, exiting on failure.
func loadCourse(logger *log.Logger) *course.Course {
	c, src, err := course.Load(flagCourse)
	if err != nil {
		fail("cannot load course: %v", err)
	}
	logger.Debug("course loaded", "name", c.Name(), "source", src, "levels", c.LevelCount())
	return c
}

// fail prints an error and exits.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
