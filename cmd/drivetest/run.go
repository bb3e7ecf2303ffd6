package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/drivetest/internal/config"
	"github.com/vovakirdan/drivetest/internal/core"
	"github.com/vovakirdan/drivetest/internal/platform/tui"
	"github.com/vovakirdan/drivetest/internal/storage"
)

var (
	flagSummaryOut string
	flagStartLevel int
	flagNoSave     bool
	flagPick       bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Drive the course",
	Long: `Start an evaluation run of the course.

Controls:
  Up/W       - Accelerate
  Down/S     - Brake
  N          - Skip level (when the level allows it)
  F          - Give up level
  P/Esc      - Pause
  R          - Restart (after the run)
  ?          - More keys
  Q/Ctrl+C   - Quit (an unfinished run is recorded as aborted)

Pedals stay down briefly after each key press; hold the key to keep them down.

Examples:
  drivetest run
  drivetest run --start-level 3
  drivetest run --pick
  drivetest run --summary-out ./last-run.yaml
  drivetest run --course ./my-course.yaml --fps 60`,
	Args: cobra.NoArgs,
	Run:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&flagSummaryOut, "summary-out", "", "Write the run summary as YAML to this path")
	runCmd.Flags().IntVar(&flagStartLevel, "start-level", 1, "Level to start at (1-based)")
	runCmd.Flags().BoolVar(&flagNoSave, "no-save", false, "Do not store the run in the database")
	runCmd.Flags().BoolVar(&flagPick, "pick", false, "Pick the starting level from a menu")
}

func runRun(_ *cobra.Command, _ []string) {
	if fd := os.Stdout.Fd(); !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		fail("run needs an interactive terminal; see 'drivetest results' for stored runs")
	}

	// The alt screen owns stdout, so log to a file.
	logOut := io.Discard
	if path := config.UserPath("drivetest.log"); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
			if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600); err == nil {
				defer f.Close()
				logOut = f
			}
		}
	}
	logger := newLogger(logOut)

	c := loadCourse(logger)
	if flagStartLevel < 1 || flagStartLevel > c.LevelCount() {
		fail("start level %d out of range (course has %d levels)", flagStartLevel, c.LevelCount())
	}

	var store *storage.Store
	if !flagNoSave {
		var err error
		store, err = storage.Open(flagDBPath)
		if err != nil {
			logger.Warn("could not open runs database", "error", err)
			// Continue without storage
			store = nil
		}
	}

	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}
	cfg := core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
	}

	startLevel := flagStartLevel - 1
	if flagPick {
		idx, ok, err := tui.RunLevelMenu(c, store, cfg)
		if err != nil {
			closeStore(store)
			fail("level menu: %v", err)
		}
		if !ok {
			closeStore(store)
			return
		}
		startLevel = idx
	}

	runner, err := tui.NewRunner(tui.RunnerConfig{
		Course:     c,
		Store:      store,
		SummaryOut: flagSummaryOut,
		StartLevel: startLevel,
		TickRate:   flagFPS,
		Logger:     logger,
	})
	if err != nil {
		closeStore(store)
		fail("%v", err)
	}

	runErr := tui.Run(runner, cfg)

	if runErr == nil && runner.Finished() {
		printRunSummary(os.Stdout, c.Name(), runner.RunID(), runner.Session().Summary(), runner.Titles())
		if saveErr := runner.SaveErr(); saveErr != nil {
			logger.Warn("run not fully saved", "error", saveErr)
		}
	}

	// Close store before potential exit
	closeStore(store)

	if runErr != nil {
		fail("running course: %v", runErr)
	}
}

func closeStore(store *storage.Store) {
	if store != nil {
		//nolint:errcheck // Best-effort close
		store.Close()
	}
}
