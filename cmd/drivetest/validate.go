package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/drivetest/internal/config"
	"github.com/vovakirdan/drivetest/internal/course"
)

var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Check a course file",
	Long: `Load a course file, apply defaults, and check its settings, bonus
schedules and task parameters. Without a path, checks the course that
'drivetest run' would use.

Examples:
  drivetest validate ./courses/city.yaml
  drivetest validate`,
	Args: cobra.MaximumNArgs(1),
	Run:  runValidate,
}

func runValidate(_ *cobra.Command, args []string) {
	path := flagCourse
	if len(args) == 1 {
		path = args[0]
	}

	green := color.New(color.FgGreen, color.Bold)
	red := color.New(color.FgRed, color.Bold)

	cfg, src, err := config.LoadCourse(path)
	if err == nil {
		if _, err = course.New(cfg); err != nil {
			err = fmt.Errorf("%s: %w", src, err)
		}
	}
	if err != nil {
		red.Fprint(os.Stderr, "INVALID ")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	green.Print("OK ")
	fmt.Printf("%s: course %q with %d levels\n", src, cfg.Name, len(cfg.Levels))
}
