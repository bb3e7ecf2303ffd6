// Package course adapts a loaded course file into the level configuration
// provider and builds fresh task instances for each level attempt.
package course

import (
	"fmt"

	"github.com/vovakirdan/drivetest/internal/config"
	"github.com/vovakirdan/drivetest/internal/level"
	"github.com/vovakirdan/drivetest/internal/registry"

	_ "github.com/vovakirdan/drivetest/internal/tasks" // Register task kinds
)

// Course serves level configuration and builds tasks. It implements
// level.Course.
type Course struct {
	cfg   config.Course
	infos []level.Info
}

// New adapts a parsed course. It builds every level's tasks once so a
// course with unknown kinds or bad parameters is rejected up front.
func New(cfg config.Course) (*Course, error) {
	c := &Course{cfg: cfg, infos: make([]level.Info, len(cfg.Levels))}
	for i, l := range cfg.Levels {
		c.infos[i] = l.Info()
		if _, err := c.Tasks(i); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Load finds, parses and adapts a course file. See config.LoadCourse for
// the search order.
func Load(customPath string) (*Course, string, error) {
	cfg, src, err := config.LoadCourse(customPath)
	if err != nil {
		return nil, src, err
	}
	c, err := New(cfg)
	if err != nil {
		return nil, src, fmt.Errorf("%s: %w", src, err)
	}
	return c, src, nil
}

// Name returns the course name used to group stored runs.
func (c *Course) Name() string {
	return c.cfg.Name
}

// Config returns the underlying course file.
func (c *Course) Config() config.Course {
	return c.cfg
}

// LevelCount returns the number of levels.
func (c *Course) LevelCount() int {
	return len(c.infos)
}

// Level returns the configuration of the level at index.
func (c *Course) Level(index int) level.Info {
	return c.infos[index]
}

// Tasks builds new task instances for the level at index, in order.
func (c *Course) Tasks(index int) ([]level.Task, error) {
	if index < 0 || index >= len(c.cfg.Levels) {
		return nil, fmt.Errorf("course: level %d out of range", index)
	}

	l := c.cfg.Levels[index]
	tasks := make([]level.Task, 0, len(l.Tasks))
	for i, tc := range l.Tasks {
		t, err := registry.Create(tc.Kind, tc.Points, registry.Params(tc.Params))
		if err != nil {
			return nil, fmt.Errorf("course: level %d (%s) task %d: %w", index, l.Title, i, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
