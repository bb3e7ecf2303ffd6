package level

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// DefaultStopSpeed is the speed below which the vehicle counts as stopped.
const DefaultStopSpeed = 0.5

// Session owns the run-scoped state: the current level index, the ordered
// level scores and the run verdict flags. It owns at most one running
// Controller at a time.
type Session struct {
	course     Course
	transition Transitioner
	logger     *log.Logger
	stopSpeed  float64

	levelIndex     int
	scores         []LevelScore
	requiredFailed bool
	errored        bool
	completed      bool
	active         *Controller

	// gen is bumped on Reset so controllers from a previous run cannot
	// write into the new one.
	gen int
}

// Option configures a Session.
type Option func(*Session)

// WithTransitioner sets the level-transition facade.
func WithTransitioner(t Transitioner) Option {
	return func(s *Session) {
		s.transition = t
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStopSpeed sets the stop threshold used by deferred finalization.
func WithStopSpeed(speed float64) Option {
	return func(s *Session) {
		if speed > 0 {
			s.stopSpeed = speed
		}
	}
}

// NewSession creates a run session over the given course.
func NewSession(course Course, opts ...Option) *Session {
	s := &Session{
		course:    course,
		logger:    log.New(io.Discard),
		stopSpeed: DefaultStopSpeed,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartLevel creates the controller for the current level index.
// The caller still has to invoke HandleStart on it.
func (s *Session) StartLevel(tasks []Task, env Env) (*Controller, error) {
	if s.course == nil || s.course.LevelCount() == 0 {
		return nil, ErrNoLevels
	}
	if s.completed {
		return nil, ErrRunOver
	}
	if s.active != nil {
		s.logger.Warn("level start while another level runs", "active", s.active.index)
		return nil, ErrLevelActive
	}
	if s.levelIndex >= s.course.LevelCount() {
		return nil, fmt.Errorf("%w: level index %d of %d", ErrRunOver, s.levelIndex, s.course.LevelCount())
	}

	c := newController(s, s.levelIndex, s.course.Level(s.levelIndex), tasks, env)
	s.active = c
	return c, nil
}

// Active returns the running controller, or nil between levels.
func (s *Session) Active() *Controller {
	return s.active
}

// Course returns the level configuration provider.
func (s *Session) Course() Course {
	return s.course
}

// LevelIndex returns the index of the current level.
func (s *Session) LevelIndex() int {
	return s.levelIndex
}

// SetLevelIndex jumps to a level before the run starts.
func (s *Session) SetLevelIndex(index int) error {
	if s.active != nil {
		return ErrLevelActive
	}
	if s.course == nil || index < 0 || index >= s.course.LevelCount() {
		return fmt.Errorf("level: start index %d out of range", index)
	}
	s.levelIndex = index
	return nil
}

// Scores returns a copy of the recorded level scores in play order.
func (s *Session) Scores() []LevelScore {
	out := make([]LevelScore, len(s.scores))
	copy(out, s.scores)
	return out
}

// RequiredFailed reports whether a required level ended below max points.
func (s *Session) RequiredFailed() bool {
	return s.requiredFailed
}

// Errored reports whether a level was aborted through HandleError.
func (s *Session) Errored() bool {
	return s.errored
}

// Completed reports whether the run has ended.
func (s *Session) Completed() bool {
	return s.completed
}

// Reset clears all run-scoped state. A controller that is still running is
// detached and its outcome will be ignored.
func (s *Session) Reset() {
	if s.active != nil {
		s.logger.Warn("run reset with a level in progress", "level", s.active.index)
	}
	s.gen++
	s.levelIndex = 0
	s.scores = nil
	s.requiredFailed = false
	s.errored = false
	s.completed = false
	s.active = nil
}

// RunSummary is the read model handed to run-summary consumers.
type RunSummary struct {
	Levels         []LevelScore
	Total          float64
	TotalTime      float64
	RequiredFailed bool
	Errored        bool
	Completed      bool
}

// Passed reports whether the run ended normally with no required failure.
func (r RunSummary) Passed() bool {
	return r.Completed && !r.RequiredFailed && !r.Errored
}

// Summary returns the run-scoped state for display or persistence.
func (s *Session) Summary() RunSummary {
	sum := RunSummary{
		Levels:         s.Scores(),
		RequiredFailed: s.requiredFailed,
		Errored:        s.errored,
		Completed:      s.completed,
	}
	for _, ls := range s.scores {
		sum.Total += ls.Score
		sum.TotalTime += ls.Time
	}
	return sum
}

// owns reports whether c belongs to the current run and is the active level.
func (s *Session) owns(c *Controller) bool {
	if c.gen != s.gen || s.active != c {
		s.logger.Warn("outcome from detached level ignored", "level", c.index)
		return false
	}
	return true
}

// conclude records a normally finalized level and decides the next step.
func (s *Session) conclude(c *Controller) {
	if !s.owns(c) {
		return
	}
	s.scores = append(s.scores, c.recorded)
	s.active = nil

	switch {
	case c.index >= s.course.LevelCount()-1:
		s.finishRun()
	case c.info.IsRequired && c.score.Total() < c.info.MaxPoints:
		s.requiredFailed = true
		s.logger.Info("required level failed", "score", c.score.Total(), "max", c.info.MaxPoints)
		s.finishRun()
	default:
		s.levelIndex++
		if s.transition != nil {
			s.transition.AdvanceToNextLevel()
		}
	}
}

// abort records an errored level and ends the run without evaluating the
// required-level or advance rules.
func (s *Session) abort(c *Controller) {
	if !s.owns(c) {
		return
	}
	s.scores = append(s.scores, c.recorded)
	s.active = nil
	s.errored = true
	s.finishRun()
}

func (s *Session) finishRun() {
	s.completed = true
	s.logger.Info("run finished", "levels", len(s.scores), "required_failed", s.requiredFailed, "errored", s.errored)
	if s.transition != nil {
		s.transition.FinishRun()
	}
}
