package tui

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/drivetest/internal/core"
	"github.com/vovakirdan/drivetest/internal/course"
	"github.com/vovakirdan/drivetest/internal/level"
	"github.com/vovakirdan/drivetest/internal/report"
	"github.com/vovakirdan/drivetest/internal/storage"
	"github.com/vovakirdan/drivetest/internal/vehicle"
)

// ErrAborted is the cause recorded when a run is abandoned mid-level.
var ErrAborted = errors.New("run aborted by driver")

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	Course     *course.Course
	Store      *storage.Store // Optional; runs are not persisted when nil
	SummaryOut string         // Optional YAML export path
	StartLevel int
	TickRate   int // Overrides the course tick rate when positive
	Logger     *log.Logger
}

// Runner drives one evaluation run: it steps the vehicle and the simulated
// clock once per tick, feeds the active level, and moves between levels.
// It implements level.Transitioner. Not safe for concurrent use.
type Runner struct {
	course     *course.Course
	session    *level.Session
	ctrl       *level.Controller
	vehicle    *vehicle.Vehicle
	clock      *core.SimClock
	hud        *HUD
	store      *storage.Store
	summaryOut string
	logger     *log.Logger

	startLevel int
	tickRate   int
	dt         float64
	penalty    float64 // Seconds per harsh brake
	harshSeen  int

	paused   bool
	finished bool
	runID    string
	saveErr  error
}

// NewRunner creates a runner positioned at the configured start level.
// Call Start to begin the first level.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if cfg.Course == nil {
		return nil, level.ErrNoLevels
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	settings := cfg.Course.Config().Settings
	rc := core.DefaultConfig()
	rc.TickRate = settings.TickRate
	if cfg.TickRate > 0 {
		rc.TickRate = cfg.TickRate
	}

	r := &Runner{
		course:     cfg.Course,
		vehicle:    vehicle.New(cfg.Course.Config().Vehicle.Params()),
		clock:      core.NewSimClock(0),
		hud:        NewHUD(),
		store:      cfg.Store,
		summaryOut: cfg.SummaryOut,
		logger:     logger,
		startLevel: cfg.StartLevel,
		tickRate:   rc.TickRate,
		dt:         rc.TickSeconds(),
		penalty:    settings.PenaltyPerHarshBrake,
	}
	r.session = level.NewSession(cfg.Course,
		level.WithTransitioner(r),
		level.WithLogger(logger),
		level.WithStopSpeed(settings.StopSpeed),
	)
	if err := r.session.SetLevelIndex(cfg.StartLevel); err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}
	return r, nil
}

// Start begins the level at the session's current index.
func (r *Runner) Start() error {
	r.logger.Info("run started", "course", r.course.Name(), "levels", r.course.LevelCount(), "start", r.session.LevelIndex())
	return r.beginLevel()
}

// beginLevel resets the vehicle and starts a fresh controller. A level
// whose tasks cannot be built is started empty and aborted with the error.
func (r *Runner) beginLevel() error {
	r.vehicle.Reset()
	r.harshSeen = 0

	idx := r.session.LevelIndex()
	tasks, buildErr := r.course.Tasks(idx)

	ctrl, err := r.session.StartLevel(tasks, level.Env{
		HUD:       r.hud,
		Telemetry: r.vehicle,
		Clock:     r.clock,
	})
	if err != nil {
		return fmt.Errorf("tui: start level %d: %w", idx, err)
	}
	r.ctrl = ctrl
	r.hud.SetTaskProgress(0, ctrl.TaskCount())
	r.hud.SetPenalty(0)

	if err := ctrl.HandleStart(); err != nil {
		return fmt.Errorf("tui: start level %d: %w", idx, err)
	}
	if buildErr != nil {
		return ctrl.HandleError(buildErr)
	}
	return nil
}

// Step advances the run by one tick. Pause toggles are honored even while
// paused; nothing else moves until the run is resumed.
func (r *Runner) Step(in core.InputFrame) {
	if r.finished || r.ctrl == nil {
		return
	}
	if in.Has(core.ActionPause) {
		r.paused = !r.paused
		r.logger.Debug("pause toggled", "paused", r.paused)
	}
	if r.paused {
		return
	}

	r.vehicle.Step(in, r.dt)
	r.clock.Advance(r.dt)

	if n := r.vehicle.HarshBrakes(); n > r.harshSeen {
		r.ctrl.AddTimePenalty(float64(n-r.harshSeen) * r.penalty)
		r.logger.Debug("harsh brake", "count", n, "penalty", r.ctrl.Penalty())
		r.harshSeen = n
	}

	ctrl := r.ctrl
	if err := ctrl.Tick(in); err != nil {
		r.logger.Warn("tick rejected", "err", err)
	}
	if r.ctrl == ctrl {
		r.hud.SetTaskProgress(ctrl.TaskIndex(), ctrl.TaskCount())
		r.hud.SetPenalty(ctrl.Penalty())
	}
	r.hud.SetTelemetry(r.vehicle.Speed(), r.vehicle.Position())
}

// GiveUp fails the running level.
func (r *Runner) GiveUp() {
	if r.finished || r.ctrl == nil {
		return
	}
	if err := r.ctrl.HandleFailure(); err != nil {
		r.logger.Warn("give up rejected", "err", err)
	}
}

// Abort ends a run that is still in progress, recording it as errored.
func (r *Runner) Abort() {
	if r.finished || r.ctrl == nil {
		return
	}
	if err := r.ctrl.HandleError(ErrAborted); err != nil {
		r.logger.Warn("abort rejected", "err", err)
	}
}

// Restart discards the current run and starts over at the start level.
func (r *Runner) Restart() error {
	r.session.Reset()
	r.ctrl = nil
	r.finished = false
	r.paused = false
	r.runID = ""
	r.saveErr = nil
	if err := r.session.SetLevelIndex(r.startLevel); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return r.Start()
}

// AdvanceToNextLevel starts the level the session has moved on to.
func (r *Runner) AdvanceToNextLevel() {
	if err := r.beginLevel(); err != nil {
		r.logger.Error("cannot start next level", "err", err)
	}
}

// FinishRun persists and exports the run summary.
func (r *Runner) FinishRun() {
	r.finished = true
	sum := r.session.Summary()
	titles := r.Titles()

	r.logger.Info("run complete",
		"total", sum.Total,
		"time", sum.TotalTime,
		"passed", sum.Passed(),
	)

	if r.store != nil {
		id, err := r.store.SaveRun(r.course.Name(), sum, titles)
		if err != nil {
			r.saveErr = err
			r.logger.Error("cannot save run", "err", err)
		} else {
			r.runID = id
		}
	}
	if r.runID == "" {
		r.runID = storage.NewRunID()
	}

	if r.summaryOut != "" {
		s := report.New(r.runID, r.course.Name(), sum, titles, time.Now())
		if err := report.Write(r.summaryOut, s); err != nil {
			r.saveErr = errors.Join(r.saveErr, err)
			r.logger.Error("cannot export summary", "path", r.summaryOut, "err", err)
		}
	}
}

// Titles returns the titles of the levels played so far, in play order.
func (r *Runner) Titles() []string {
	scores := r.session.Scores()
	titles := make([]string, len(scores))
	first := r.startLevel
	for i := range scores {
		if idx := first + i; idx < r.course.LevelCount() {
			titles[i] = r.course.Level(idx).Title
		}
	}
	return titles
}

// Session returns the run session.
func (r *Runner) Session() *level.Session { return r.session }

// Controller returns the current level controller, or nil before Start.
func (r *Runner) Controller() *level.Controller { return r.ctrl }

// Vehicle returns the simulated vehicle.
func (r *Runner) Vehicle() *vehicle.Vehicle { return r.vehicle }

// HUD returns the heads-up display state.
func (r *Runner) HUD() *HUD { return r.hud }

// Course returns the course being driven.
func (r *Runner) Course() *course.Course { return r.course }

// TickRate returns ticks per second.
func (r *Runner) TickRate() int { return r.tickRate }

// Paused reports whether the run is paused.
func (r *Runner) Paused() bool { return r.paused }

// Finished reports whether the run has ended.
func (r *Runner) Finished() bool { return r.finished }

// RunID returns the stored run ID once the run has finished.
func (r *Runner) RunID() string { return r.runID }

// SaveErr returns the persistence or export error of the finished run.
func (r *Runner) SaveErr() error { return r.saveErr }

// Store returns the run store, which may be nil.
func (r *Runner) Store() *storage.Store { return r.store }
