package level

import (
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/drivetest/internal/core"
)

// Reason describes why a level instance ended.
type Reason string

const (
	ReasonNone      Reason = ""
	ReasonCompleted Reason = "completed" // All tasks done, proceeding immediately
	ReasonStopped   Reason = "stopped"   // All tasks done and the vehicle stopped
	ReasonTimeout   Reason = "timeout"   // Time limit exceeded
	ReasonSkipped   Reason = "skipped"   // Skip input observed
	ReasonFailed    Reason = "failed"    // HandleFailure
	ReasonManual    Reason = "manual"    // FinishLevel called by the host
	ReasonError     Reason = "error"     // HandleError
)

// Phase is the lifecycle state of a level instance.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseRunning
	PhaseFinished
)

// String returns a human-readable name for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not started"
	case PhaseRunning:
		return "running"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Env bundles the collaborators a level instance talks to.
type Env struct {
	HUD       HUD
	Telemetry Telemetry
	Clock     Clock
}

// Controller runs one level instance. It is not safe for concurrent use;
// the host delivers ticks and signals from a single goroutine.
type Controller struct {
	session *Session
	gen     int
	index   int
	info    Info

	seq   *Sequencer
	bonus *BonusTracker
	score Score

	hud       HUD
	telemetry Telemetry
	clock     Clock
	stopSpeed float64

	phase     Phase
	startTime float64
	penalty   float64
	reason    Reason
	recorded  LevelScore

	logger *log.Logger
}

func newController(s *Session, index int, info Info, tasks []Task, env Env) *Controller {
	c := &Controller{
		session:   s,
		gen:       s.gen,
		index:     index,
		info:      info,
		seq:       NewSequencer(tasks),
		bonus:     NewBonusTracker(info.TimeBonuses),
		hud:       env.HUD,
		telemetry: env.Telemetry,
		clock:     env.Clock,
		stopSpeed: s.stopSpeed,
		logger:    s.logger.With("level", index),
	}
	if c.hud == nil {
		c.hud = nopHUD{}
	}
	if c.telemetry == nil {
		c.telemetry = stillTelemetry{}
	}
	if c.clock == nil {
		c.clock = core.NewWallClock()
	}
	for _, t := range tasks {
		if a, ok := t.(Attacher); ok {
			a.Attach(c)
		}
	}
	return c
}

// Index returns the level index within the run.
func (c *Controller) Index() int { return c.index }

// Info returns the level configuration.
func (c *Controller) Info() Info { return c.info }

// Phase returns the lifecycle state.
func (c *Controller) Phase() Phase { return c.phase }

// Reason returns why the level ended, or ReasonNone while it runs.
func (c *Controller) Reason() Reason { return c.reason }

// Score returns the current level score.
func (c *Controller) Score() float64 { return c.score.Total() }

// TaskIndex returns the position of the active task.
func (c *Controller) TaskIndex() int { return c.seq.Index() }

// TaskCount returns the number of tasks in the level.
func (c *Controller) TaskCount() int { return c.seq.Len() }

// ActiveTask returns the task currently being attempted.
func (c *Controller) ActiveTask() (Task, bool) { return c.seq.Active() }

// BonusIndex returns the position of the active time bonus window.
func (c *Controller) BonusIndex() int { return c.bonus.Index() }

// Penalty returns the accumulated time penalty in seconds.
func (c *Controller) Penalty() float64 { return c.penalty }

// Recorded returns the entry appended to the run when the level ended.
func (c *Controller) Recorded() (LevelScore, bool) {
	return c.recorded, c.phase == PhaseFinished
}

// Elapsed returns seconds since HandleStart, or 0 before it.
func (c *Controller) Elapsed() float64 {
	if c.phase == PhaseNotStarted {
		return 0
	}
	return c.clock.Now() - c.startTime
}

// HandleStart records the start time, initializes the HUD and enables the
// first task.
func (c *Controller) HandleStart() error {
	if c.phase != PhaseNotStarted {
		c.logger.Warn("level start rejected", "phase", c.phase)
		return ErrAlreadyStarted
	}

	c.phase = PhaseRunning
	c.startTime = c.clock.Now()

	c.hud.SetLevelInfo(c.index, c.info.Title, c.info.Description)
	c.hud.UpdateScore(c.score.Total(), c.info.MaxPoints)
	c.hud.UpdateTime(0, c.info.TimeLimit)
	if c.bonus.Scheduled() {
		c.hud.SetTimeBonus(c.bonus.Display(c.info.TimeLimit))
	} else {
		c.hud.SetMaxTime(c.info.TimeLimit)
	}

	c.seq.Start()
	c.primeActive()
	c.logger.Info("level started", "title", c.info.Title, "tasks", c.seq.Len())
	return nil
}

// CompleteTask accepts a completion signal for the active task.
// Any other task is rejected with ErrTaskNotActive and nothing changes.
func (c *Controller) CompleteTask(task Task) error {
	switch c.phase {
	case PhaseNotStarted:
		c.logger.Warn("task completed before start")
		return ErrNotStarted
	case PhaseFinished:
		c.logger.Warn("task completed after finish", "reason", c.reason)
		return ErrAlreadyFinished
	}

	if !c.seq.IsActive(task) {
		c.logger.Warn("completion from inactive task", "active", c.seq.Index(), "count", c.seq.Len())
		return ErrTaskNotActive
	}

	task.Disable()
	points := task.Points()
	if !(points >= 0) {
		c.logger.Warn("ignoring task points", "task", c.seq.Index(), "points", points)
	}
	c.score.Add(points)
	c.hud.UpdateScore(c.score.Total(), c.info.MaxPoints)
	c.logger.Debug("task completed", "task", c.seq.Index(), "points", points)

	if next, ok := c.seq.Advance(); ok {
		next.Enable()
		c.primeActive()
		return nil
	}

	if c.info.DoNotProceedUntilStopped {
		c.logger.Debug("all tasks complete, waiting for stop")
		return nil
	}
	return c.finish(ReasonCompleted)
}

func (c *Controller) primeActive() {
	if active, ok := c.seq.Active(); ok {
		if p, ok := active.(Primer); ok {
			p.Prime(c.telemetry)
		}
	}
}

// Tick advances time-dependent state once per scheduling quantum and ends
// the level when a termination condition holds. Ticks after the level has
// finished are ignored.
func (c *Controller) Tick(in core.InputFrame) error {
	switch c.phase {
	case PhaseNotStarted:
		c.logger.Warn("tick before start")
		return ErrNotStarted
	case PhaseFinished:
		return nil
	}

	now := c.clock.Now()
	elapsed := now - c.startTime
	c.hud.UpdateTime(elapsed, c.info.TimeLimit)

	if c.bonus.Advance(elapsed) {
		c.hud.SetTimeBonus(c.bonus.Display(c.info.TimeLimit))
	}

	if active, ok := c.seq.Active(); ok {
		if obs, ok := active.(Observer); ok {
			obs.Observe(c.telemetry, now)
			if c.phase == PhaseFinished {
				return nil
			}
		}
	}

	switch {
	case c.seq.Done() && !c.info.DoNotProceedUntilStopped:
		return c.finish(ReasonCompleted)
	case c.seq.Done() && c.telemetry.Speed() < c.stopSpeed:
		return c.finish(ReasonStopped)
	case elapsed > c.info.TimeLimit:
		return c.finish(ReasonTimeout)
	case in.Has(core.ActionSkip):
		return c.finish(ReasonSkipped)
	}
	return nil
}

// AddTimePenalty adds seconds to the time recorded at finalization.
func (c *Controller) AddTimePenalty(seconds float64) {
	if seconds <= 0 || c.phase == PhaseFinished {
		return
	}
	c.penalty += seconds
}

// FinishLevel finalizes the level on behalf of the host.
func (c *Controller) FinishLevel() error {
	return c.finish(ReasonManual)
}

// HandleFailure ends the level immediately through the normal finalize path.
func (c *Controller) HandleFailure() error {
	return c.finish(ReasonFailed)
}

// HandleError ends the level abnormally: the score and time so far are
// recorded and the run is flagged as errored, but the required-level and
// advance decisions are skipped and the run ends.
func (c *Controller) HandleError(cause error) error {
	if c.phase == PhaseFinished {
		c.logger.Warn("error signal after finish", "reason", c.reason, "err", cause)
		return ErrAlreadyFinished
	}

	elapsed := 0.0
	if c.phase == PhaseRunning {
		elapsed = c.clock.Now() - c.startTime + c.penalty
	}

	c.phase = PhaseFinished
	c.reason = ReasonError
	c.seq.Stop()
	c.recorded = LevelScore{Score: c.score.Total(), Time: elapsed}

	c.logger.Error("level aborted", "err", cause, "score", c.recorded.Score, "time", c.recorded.Time)
	c.session.abort(c)
	return nil
}

// finish is the single finalization path. All side effects happen only on
// the transition into PhaseFinished.
func (c *Controller) finish(reason Reason) error {
	switch c.phase {
	case PhaseFinished:
		c.logger.Warn("level finalized twice", "reason", reason, "first", c.reason)
		return ErrAlreadyFinished
	case PhaseNotStarted:
		c.logger.Warn("finalize before start", "reason", reason)
		return ErrNotStarted
	}

	c.phase = PhaseFinished
	c.reason = reason
	c.seq.Stop()

	if c.seq.Done() {
		if w, ok := c.bonus.Current(); ok {
			c.score.Add(w.Bonus)
			c.hud.UpdateScore(c.score.Total(), c.info.MaxPoints)
		}
	}

	c.recorded = LevelScore{
		Score: c.score.Total(),
		Time:  c.clock.Now() - c.startTime + c.penalty,
	}

	c.logger.Info("level finished",
		"reason", reason,
		"score", c.recorded.Score,
		"time", c.recorded.Time,
		"tasks", c.seq.Index(),
	)
	c.session.conclude(c)
	return nil
}

type nopHUD struct{}

func (nopHUD) SetLevelInfo(int, string, string) {}
func (nopHUD) UpdateScore(float64, float64) {}
func (nopHUD) UpdateTime(float64, float64) {}
func (nopHUD) SetTimeBonus(float64, float64, bool) {}
func (nopHUD) SetMaxTime(float64) {}

type stillTelemetry struct{}

func (stillTelemetry) Speed() float64 { return 0 }
