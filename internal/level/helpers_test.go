package level

import (
	"github.com/vovakirdan/drivetest/internal/core"
)

// testCourse is a fixed list of levels.
type testCourse []Info

func (c testCourse) LevelCount() int      { return len(c) }
func (c testCourse) Level(index int) Info { return c[index] }

// testTask is a task whose completion is triggered by the test.
type testTask struct {
	points    float64
	enabled   bool
	enables   int
	disables  int
	completer Completer
}

func newTestTask(points float64) *testTask {
	return &testTask{points: points}
}

func (t *testTask) Enable()            { t.enabled = true; t.enables++ }
func (t *testTask) Disable()           { t.enabled = false; t.disables++ }
func (t *testTask) Points() float64    { return t.points }
func (t *testTask) Attach(c Completer) { t.completer = c }
func (t *testTask) complete() error    { return t.completer.CompleteTask(t) }

// speedTask completes itself when observed above a target speed.
type speedTask struct {
	testTask
	target float64
}

func (t *speedTask) Observe(tel Telemetry, _ float64) {
	if t.enabled && tel.Speed() >= t.target {
		t.completer.CompleteTask(t) //nolint:errcheck // Controller logs rejections
	}
}

// testHUD records everything the controller displays.
type testHUD struct {
	index      int
	title      string
	score      float64
	maxScore   float64
	elapsed    float64
	limit      float64
	threshold  float64
	bonus      float64
	final      bool
	maxTime    float64
	scoreCalls int
	bonusCalls int
	maxTimeSet bool
}

func (h *testHUD) SetLevelInfo(index int, title, _ string) {
	h.index = index
	h.title = title
}

func (h *testHUD) UpdateScore(current, max float64) {
	h.score = current
	h.maxScore = max
	h.scoreCalls++
}

func (h *testHUD) UpdateTime(elapsed, limit float64) {
	h.elapsed = elapsed
	h.limit = limit
}

func (h *testHUD) SetTimeBonus(threshold, bonus float64, isFinal bool) {
	h.threshold = threshold
	h.bonus = bonus
	h.final = isFinal
	h.bonusCalls++
}

func (h *testHUD) SetMaxTime(limit float64) {
	h.maxTime = limit
	h.maxTimeSet = true
}

// testVehicle is settable telemetry.
type testVehicle struct {
	speed float64
}

func (v *testVehicle) Speed() float64 { return v.speed }

// testTransition counts facade calls.
type testTransition struct {
	finished  int
	advanced  int
	onAdvance func()
}

func (t *testTransition) FinishRun() { t.finished++ }

func (t *testTransition) AdvanceToNextLevel() {
	t.advanced++
	if t.onAdvance != nil {
		t.onAdvance()
	}
}

// rig wires a session and a started controller for a single test.
type rig struct {
	session    *Session
	ctrl       *Controller
	hud        *testHUD
	vehicle    *testVehicle
	clock      *core.SimClock
	transition *testTransition
}

func newRig(course testCourse, tasks ...Task) *rig {
	r := &rig{
		hud:        &testHUD{},
		vehicle:    &testVehicle{},
		clock:      core.NewSimClock(100), // Non-zero origin catches missing start offsets
		transition: &testTransition{},
	}
	r.session = NewSession(course, WithTransitioner(r.transition))
	ctrl, err := r.session.StartLevel(tasks, r.env())
	if err != nil {
		panic(err)
	}
	r.ctrl = ctrl
	return r
}

func (r *rig) env() Env {
	return Env{HUD: r.hud, Telemetry: r.vehicle, Clock: r.clock}
}

// advance moves the clock by dt and ticks with no input.
func (r *rig) advance(dt float64) error {
	r.clock.Advance(dt)
	return r.ctrl.Tick(core.NewInputFrame())
}

// advanceTo ticks in steps of dt until elapsed reaches target or the level ends.
func (r *rig) advanceTo(target, dt float64) {
	for r.ctrl.Phase() == PhaseRunning && r.ctrl.Elapsed()+dt <= target+1e-9 {
		r.advance(dt) //nolint:errcheck // Ticks while running never fail
	}
}

func basicLevel() Info {
	return Info{
		Title:     "Basic",
		MaxPoints: 15,
		TimeLimit: 60,
	}
}
