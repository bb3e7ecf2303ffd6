package level

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/drivetest/internal/core"
)

func TestTwoTasksAdvanceToNextLevel(t *testing.T) {
	t1, t2 := newTestTask(5), newTestTask(10)
	r := newRig(testCourse{basicLevel(), basicLevel()}, t1, t2)

	if err := r.ctrl.HandleStart(); err != nil {
		t.Fatalf("HandleStart() failed: %v", err)
	}
	if !t1.enabled || t2.enabled {
		t.Fatal("Only the first task should be enabled after start")
	}

	r.advanceTo(4, 1)
	if err := t1.complete(); err != nil {
		t.Fatalf("Completing first task failed: %v", err)
	}
	if t1.enabled || !t2.enabled {
		t.Error("Completing the first task should disable it and enable the second")
	}

	r.advanceTo(10, 1)
	if err := t2.complete(); err != nil {
		t.Fatalf("Completing second task failed: %v", err)
	}

	if r.ctrl.Phase() != PhaseFinished {
		t.Fatalf("Level should be finished, got %s", r.ctrl.Phase())
	}
	if r.ctrl.Reason() != ReasonCompleted {
		t.Errorf("Reason = %q, expected %q", r.ctrl.Reason(), ReasonCompleted)
	}

	scores := r.session.Scores()
	if len(scores) != 1 {
		t.Fatalf("Expected 1 level score, got %d", len(scores))
	}
	if scores[0].Score != 15 {
		t.Errorf("Score = %v, expected 15", scores[0].Score)
	}
	if scores[0].Time != 10 {
		t.Errorf("Time = %v, expected 10", scores[0].Time)
	}
	if r.transition.advanced != 1 || r.transition.finished != 0 {
		t.Errorf("Expected one advance and no finish, got advanced=%d finished=%d",
			r.transition.advanced, r.transition.finished)
	}
	if r.session.LevelIndex() != 1 {
		t.Errorf("LevelIndex() = %d, expected 1", r.session.LevelIndex())
	}
	if r.session.RequiredFailed() {
		t.Error("Run should not be marked as required-failed")
	}
}

func bonusLevel() Info {
	return Info{
		Title:                    "Bonus",
		MaxPoints:                10,
		TimeLimit:                60,
		TimeBonuses:              []TimeBonus{{Threshold: 30, Bonus: 5}, {Threshold: Infinite, Bonus: 2}},
		DoNotProceedUntilStopped: true,
	}
}

func TestBonusAwardedForWindowActiveAtFinalize(t *testing.T) {
	task := newTestTask(10)
	r := newRig(testCourse{bonusLevel(), basicLevel()}, task)
	r.vehicle.speed = 10
	r.ctrl.HandleStart() //nolint:errcheck

	r.advanceTo(20, 1)
	if err := task.complete(); err != nil {
		t.Fatalf("Completing task failed: %v", err)
	}
	if r.ctrl.Phase() != PhaseRunning {
		t.Fatal("Level should wait for the vehicle to stop")
	}

	r.advanceTo(25, 1)
	r.vehicle.speed = 0
	r.advance(1) //nolint:errcheck

	if r.ctrl.Reason() != ReasonStopped {
		t.Fatalf("Reason = %q, expected %q", r.ctrl.Reason(), ReasonStopped)
	}
	if got := r.session.Scores()[0].Score; got != 15 {
		t.Errorf("Score = %v, expected 15 (task + first window bonus)", got)
	}
}

func TestBonusFromLaterWindowOnTimeout(t *testing.T) {
	task := newTestTask(10)
	r := newRig(testCourse{bonusLevel(), basicLevel()}, task)
	r.vehicle.speed = 10 // Never stops
	r.ctrl.HandleStart() //nolint:errcheck

	r.advanceTo(20, 1)
	task.complete() //nolint:errcheck

	r.advanceTo(61, 1)

	if r.ctrl.Reason() != ReasonTimeout {
		t.Fatalf("Reason = %q, expected %q", r.ctrl.Reason(), ReasonTimeout)
	}
	if r.ctrl.BonusIndex() != 1 {
		t.Errorf("BonusIndex() = %d, expected 1", r.ctrl.BonusIndex())
	}
	if got := r.session.Scores()[0].Score; got != 12 {
		t.Errorf("Score = %v, expected 12 (task + final window bonus)", got)
	}
	if got := r.session.Scores()[0].Time; got != 61 {
		t.Errorf("Time = %v, expected 61", got)
	}
}

func TestNoBonusWithoutAllTasks(t *testing.T) {
	t1, t2 := newTestTask(5), newTestTask(5)
	info := bonusLevel()
	info.DoNotProceedUntilStopped = false
	r := newRig(testCourse{info}, t1, t2)
	r.ctrl.HandleStart() //nolint:errcheck

	t1.complete()          //nolint:errcheck
	r.ctrl.HandleFailure() //nolint:errcheck

	if got := r.session.Scores()[0].Score; got != 5 {
		t.Errorf("Score = %v, expected 5 with no bonus", got)
	}
}

func TestHUDFinalWindowShowsTimeLimit(t *testing.T) {
	r := newRig(testCourse{bonusLevel()}, newTestTask(10))
	r.ctrl.HandleStart() //nolint:errcheck

	if r.hud.threshold != 30 || r.hud.bonus != 5 || r.hud.final {
		t.Errorf("Initial bonus display = (%v, %v, %v), expected (30, 5, false)",
			r.hud.threshold, r.hud.bonus, r.hud.final)
	}
	if r.hud.maxTimeSet {
		t.Error("SetMaxTime should not be used when a bonus schedule exists")
	}

	r.advanceTo(31, 1)

	if r.hud.threshold != 60 {
		t.Errorf("Final window threshold displayed as %v, expected time limit 60", r.hud.threshold)
	}
	if r.hud.bonus != 2 || !r.hud.final {
		t.Errorf("Final window display = (%v, %v), expected (2, true)", r.hud.bonus, r.hud.final)
	}
}

func TestHUDMaxTimeWithoutSchedule(t *testing.T) {
	r := newRig(testCourse{basicLevel()}, newTestTask(5))
	r.ctrl.HandleStart() //nolint:errcheck

	if !r.hud.maxTimeSet || r.hud.maxTime != 60 {
		t.Errorf("Expected SetMaxTime(60), got set=%v value=%v", r.hud.maxTimeSet, r.hud.maxTime)
	}
	if r.hud.bonusCalls != 0 {
		t.Errorf("SetTimeBonus should not be called, got %d calls", r.hud.bonusCalls)
	}
	if r.hud.title != "Basic" || r.hud.index != 0 {
		t.Errorf("SetLevelInfo got (%d, %q), expected (0, \"Basic\")", r.hud.index, r.hud.title)
	}
}

func TestBonusIndexMonotonic(t *testing.T) {
	info := Info{
		Title:     "Windows",
		MaxPoints: 1,
		TimeLimit: 100,
		TimeBonuses: []TimeBonus{
			{Threshold: 10, Bonus: 30},
			{Threshold: 20, Bonus: 20},
			{Threshold: 30, Bonus: 10},
			{Threshold: Infinite, Bonus: 1},
		},
	}
	r := newRig(testCourse{info}, newTestTask(1))
	r.ctrl.HandleStart() //nolint:errcheck

	last := r.ctrl.BonusIndex()
	for i := 0; i < 90; i++ {
		r.advance(1) //nolint:errcheck
		idx := r.ctrl.BonusIndex()
		if idx < last {
			t.Fatalf("Bonus index decreased from %d to %d", last, idx)
		}
		if idx >= len(info.TimeBonuses) {
			t.Fatalf("Bonus index %d out of range", idx)
		}
		last = idx
	}
	if last != 3 {
		t.Errorf("Final bonus index = %d, expected 3", last)
	}
}

func TestCompleteInactiveTaskRejected(t *testing.T) {
	t1, t2 := newTestTask(5), newTestTask(10)
	r := newRig(testCourse{basicLevel()}, t1, t2)
	r.ctrl.HandleStart() //nolint:errcheck

	scoreCalls := r.hud.scoreCalls
	err := r.ctrl.CompleteTask(t2)
	if !errors.Is(err, ErrTaskNotActive) {
		t.Fatalf("Expected ErrTaskNotActive, got %v", err)
	}
	if r.ctrl.TaskIndex() != 0 {
		t.Errorf("TaskIndex() = %d, expected 0", r.ctrl.TaskIndex())
	}
	if r.ctrl.Score() != 0 {
		t.Errorf("Score() = %v, expected 0", r.ctrl.Score())
	}
	if !t1.enabled || t2.enabled || t2.disables != 0 {
		t.Error("Rejected completion should not touch task state")
	}
	if r.hud.scoreCalls != scoreCalls {
		t.Error("Rejected completion should not update the HUD")
	}

	if err := r.ctrl.CompleteTask(newTestTask(99)); !errors.Is(err, ErrTaskNotActive) {
		t.Errorf("Foreign task should be rejected, got %v", err)
	}
	if err := r.ctrl.CompleteTask(nil); !errors.Is(err, ErrTaskNotActive) {
		t.Errorf("Nil task should be rejected, got %v", err)
	}
}

func TestTaskIndexStaysInRange(t *testing.T) {
	tasks := []*testTask{newTestTask(1), newTestTask(2), newTestTask(3)}
	r := newRig(testCourse{{Title: "Three", MaxPoints: 6, TimeLimit: 60}},
		tasks[0], tasks[1], tasks[2])
	r.ctrl.HandleStart() //nolint:errcheck

	want := 0.0
	for i, task := range tasks {
		active, ok := r.ctrl.ActiveTask()
		if !ok || active != Task(task) {
			t.Fatalf("Active task at step %d is not tasks[%d]", i, i)
		}
		if err := task.complete(); err != nil {
			t.Fatalf("Completing task %d failed: %v", i, err)
		}
		want += task.points
		if r.ctrl.TaskIndex() != i+1 {
			t.Errorf("TaskIndex() = %d, expected %d", r.ctrl.TaskIndex(), i+1)
		}
		if r.ctrl.Score() != want {
			t.Errorf("Score() = %v, expected %v", r.ctrl.Score(), want)
		}
	}

	if r.ctrl.TaskIndex() != r.ctrl.TaskCount() {
		t.Error("TaskIndex should equal TaskCount when all tasks are done")
	}
	if _, ok := r.ctrl.ActiveTask(); ok {
		t.Error("No task should be active after completion")
	}
}

func TestDoubleFinalizeRejected(t *testing.T) {
	r := newRig(testCourse{basicLevel(), basicLevel()}, newTestTask(5))
	r.ctrl.HandleStart() //nolint:errcheck
	r.advance(3)         //nolint:errcheck

	if err := r.ctrl.FinishLevel(); err != nil {
		t.Fatalf("First FinishLevel() failed: %v", err)
	}
	if err := r.ctrl.FinishLevel(); !errors.Is(err, ErrAlreadyFinished) {
		t.Errorf("Second FinishLevel() should return ErrAlreadyFinished, got %v", err)
	}
	if err := r.ctrl.HandleFailure(); !errors.Is(err, ErrAlreadyFinished) {
		t.Errorf("HandleFailure after finish should return ErrAlreadyFinished, got %v", err)
	}
	if err := r.ctrl.HandleError(errors.New("late")); !errors.Is(err, ErrAlreadyFinished) {
		t.Errorf("HandleError after finish should return ErrAlreadyFinished, got %v", err)
	}

	if len(r.session.Scores()) != 1 {
		t.Errorf("Expected 1 level score, got %d", len(r.session.Scores()))
	}
	if r.transition.advanced != 1 {
		t.Errorf("Expected 1 advance, got %d", r.transition.advanced)
	}
	if r.session.LevelIndex() != 1 {
		t.Errorf("LevelIndex() = %d, expected 1", r.session.LevelIndex())
	}
	if r.session.Errored() {
		t.Error("Rejected HandleError should not flag the run")
	}
}

func TestFinalizeBeforeStartRejected(t *testing.T) {
	r := newRig(testCourse{basicLevel()}, newTestTask(5))

	if err := r.ctrl.FinishLevel(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("FinishLevel before start should return ErrNotStarted, got %v", err)
	}
	if err := r.ctrl.Tick(core.NewInputFrame()); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Tick before start should return ErrNotStarted, got %v", err)
	}
	if len(r.session.Scores()) != 0 {
		t.Error("Nothing should be recorded before start")
	}
	if r.ctrl.Phase() != PhaseNotStarted {
		t.Errorf("Phase = %s, expected not started", r.ctrl.Phase())
	}
}

func TestStartTwiceRejected(t *testing.T) {
	r := newRig(testCourse{basicLevel()}, newTestTask(5))
	r.ctrl.HandleStart() //nolint:errcheck
	r.clock.Advance(5)

	if err := r.ctrl.HandleStart(); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("Expected ErrAlreadyStarted, got %v", err)
	}
	if r.ctrl.Elapsed() != 5 {
		t.Errorf("Second start should not reset the start time, elapsed=%v", r.ctrl.Elapsed())
	}
}

func TestRequiredLevelFailureEndsRun(t *testing.T) {
	required := basicLevel()
	required.IsRequired = true
	t1, t2 := newTestTask(5), newTestTask(10)
	r := newRig(testCourse{required, basicLevel(), basicLevel()}, t1, t2)
	r.ctrl.HandleStart() //nolint:errcheck

	t1.complete() //nolint:errcheck
	r.advanceTo(61, 1)

	if r.ctrl.Reason() != ReasonTimeout {
		t.Fatalf("Reason = %q, expected timeout", r.ctrl.Reason())
	}
	if !r.session.RequiredFailed() {
		t.Error("Run should be marked as required-failed")
	}
	if r.transition.finished != 1 || r.transition.advanced != 0 {
		t.Errorf("Expected finish=1 advance=0, got finish=%d advance=%d",
			r.transition.finished, r.transition.advanced)
	}
	if r.session.LevelIndex() != 0 {
		t.Errorf("LevelIndex() = %d, expected 0", r.session.LevelIndex())
	}
	if !r.session.Completed() {
		t.Error("Run should be completed")
	}
}

func TestRequiredLevelAtMaxAdvances(t *testing.T) {
	required := basicLevel()
	required.IsRequired = true
	t1, t2 := newTestTask(5), newTestTask(10)
	r := newRig(testCourse{required, basicLevel()}, t1, t2)
	r.ctrl.HandleStart() //nolint:errcheck

	t1.complete() //nolint:errcheck
	t2.complete() //nolint:errcheck

	if r.session.RequiredFailed() {
		t.Error("Score equal to MaxPoints should pass a required level")
	}
	if r.transition.advanced != 1 {
		t.Errorf("Expected advance, got %d", r.transition.advanced)
	}
}

func TestLastLevelFinishesRun(t *testing.T) {
	required := basicLevel()
	required.IsRequired = true
	r := newRig(testCourse{required}, newTestTask(5))
	r.ctrl.HandleStart()   //nolint:errcheck
	r.ctrl.HandleFailure() //nolint:errcheck

	if r.transition.finished != 1 || r.transition.advanced != 0 {
		t.Errorf("Expected finish=1 advance=0, got finish=%d advance=%d",
			r.transition.finished, r.transition.advanced)
	}
	if r.session.RequiredFailed() {
		t.Error("Last level is checked before the required rule")
	}
}

func TestHandleErrorRecordsPartialScore(t *testing.T) {
	required := basicLevel()
	required.IsRequired = true
	t1, t2 := newTestTask(5), newTestTask(10)
	r := newRig(testCourse{required, basicLevel()}, t1, t2)
	r.ctrl.HandleStart() //nolint:errcheck

	r.advanceTo(7, 1)
	t1.complete() //nolint:errcheck
	r.ctrl.AddTimePenalty(2)

	if err := r.ctrl.HandleError(errors.New("simulator lost")); err != nil {
		t.Fatalf("HandleError() failed: %v", err)
	}

	scores := r.session.Scores()
	if len(scores) != 1 {
		t.Fatalf("Expected exactly 1 level score, got %d", len(scores))
	}
	if scores[0].Score != 5 || scores[0].Time != 9 {
		t.Errorf("Recorded %+v, expected {Score:5 Time:9}", scores[0])
	}
	if !r.session.Errored() {
		t.Error("Run should be flagged as errored")
	}
	if r.session.RequiredFailed() {
		t.Error("HandleError should not evaluate the required-level rule")
	}
	if r.transition.advanced != 0 {
		t.Error("HandleError should not advance to the next level")
	}
	if t2.enabled {
		t.Error("Tasks should be disabled after an error")
	}
	if r.ctrl.Reason() != ReasonError {
		t.Errorf("Reason = %q, expected error", r.ctrl.Reason())
	}
}

func TestHandleErrorBeforeStartRecordsZeroTime(t *testing.T) {
	r := newRig(testCourse{basicLevel()}, newTestTask(5))

	if err := r.ctrl.HandleError(errors.New("load failed")); err != nil {
		t.Fatalf("HandleError() failed: %v", err)
	}
	scores := r.session.Scores()
	if len(scores) != 1 || scores[0].Time != 0 || scores[0].Score != 0 {
		t.Errorf("Expected one zero entry, got %+v", scores)
	}
}

func TestDeferredFinishWaitsForStop(t *testing.T) {
	info := basicLevel()
	info.DoNotProceedUntilStopped = true
	task := newTestTask(15)
	r := newRig(testCourse{info}, task)
	r.vehicle.speed = 8
	r.ctrl.HandleStart() //nolint:errcheck

	task.complete() //nolint:errcheck
	for i := 0; i < 5; i++ {
		r.advance(1) //nolint:errcheck
	}
	if r.ctrl.Phase() != PhaseRunning {
		t.Fatal("Level should keep running while the vehicle moves")
	}

	r.vehicle.speed = DefaultStopSpeed // Not strictly below the threshold
	r.advance(1)                       //nolint:errcheck
	if r.ctrl.Phase() != PhaseRunning {
		t.Fatal("Speed equal to the threshold does not count as stopped")
	}

	r.vehicle.speed = 0.1
	r.advance(1) //nolint:errcheck
	if r.ctrl.Reason() != ReasonStopped {
		t.Errorf("Reason = %q, expected stopped", r.ctrl.Reason())
	}
}

func TestStopDoesNotFinishWithTasksLeft(t *testing.T) {
	info := basicLevel()
	info.DoNotProceedUntilStopped = true
	r := newRig(testCourse{info}, newTestTask(15))
	r.ctrl.HandleStart() //nolint:errcheck

	r.advance(1) //nolint:errcheck
	if r.ctrl.Phase() != PhaseRunning {
		t.Error("A stopped vehicle should not finish a level with tasks left")
	}
}

func TestTimeoutIsStrict(t *testing.T) {
	r := newRig(testCourse{basicLevel()}, newTestTask(5))
	r.ctrl.HandleStart() //nolint:errcheck

	r.advanceTo(60, 1)
	if r.ctrl.Phase() != PhaseRunning {
		t.Fatal("Elapsed equal to the limit should not time out")
	}
	r.advance(0.5) //nolint:errcheck
	if r.ctrl.Reason() != ReasonTimeout {
		t.Errorf("Reason = %q, expected timeout", r.ctrl.Reason())
	}
}

func TestSkipInputFinishes(t *testing.T) {
	r := newRig(testCourse{basicLevel(), basicLevel()}, newTestTask(5))
	r.ctrl.HandleStart() //nolint:errcheck

	in := core.NewInputFrame()
	in.Set(core.ActionSkip)
	r.clock.Advance(2)
	if err := r.ctrl.Tick(in); err != nil {
		t.Fatalf("Tick() failed: %v", err)
	}
	if r.ctrl.Reason() != ReasonSkipped {
		t.Errorf("Reason = %q, expected skipped", r.ctrl.Reason())
	}
	if r.transition.advanced != 1 {
		t.Error("Skipping a non-required level should advance")
	}
}

func TestObserverTaskCompletesOnTick(t *testing.T) {
	task := &speedTask{testTask: testTask{points: 15}, target: 10}
	r := newRig(testCourse{basicLevel()}, task)
	r.ctrl.HandleStart() //nolint:errcheck

	r.vehicle.speed = 5
	r.advance(1) //nolint:errcheck
	if r.ctrl.TaskIndex() != 0 {
		t.Fatal("Task should not complete below target speed")
	}

	r.vehicle.speed = 12
	r.advance(1) //nolint:errcheck
	if r.ctrl.Phase() != PhaseFinished || r.ctrl.Score() != 15 {
		t.Errorf("Expected finished with 15 points, got %s with %v", r.ctrl.Phase(), r.ctrl.Score())
	}
	if r.hud.elapsed != 2 {
		t.Errorf("HUD elapsed = %v, expected 2", r.hud.elapsed)
	}
}

func TestEmptyLevelCompletesOnFirstTick(t *testing.T) {
	r := newRig(testCourse{basicLevel()})
	r.ctrl.HandleStart() //nolint:errcheck
	r.advance(1)         //nolint:errcheck

	if r.ctrl.Reason() != ReasonCompleted {
		t.Errorf("Reason = %q, expected completed", r.ctrl.Reason())
	}
}

func TestTimePenaltyAddedToRecordedTime(t *testing.T) {
	r := newRig(testCourse{basicLevel()}, newTestTask(5))
	r.ctrl.HandleStart() //nolint:errcheck
	r.advance(10)        //nolint:errcheck

	r.ctrl.AddTimePenalty(3)
	r.ctrl.AddTimePenalty(-1) // ignored
	r.ctrl.FinishLevel()      //nolint:errcheck
	r.ctrl.AddTimePenalty(50) // ignored after finish

	if got := r.session.Scores()[0].Time; got != 13 {
		t.Errorf("Time = %v, expected 13", got)
	}
	if r.ctrl.Penalty() != 3 {
		t.Errorf("Penalty() = %v, expected 3", r.ctrl.Penalty())
	}
}

func TestTickAfterFinishIgnored(t *testing.T) {
	r := newRig(testCourse{basicLevel()}, newTestTask(5))
	r.ctrl.HandleStart() //nolint:errcheck
	r.ctrl.FinishLevel() //nolint:errcheck

	if err := r.advance(100); err != nil {
		t.Errorf("Tick after finish should be a no-op, got %v", err)
	}
	if len(r.session.Scores()) != 1 {
		t.Error("Tick after finish should not record again")
	}
}

func TestInvalidTaskPointsCreditNothing(t *testing.T) {
	var buf bytes.Buffer
	t1, t2, t3 := newTestTask(math.NaN()), newTestTask(-4), newTestTask(5)
	hud := &testHUD{}
	s := NewSession(testCourse{basicLevel()}, WithLogger(log.New(&buf)))
	ctrl, err := s.StartLevel([]Task{t1, t2, t3}, Env{HUD: hud, Telemetry: &testVehicle{}, Clock: core.NewSimClock(0)})
	if err != nil {
		t.Fatalf("StartLevel() failed: %v", err)
	}
	if err := ctrl.HandleStart(); err != nil {
		t.Fatalf("HandleStart() failed: %v", err)
	}

	if err := t1.complete(); err != nil {
		t.Fatalf("Completing NaN-point task failed: %v", err)
	}
	if err := t2.complete(); err != nil {
		t.Fatalf("Completing negative-point task failed: %v", err)
	}
	if !t3.enabled {
		t.Fatal("Tasks with bad points should still advance the sequence")
	}
	if ctrl.Score() != 0 || hud.score != 0 {
		t.Errorf("Score = %v (HUD %v), expected 0", ctrl.Score(), hud.score)
	}
	if got := strings.Count(buf.String(), "ignoring task points"); got != 2 {
		t.Errorf("Got %d warnings, expected 2:\n%s", got, buf.String())
	}

	if err := t3.complete(); err != nil {
		t.Fatalf("Completing last task failed: %v", err)
	}
	if got := s.Scores()[0].Score; got != 5 {
		t.Errorf("Recorded score = %v, expected 5", got)
	}
}
