package level

import "testing"

func TestSequencer(t *testing.T) {
	a, b := newTestTask(1), newTestTask(2)
	tasks := []Task{a, b}
	s := NewSequencer(tasks)
	tasks[0] = nil // The sequencer owns its copy

	if s.Len() != 2 || s.Index() != 0 || s.Done() {
		t.Fatalf("Unexpected initial state: len=%d index=%d done=%v", s.Len(), s.Index(), s.Done())
	}

	s.Start()
	if !a.enabled || b.enabled {
		t.Error("Start should enable only the first task")
	}
	if !s.IsActive(a) || s.IsActive(b) {
		t.Error("First task should be the only active one")
	}

	next, ok := s.Advance()
	if !ok || next != Task(b) {
		t.Fatal("Advance should return the second task")
	}
	if !a.enabled || b.enabled {
		t.Error("Advance should not change enabled state")
	}

	if _, ok := s.Advance(); ok {
		t.Error("Advance past the last task should report no task")
	}
	if !s.Done() || s.Index() != 2 {
		t.Errorf("Expected done at index 2, got index %d", s.Index())
	}
	if _, ok := s.Advance(); ok || s.Index() != 2 {
		t.Error("Advance when done should not move the index")
	}
	if s.IsActive(b) {
		t.Error("No task is active when done")
	}
}

func TestSequencerStop(t *testing.T) {
	a := newTestTask(1)
	s := NewSequencer([]Task{a})
	s.Start()
	s.Stop()

	if a.enabled || a.disables != 1 {
		t.Errorf("Stop should disable the active task once, got disables=%d", a.disables)
	}
	if s.Index() != 0 {
		t.Error("Stop should not advance")
	}

	empty := NewSequencer(nil)
	empty.Start()
	empty.Stop()
	if !empty.Done() {
		t.Error("Empty sequencer should be done")
	}
}

func TestBonusTracker(t *testing.T) {
	b := NewBonusTracker([]TimeBonus{
		{Threshold: 10, Bonus: 3},
		{Threshold: 20, Bonus: 2},
		{Threshold: Infinite, Bonus: 1},
	})

	tests := []struct {
		elapsed float64
		moved   bool
		index   int
	}{
		{5, false, 0},
		{10, false, 0}, // Threshold is exclusive
		{10.5, true, 1},
		{25, true, 2},
		{1000, false, 2}, // Never past the last window
		{3, false, 2},    // Never backwards
	}
	for _, tt := range tests {
		moved := b.Advance(tt.elapsed)
		if moved != tt.moved || b.Index() != tt.index {
			t.Errorf("Advance(%v) = %v index %d, expected %v index %d",
				tt.elapsed, moved, b.Index(), tt.moved, tt.index)
		}
	}
}

func TestBonusTrackerSkipsWindows(t *testing.T) {
	b := NewBonusTracker([]TimeBonus{{10, 3}, {20, 2}, {30, 1}, {Infinite, 0}})
	if !b.Advance(35) || b.Index() != 3 {
		t.Errorf("Index = %d, expected 3 after a single large step", b.Index())
	}
}

func TestBonusTrackerDisplay(t *testing.T) {
	b := NewBonusTracker([]TimeBonus{{Threshold: 30, Bonus: 5}, {Threshold: Infinite, Bonus: 2}})

	th, bonus, final := b.Display(60)
	if th != 30 || bonus != 5 || final {
		t.Errorf("Display = (%v, %v, %v), expected (30, 5, false)", th, bonus, final)
	}

	b.Advance(31)
	th, bonus, final = b.Display(60)
	if th != 60 || bonus != 2 || !final {
		t.Errorf("Display = (%v, %v, %v), expected (60, 2, true)", th, bonus, final)
	}

	empty := NewBonusTracker(nil)
	if empty.Scheduled() {
		t.Error("Empty schedule should not be scheduled")
	}
	if _, ok := empty.Current(); ok {
		t.Error("Empty schedule has no current window")
	}
	if empty.Advance(100) {
		t.Error("Empty schedule never moves")
	}
}

func TestScore(t *testing.T) {
	var s Score
	s.Add(5)
	s.Add(0)
	s.Add(-3)
	s.Add(2.5)

	if s.Total() != 7.5 {
		t.Errorf("Total() = %v, expected 7.5", s.Total())
	}
}
