package level

// Sequencer walks an ordered, fixed-size list of tasks one active task at a time.
type Sequencer struct {
	tasks []Task
	index int
}

// NewSequencer creates a sequencer over a copy of tasks.
func NewSequencer(tasks []Task) *Sequencer {
	owned := make([]Task, len(tasks))
	copy(owned, tasks)
	return &Sequencer{tasks: owned}
}

// Len returns the number of tasks.
func (s *Sequencer) Len() int {
	return len(s.tasks)
}

// Index returns the position of the active task, or Len() when all are done.
func (s *Sequencer) Index() int {
	return s.index
}

// Done reports whether every task has been completed.
func (s *Sequencer) Done() bool {
	return s.index >= len(s.tasks)
}

// Active returns the current task, or false when all are done.
func (s *Sequencer) Active() (Task, bool) {
	if s.Done() {
		return nil, false
	}
	return s.tasks[s.index], true
}

// IsActive reports whether task is the current task.
func (s *Sequencer) IsActive(task Task) bool {
	active, ok := s.Active()
	return ok && task != nil && active == task
}

// Advance moves past the active task and returns the new active task.
// It does not enable or disable anything; the caller owns that ordering.
func (s *Sequencer) Advance() (Task, bool) {
	if s.Done() {
		return nil, false
	}
	s.index++
	return s.Active()
}

// Start enables the first task, if any.
func (s *Sequencer) Start() {
	if first, ok := s.Active(); ok {
		first.Enable()
	}
}

// Stop disables the active task without advancing.
func (s *Sequencer) Stop() {
	if active, ok := s.Active(); ok {
		active.Disable()
	}
}
