package level

// BonusTracker follows the active window of a time bonus schedule.
// The index only moves forward and never past the last window.
type BonusTracker struct {
	windows []TimeBonus
	index   int
}

// NewBonusTracker creates a tracker over a copy of the schedule.
func NewBonusTracker(windows []TimeBonus) *BonusTracker {
	owned := make([]TimeBonus, len(windows))
	copy(owned, windows)
	return &BonusTracker{windows: owned}
}

// Scheduled reports whether there is a bonus schedule at all.
func (b *BonusTracker) Scheduled() bool {
	return len(b.windows) > 0
}

// Index returns the position of the active window.
func (b *BonusTracker) Index() int {
	return b.index
}

// Current returns the active window.
func (b *BonusTracker) Current() (TimeBonus, bool) {
	if !b.Scheduled() {
		return TimeBonus{}, false
	}
	return b.windows[b.index], true
}

// Advance moves past every window whose threshold elapsed has exceeded.
// Returns true if the active window changed.
func (b *BonusTracker) Advance(elapsed float64) bool {
	moved := false
	for b.index < len(b.windows)-1 && elapsed > b.windows[b.index].Threshold {
		b.index++
		moved = true
	}
	return moved
}

// Display returns what the HUD should show for the active window:
// a final window displays the level time limit as its deadline.
func (b *BonusTracker) Display(limit float64) (threshold, bonus float64, final bool) {
	w, ok := b.Current()
	if !ok {
		return limit, 0, true
	}
	if w.IsFinal() {
		return limit, w.Bonus, true
	}
	return w.Threshold, w.Bonus, false
}
