package level

// Score is a running point total that never decreases.
type Score struct {
	total float64
}

// Add credits points. Negative and NaN amounts are ignored.
func (s *Score) Add(points float64) {
	if points > 0 {
		s.total += points
	}
}

// Total returns the accumulated points.
func (s Score) Total() float64 {
	return s.total
}
