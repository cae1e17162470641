package grading

import "time"

// WindowState is where a moment falls relative to a star window.
type WindowState string

const (
	WindowUpcoming WindowState = "upcoming"
	WindowOpen     WindowState = "open"
	WindowClosed   WindowState = "closed"
)

// StarWindow is the reward window of a star-eligible test. A nil bound is unbounded.
type StarWindow struct {
	Start *time.Time
	End   *time.Time
}

// State returns the window state at now. Both bounds are inclusive.
func (w StarWindow) State(now time.Time) WindowState {
	if w.Start != nil && now.Before(*w.Start) {
		return WindowUpcoming
	}
	if w.End != nil && now.After(*w.End) {
		return WindowClosed
	}
	return WindowOpen
}
