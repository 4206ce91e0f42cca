package domain

import "time"

// Record of a group that checked out.
// EnterAt is nil when the admission time was not captured.
type HistoryEntry struct {
	ID       string
	Size     int
	Note     string
	CourseID string
	EnterAt  *time.Time
	ExitAt   time.Time
}

type Settings struct {
	MaxCapacity int
}
