package domain

import "time"

// Represents a group currently inside the venue.
// ExitAt is authoritative: it is fixed at admission from the chosen course
// length plus the turnover buffer.
type Occupant struct {
	ID       string
	Size     int
	Note     string
	CourseID string
	EnterAt  time.Time
	ExitAt   time.Time
}

// Occupied time for a party that picked the given course.
func StayFor(c Course) time.Duration {
	return time.Duration(c.Minutes)*time.Minute + TurnoverBuffer
}
