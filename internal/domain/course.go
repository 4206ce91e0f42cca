package domain

import "time"

const (
	// Added to every stay to cover cleanup between groups.
	TurnoverBuffer = 7 * time.Minute

	// Assumed course length when no courses are configured.
	DefaultCourseMinutes = 30

	DefaultCapacity = 20
)

type Course struct {
	ID      string
	Name    string
	Minutes int
}

// Courses offered when nothing has been configured yet.
func DefaultCourses() []Course {
	return []Course{
		{ID: "c30", Name: "30 min", Minutes: 30},
		{ID: "c60", Name: "60 min", Minutes: 60},
	}
}
