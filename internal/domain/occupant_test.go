package domain

import (
	"testing"
	"time"
)

func TestStayForAddsTurnoverBuffer(t *testing.T) {
	// build test data
	enterAt := time.Date(2026, 1, 1, 18, 0, 0, 0, time.UTC)

	for _, c := range DefaultCourses() {
		// call the method under test
		exitAt := enterAt.Add(StayFor(c))

		// verify results
		want := enterAt.Add(time.Duration(c.Minutes+7) * time.Minute)
		if !exitAt.Equal(want) {
			t.Fatalf("course %s: exit = %v, want %v", c.ID, exitAt, want)
		}
	}
}
