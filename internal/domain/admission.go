package domain

import "time"

// Admission is the estimator's projection for one queued party.
//
// AssignedAt is the earliest instant the party fits under the capacity
// without overtaking anyone ahead of it. When Approximate is set the
// instant came from the fallback path and was not proven feasible.
type Admission struct {
	PartyID     string
	Size        int
	AssignedAt  time.Time
	DepartAt    time.Time
	WaitMinutes int
	Approximate bool
}
