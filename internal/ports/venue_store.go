package ports

import (
	"context"
	"errors"
	"time"

	"walkin-queue-service/internal/domain"
)

// ErrNotFound is returned when a referenced party, occupant, course or
// history entry does not exist.
var ErrNotFound = errors.New("not found")

// Snapshot is one consistent read of everything the estimator needs.
// Queue is in arrival order.
type Snapshot struct {
	Queue     []domain.Party
	Occupants []domain.Occupant
	Courses   []domain.Course
	Settings  domain.Settings
}

// Port: a boundary for reading and mutating the venue's queue state.
type VenueStore interface {
	// Read queue, occupants, courses and settings as of one instant.
	Snapshot(ctx context.Context) (Snapshot, error)

	// Append a party to the end of the queue.
	AddParty(ctx context.Context, p domain.Party) error
	RemoveParty(ctx context.Context, partyID string) error

	// Replace a queued party with apply's result, keeping its place in line.
	UpdateParty(ctx context.Context, partyID string, apply func(domain.Party) domain.Party) (domain.Party, error)

	// Atomically remove the party from the queue and insert the occupant
	// built from it.
	MoveToInside(ctx context.Context, partyID string, build func(domain.Party) domain.Occupant) (domain.Occupant, error)
	RemoveOccupant(ctx context.Context, occupantID string) error

	// Atomically remove the occupant and record a history entry.
	Checkout(ctx context.Context, occupantID string, historyID string, exitAt time.Time) (domain.HistoryEntry, error)

	// History, newest exit first.
	ListHistory(ctx context.Context) ([]domain.HistoryEntry, error)
	RemoveHistoryEntry(ctx context.Context, entryID string) error

	ListCourses(ctx context.Context) ([]domain.Course, error)
	SetCapacity(ctx context.Context, capacity int) error
}
