package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"walkin-queue-service/internal/domain"
	"walkin-queue-service/internal/platform/obs"
	"walkin-queue-service/internal/ports"

	"github.com/google/uuid"
)

// previewPartyID stands in for a party that has not joined yet.
const previewPartyID = "__preview"

func newID(prefix string) string {
	return prefix + uuid.NewString()
}

// QueueView pairs the queue with the estimator's projection for each party.
type QueueView struct {
	Queue      []domain.Party
	Admissions map[string]domain.Admission
	Capacity   int
}

// JoinQueue appends a new party to the end of the queue.
func JoinQueue(ctx context.Context, store ports.VenueStore, size int, note string, now time.Time) (domain.Party, error) {
	if size < 1 {
		return domain.Party{}, fmt.Errorf("join queue: %w: size must be at least 1, got %d", ErrInvalidInput, size)
	}

	p := domain.Party{
		ID:     newID("q_"),
		Size:   size,
		Note:   strings.TrimSpace(note),
		JoinAt: now,
	}

	if err := store.AddParty(ctx, p); err != nil {
		return domain.Party{}, fmt.Errorf("join queue: %w", err)
	}

	return p, nil
}

// LeaveQueue drops a party from the queue without admitting it.
func LeaveQueue(ctx context.Context, store ports.VenueStore, partyID string) error {
	if err := store.RemoveParty(ctx, partyID); err != nil {
		return fmt.Errorf("leave queue: party %q: %w", partyID, err)
	}
	return nil
}

// UpdateParty changes a queued party's size and/or note. Nil fields are left
// as they are; the party keeps its place in line.
func UpdateParty(ctx context.Context, store ports.VenueStore, partyID string, size *int, note *string) (domain.Party, error) {
	if size == nil && note == nil {
		return domain.Party{}, fmt.Errorf("update party: %w: nothing to update", ErrInvalidInput)
	}
	if size != nil && *size < 1 {
		return domain.Party{}, fmt.Errorf("update party: %w: size must be at least 1, got %d", ErrInvalidInput, *size)
	}

	p, err := store.UpdateParty(ctx, partyID, func(p domain.Party) domain.Party {
		if size != nil {
			p.Size = *size
		}
		if note != nil {
			p.Note = strings.TrimSpace(*note)
		}
		return p
	})
	if err != nil {
		return domain.Party{}, fmt.Errorf("update party: party %q: %w", partyID, err)
	}

	return p, nil
}

// AdmitParty moves a queued party inside on the chosen course.
// The occupant's exit is fixed now: course length plus turnover buffer.
func AdmitParty(ctx context.Context, store ports.VenueStore, partyID, courseID string, now time.Time) (domain.Occupant, error) {
	courses, err := store.ListCourses(ctx)
	if err != nil {
		return domain.Occupant{}, fmt.Errorf("admit party: list courses: %w", err)
	}

	var course *domain.Course
	for i := range courses {
		if courses[i].ID == courseID {
			course = &courses[i]
			break
		}
	}
	if course == nil {
		return domain.Occupant{}, fmt.Errorf("admit party: course %q: %w", courseID, ports.ErrNotFound)
	}

	occupant, err := store.MoveToInside(ctx, partyID, func(p domain.Party) domain.Occupant {
		return domain.Occupant{
			ID:       newID("in_"),
			Size:     p.Size,
			Note:     p.Note,
			CourseID: course.ID,
			EnterAt:  now,
			ExitAt:   now.Add(domain.StayFor(*course)),
		}
	})
	if err != nil {
		return domain.Occupant{}, fmt.Errorf("admit party: party %q: %w", partyID, err)
	}

	return occupant, nil
}

// CheckoutOccupant records the group in history and frees its seats.
func CheckoutOccupant(ctx context.Context, store ports.VenueStore, occupantID string, now time.Time) (domain.HistoryEntry, error) {
	entry, err := store.Checkout(ctx, occupantID, newID("h_"), now)
	if err != nil {
		return domain.HistoryEntry{}, fmt.Errorf("checkout occupant: %q: %w", occupantID, err)
	}
	return entry, nil
}

// RemoveOccupant deletes an occupant without recording history.
func RemoveOccupant(ctx context.Context, store ports.VenueStore, occupantID string) error {
	if err := store.RemoveOccupant(ctx, occupantID); err != nil {
		return fmt.Errorf("remove occupant: %q: %w", occupantID, err)
	}
	return nil
}

func RemoveHistoryEntry(ctx context.Context, store ports.VenueStore, entryID string) error {
	if err := store.RemoveHistoryEntry(ctx, entryID); err != nil {
		return fmt.Errorf("remove history entry: %q: %w", entryID, err)
	}
	return nil
}

func UpdateCapacity(ctx context.Context, store ports.VenueStore, capacity int) error {
	if capacity < 1 {
		return fmt.Errorf("update capacity: %w: capacity must be at least 1, got %d", ErrInvalidInput, capacity)
	}
	if err := store.SetCapacity(ctx, capacity); err != nil {
		return fmt.Errorf("update capacity: %w", err)
	}
	return nil
}

// QueueEstimates loads one snapshot and projects an admission for every
// queued party.
func QueueEstimates(ctx context.Context, store ports.VenueStore, now time.Time) (_ *QueueView, err error) {
	defer obs.Time(ctx, "services.QueueEstimates")(&err)

	snap, err := store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("queue estimates: load snapshot: %w", err)
	}

	plan, err := PlanAdmissions(inputFrom(snap, snap.Queue, now))
	if err != nil {
		return nil, fmt.Errorf("queue estimates: %w", err)
	}

	view := &QueueView{
		Queue:      snap.Queue,
		Admissions: make(map[string]domain.Admission, len(plan)),
		Capacity:   snap.Settings.MaxCapacity,
	}
	for _, a := range plan {
		view.Admissions[a.PartyID] = a
	}

	return view, nil
}

// PreviewWait estimates the admission of a party of the given size if it
// joined the end of the queue now. Nothing is persisted.
func PreviewWait(ctx context.Context, store ports.VenueStore, size int, now time.Time) (_ domain.Admission, err error) {
	defer obs.Time(ctx, "services.PreviewWait")(&err)

	if size < 1 {
		return domain.Admission{}, fmt.Errorf("preview wait: %w: size must be at least 1, got %d", ErrInvalidInput, size)
	}

	snap, err := store.Snapshot(ctx)
	if err != nil {
		return domain.Admission{}, fmt.Errorf("preview wait: load snapshot: %w", err)
	}

	queue := make([]domain.Party, 0, len(snap.Queue)+1)
	queue = append(queue, snap.Queue...)
	queue = append(queue, domain.Party{ID: previewPartyID, Size: size, JoinAt: now})

	plan, err := PlanAdmissions(inputFrom(snap, queue, now))
	if err != nil {
		return domain.Admission{}, fmt.Errorf("preview wait: %w", err)
	}

	a := plan[len(plan)-1]
	a.PartyID = ""
	return a, nil
}

func inputFrom(snap ports.Snapshot, queue []domain.Party, now time.Time) EstimateInput {
	return EstimateInput{
		Queue:     queue,
		Occupants: snap.Occupants,
		Capacity:  snap.Settings.MaxCapacity,
		Courses:   snap.Courses,
		Now:       now,
	}
}
