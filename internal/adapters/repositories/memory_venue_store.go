package repositories

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"walkin-queue-service/internal/domain"
	"walkin-queue-service/internal/ports"
)

// In-process VenueStore. Used by tests and when no database is configured;
// state is lost on restart. Safe for concurrent use; callers receive copies.
type MemoryVenueStore struct {
	mu        sync.RWMutex
	queue     []domain.Party
	occupants []domain.Occupant
	history   []domain.HistoryEntry
	courses   []domain.Course
	settings  domain.Settings
}

func NewMemoryVenueStore(courses []domain.Course, capacity int) *MemoryVenueStore {
	return &MemoryVenueStore{
		courses:  slices.Clone(courses),
		settings: domain.Settings{MaxCapacity: capacity},
	}
}

func (m *MemoryVenueStore) Snapshot(ctx context.Context) (ports.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return ports.Snapshot{
		Queue:     slices.Clone(m.queue),
		Occupants: slices.Clone(m.occupants),
		Courses:   slices.Clone(m.courses),
		Settings:  m.settings,
	}, nil
}

func (m *MemoryVenueStore) AddParty(ctx context.Context, p domain.Party) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if slices.ContainsFunc(m.queue, func(q domain.Party) bool { return q.ID == p.ID }) {
		return fmt.Errorf("add party %q: duplicate id", p.ID)
	}
	m.queue = append(m.queue, p)
	return nil
}

func (m *MemoryVenueStore) RemoveParty(ctx context.Context, partyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := slices.IndexFunc(m.queue, func(p domain.Party) bool { return p.ID == partyID })
	if i < 0 {
		return fmt.Errorf("remove party %q: %w", partyID, ports.ErrNotFound)
	}
	m.queue = slices.Delete(m.queue, i, i+1)
	return nil
}

func (m *MemoryVenueStore) UpdateParty(
	ctx context.Context,
	partyID string,
	apply func(domain.Party) domain.Party,
) (domain.Party, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := slices.IndexFunc(m.queue, func(p domain.Party) bool { return p.ID == partyID })
	if i < 0 {
		return domain.Party{}, fmt.Errorf("update party %q: %w", partyID, ports.ErrNotFound)
	}

	p := apply(m.queue[i])
	p.ID, p.JoinAt = m.queue[i].ID, m.queue[i].JoinAt
	m.queue[i] = p
	return p, nil
}

func (m *MemoryVenueStore) MoveToInside(
	ctx context.Context,
	partyID string,
	build func(domain.Party) domain.Occupant,
) (domain.Occupant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := slices.IndexFunc(m.queue, func(p domain.Party) bool { return p.ID == partyID })
	if i < 0 {
		return domain.Occupant{}, fmt.Errorf("move to inside: party %q: %w", partyID, ports.ErrNotFound)
	}

	o := build(m.queue[i])
	m.occupants = append(m.occupants, o)
	m.queue = slices.Delete(m.queue, i, i+1)
	return o, nil
}

func (m *MemoryVenueStore) RemoveOccupant(ctx context.Context, occupantID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := slices.IndexFunc(m.occupants, func(o domain.Occupant) bool { return o.ID == occupantID })
	if i < 0 {
		return fmt.Errorf("remove occupant %q: %w", occupantID, ports.ErrNotFound)
	}
	m.occupants = slices.Delete(m.occupants, i, i+1)
	return nil
}

func (m *MemoryVenueStore) Checkout(
	ctx context.Context,
	occupantID string,
	historyID string,
	exitAt time.Time,
) (domain.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := slices.IndexFunc(m.occupants, func(o domain.Occupant) bool { return o.ID == occupantID })
	if i < 0 {
		return domain.HistoryEntry{}, fmt.Errorf("checkout: occupant %q: %w", occupantID, ports.ErrNotFound)
	}

	o := m.occupants[i]
	enterAt := o.EnterAt
	entry := domain.HistoryEntry{
		ID:       historyID,
		Size:     o.Size,
		Note:     o.Note,
		CourseID: o.CourseID,
		EnterAt:  &enterAt,
		ExitAt:   exitAt,
	}

	m.history = append(m.history, entry)
	m.occupants = slices.Delete(m.occupants, i, i+1)
	return entry, nil
}

// Newest exit first.
func (m *MemoryVenueStore) ListHistory(ctx context.Context) ([]domain.HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := slices.Clone(m.history)
	slices.SortStableFunc(out, func(a, b domain.HistoryEntry) int {
		return b.ExitAt.Compare(a.ExitAt)
	})
	return out, nil
}

func (m *MemoryVenueStore) RemoveHistoryEntry(ctx context.Context, entryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := slices.IndexFunc(m.history, func(h domain.HistoryEntry) bool { return h.ID == entryID })
	if i < 0 {
		return fmt.Errorf("remove history entry %q: %w", entryID, ports.ErrNotFound)
	}
	m.history = slices.Delete(m.history, i, i+1)
	return nil
}

func (m *MemoryVenueStore) ListCourses(ctx context.Context) ([]domain.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Clone(m.courses), nil
}

func (m *MemoryVenueStore) SetCapacity(ctx context.Context, capacity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.settings.MaxCapacity = capacity
	return nil
}

var _ ports.VenueStore = (*MemoryVenueStore)(nil)
