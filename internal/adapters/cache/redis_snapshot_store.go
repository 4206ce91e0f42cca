package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"walkin-queue-service/internal/domain"
	"walkin-queue-service/internal/platform/obs"
	"walkin-queue-service/internal/ports"

	"github.com/redis/go-redis/v9"
)

// RedisSnapshotStore wraps a VenueStore with a cache-aside copy of the
// latest Snapshot in Redis. Every mutation goes to the inner store first and
// then bumps a generation counter; snapshots are cached under the generation
// that was current before the inner read, so a copy read before a mutation is
// never served after it. Redis failures are logged and fall through to the
// inner store, which stays authoritative.
type RedisSnapshotStore struct {
	inner  ports.VenueStore
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisSnapshotStore(inner ports.VenueStore, client *redis.Client, prefix string, ttl time.Duration) *RedisSnapshotStore {
	return &RedisSnapshotStore{
		inner:  inner,
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (r *RedisSnapshotStore) genKey() string { return r.prefix + ":gen" }

func (r *RedisSnapshotStore) snapshotKey(gen int64) string {
	return fmt.Sprintf("%s:snapshot:%d", r.prefix, gen)
}

type partyRecord struct {
	ID     string    `json:"id"`
	Size   int       `json:"size"`
	Note   string    `json:"note"`
	JoinAt time.Time `json:"join_at"`
}

type occupantRecord struct {
	ID       string    `json:"id"`
	Size     int       `json:"size"`
	Note     string    `json:"note"`
	CourseID string    `json:"course_id"`
	EnterAt  time.Time `json:"enter_at"`
	ExitAt   time.Time `json:"exit_at"`
}

type courseRecord struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Minutes int    `json:"minutes"`
}

type snapshotRecord struct {
	Queue       []partyRecord    `json:"queue"`
	Occupants   []occupantRecord `json:"occupants"`
	Courses     []courseRecord   `json:"courses"`
	MaxCapacity int              `json:"max_capacity"`
}

func encodeSnapshot(s ports.Snapshot) ([]byte, error) {
	rec := snapshotRecord{
		Queue:       make([]partyRecord, 0, len(s.Queue)),
		Occupants:   make([]occupantRecord, 0, len(s.Occupants)),
		Courses:     make([]courseRecord, 0, len(s.Courses)),
		MaxCapacity: s.Settings.MaxCapacity,
	}
	for _, p := range s.Queue {
		rec.Queue = append(rec.Queue, partyRecord{ID: p.ID, Size: p.Size, Note: p.Note, JoinAt: p.JoinAt})
	}
	for _, o := range s.Occupants {
		rec.Occupants = append(rec.Occupants, occupantRecord{
			ID: o.ID, Size: o.Size, Note: o.Note, CourseID: o.CourseID, EnterAt: o.EnterAt, ExitAt: o.ExitAt,
		})
	}
	for _, c := range s.Courses {
		rec.Courses = append(rec.Courses, courseRecord{ID: c.ID, Name: c.Name, Minutes: c.Minutes})
	}

	return json.Marshal(rec)
}

func decodeSnapshot(b []byte) (ports.Snapshot, error) {
	var rec snapshotRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return ports.Snapshot{}, err
	}

	s := ports.Snapshot{
		Queue:     make([]domain.Party, 0, len(rec.Queue)),
		Occupants: make([]domain.Occupant, 0, len(rec.Occupants)),
		Courses:   make([]domain.Course, 0, len(rec.Courses)),
		Settings:  domain.Settings{MaxCapacity: rec.MaxCapacity},
	}
	for _, p := range rec.Queue {
		s.Queue = append(s.Queue, domain.Party{ID: p.ID, Size: p.Size, Note: p.Note, JoinAt: p.JoinAt})
	}
	for _, o := range rec.Occupants {
		s.Occupants = append(s.Occupants, domain.Occupant{
			ID: o.ID, Size: o.Size, Note: o.Note, CourseID: o.CourseID, EnterAt: o.EnterAt, ExitAt: o.ExitAt,
		})
	}
	for _, c := range rec.Courses {
		s.Courses = append(s.Courses, domain.Course{ID: c.ID, Name: c.Name, Minutes: c.Minutes})
	}

	return s, nil
}

// Snapshot serves the cached copy for the current generation when present,
// otherwise reads the inner store and caches the result.
func (r *RedisSnapshotStore) Snapshot(ctx context.Context) (_ ports.Snapshot, err error) {
	defer obs.Time(ctx, "venue.cache.Snapshot")(&err)

	gen, err := r.client.Get(ctx, r.genKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		log.Printf("snapshot cache generation read failed key=%s: %v", r.genKey(), err)
		return r.inner.Snapshot(ctx)
	}
	key := r.snapshotKey(gen)

	b, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		snap, decErr := decodeSnapshot(b)
		if decErr == nil {
			return snap, nil
		}
		log.Printf("snapshot cache decode failed key=%s: %v", key, decErr)
	case errors.Is(err, redis.Nil):
	default:
		log.Printf("snapshot cache read failed key=%s: %v", key, err)
	}

	snap, err := r.inner.Snapshot(ctx)
	if err != nil {
		return ports.Snapshot{}, err
	}

	payload, encErr := encodeSnapshot(snap)
	if encErr != nil {
		log.Printf("snapshot cache encode failed: %v", encErr)
		return snap, nil
	}
	if setErr := r.client.Set(ctx, key, payload, r.ttl).Err(); setErr != nil {
		log.Printf("snapshot cache write failed key=%s: %v", key, setErr)
	}

	return snap, nil
}

// invalidate moves readers to a new generation; older copies expire on their own.
func (r *RedisSnapshotStore) invalidate(ctx context.Context) {
	if err := r.client.Incr(ctx, r.genKey()).Err(); err != nil {
		log.Printf("snapshot cache invalidate failed key=%s: %v", r.genKey(), err)
	}
}

func (r *RedisSnapshotStore) AddParty(ctx context.Context, p domain.Party) error {
	if err := r.inner.AddParty(ctx, p); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *RedisSnapshotStore) RemoveParty(ctx context.Context, partyID string) error {
	if err := r.inner.RemoveParty(ctx, partyID); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *RedisSnapshotStore) UpdateParty(
	ctx context.Context,
	partyID string,
	apply func(domain.Party) domain.Party,
) (domain.Party, error) {
	p, err := r.inner.UpdateParty(ctx, partyID, apply)
	if err != nil {
		return domain.Party{}, err
	}
	r.invalidate(ctx)
	return p, nil
}

func (r *RedisSnapshotStore) MoveToInside(
	ctx context.Context,
	partyID string,
	build func(domain.Party) domain.Occupant,
) (domain.Occupant, error) {
	o, err := r.inner.MoveToInside(ctx, partyID, build)
	if err != nil {
		return domain.Occupant{}, err
	}
	r.invalidate(ctx)
	return o, nil
}

func (r *RedisSnapshotStore) RemoveOccupant(ctx context.Context, occupantID string) error {
	if err := r.inner.RemoveOccupant(ctx, occupantID); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *RedisSnapshotStore) Checkout(
	ctx context.Context,
	occupantID string,
	historyID string,
	exitAt time.Time,
) (domain.HistoryEntry, error) {
	h, err := r.inner.Checkout(ctx, occupantID, historyID, exitAt)
	if err != nil {
		return domain.HistoryEntry{}, err
	}
	r.invalidate(ctx)
	return h, nil
}

// History is not part of the snapshot and is always read from the inner store.
func (r *RedisSnapshotStore) ListHistory(ctx context.Context) ([]domain.HistoryEntry, error) {
	return r.inner.ListHistory(ctx)
}

func (r *RedisSnapshotStore) RemoveHistoryEntry(ctx context.Context, entryID string) error {
	return r.inner.RemoveHistoryEntry(ctx, entryID)
}

func (r *RedisSnapshotStore) ListCourses(ctx context.Context) ([]domain.Course, error) {
	return r.inner.ListCourses(ctx)
}

func (r *RedisSnapshotStore) SetCapacity(ctx context.Context, capacity int) error {
	if err := r.inner.SetCapacity(ctx, capacity); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

var _ ports.VenueStore = (*RedisSnapshotStore)(nil)
