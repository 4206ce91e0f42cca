package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"walkin-queue-service/internal/domain"
	"walkin-queue-service/internal/platform/obs"
	"walkin-queue-service/internal/ports"
)

// Postgres-backed implementation of the VenueStore port.
// Expects the pgx stdlib driver ($n placeholders, TIMESTAMPTZ scanning).
type SQLVenueStore struct {
	DB *sql.DB
	// Used when the settings row is missing.
	DefaultCapacity int
}

func NewSQLVenueStore(db *sql.DB, defaultCapacity int) *SQLVenueStore {
	return &SQLVenueStore{DB: db, DefaultCapacity: defaultCapacity}
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Read queue, occupants, courses and settings in one read-only transaction.
func (s *SQLVenueStore) Snapshot(ctx context.Context) (_ ports.Snapshot, err error) {
	defer obs.Time(ctx, "venue.sql.Snapshot")(&err)

	if s.DB == nil {
		return ports.Snapshot{}, errors.New("sql venue store: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return ports.Snapshot{}, fmt.Errorf("snapshot: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	queue, err := listParties(ctx, tx)
	if err != nil {
		return ports.Snapshot{}, fmt.Errorf("snapshot: %w", err)
	}

	occupants, err := listOccupants(ctx, tx)
	if err != nil {
		return ports.Snapshot{}, fmt.Errorf("snapshot: %w", err)
	}

	courses, err := listCourses(ctx, tx)
	if err != nil {
		return ports.Snapshot{}, fmt.Errorf("snapshot: %w", err)
	}

	settings, err := s.readSettings(ctx, tx)
	if err != nil {
		return ports.Snapshot{}, fmt.Errorf("snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return ports.Snapshot{}, fmt.Errorf("snapshot: commit tx: %w", err)
	}

	return ports.Snapshot{
		Queue:     queue,
		Occupants: occupants,
		Courses:   courses,
		Settings:  settings,
	}, nil
}

func listParties(ctx context.Context, q querier) ([]domain.Party, error) {
	rows, err := q.QueryContext(ctx, `
	SELECT party_id, size, note, join_at
	FROM parties
	ORDER BY join_at, seq;
	`)
	if err != nil {
		return nil, fmt.Errorf("list parties: query parties table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Party, 0, 16)
	for rows.Next() {
		var p domain.Party
		if err := rows.Scan(&p.ID, &p.Size, &p.Note, &p.JoinAt); err != nil {
			return nil, fmt.Errorf("list parties: scan row: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list parties: row iteration: %w", err)
	}

	return out, nil
}

func listOccupants(ctx context.Context, q querier) ([]domain.Occupant, error) {
	rows, err := q.QueryContext(ctx, `
	SELECT occupant_id, size, note, course_id, enter_at, exit_at
	FROM occupants
	ORDER BY enter_at, occupant_id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list occupants: query occupants table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Occupant, 0, 16)
	for rows.Next() {
		var o domain.Occupant
		if err := rows.Scan(&o.ID, &o.Size, &o.Note, &o.CourseID, &o.EnterAt, &o.ExitAt); err != nil {
			return nil, fmt.Errorf("list occupants: scan row: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list occupants: row iteration: %w", err)
	}

	return out, nil
}

func listCourses(ctx context.Context, q querier) ([]domain.Course, error) {
	rows, err := q.QueryContext(ctx, `
	SELECT course_id, name, minutes
	FROM courses
	ORDER BY minutes, course_id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list courses: query courses table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Course, 0, 4)
	for rows.Next() {
		var c domain.Course
		if err := rows.Scan(&c.ID, &c.Name, &c.Minutes); err != nil {
			return nil, fmt.Errorf("list courses: scan row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list courses: row iteration: %w", err)
	}

	return out, nil
}

func (s *SQLVenueStore) readSettings(ctx context.Context, q querier) (domain.Settings, error) {
	var capacity int
	err := q.QueryRowContext(ctx, `SELECT max_capacity FROM settings WHERE id = 1;`).Scan(&capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Settings{MaxCapacity: s.DefaultCapacity}, nil
	}
	if err != nil {
		return domain.Settings{}, fmt.Errorf("read settings: %w", err)
	}

	return domain.Settings{MaxCapacity: capacity}, nil
}

func (s *SQLVenueStore) AddParty(ctx context.Context, p domain.Party) error {
	if s.DB == nil {
		return errors.New("sql venue store: DB is nil")
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO parties (party_id, size, note, join_at)
	VALUES ($1, $2, $3, $4);
	`, p.ID, p.Size, p.Note, p.JoinAt)
	if err != nil {
		return fmt.Errorf("add party %q: %w", p.ID, err)
	}

	return nil
}

func (s *SQLVenueStore) RemoveParty(ctx context.Context, partyID string) error {
	return s.deleteByID(ctx, "remove party", `DELETE FROM parties WHERE party_id = $1;`, partyID)
}

func (s *SQLVenueStore) RemoveOccupant(ctx context.Context, occupantID string) error {
	return s.deleteByID(ctx, "remove occupant", `DELETE FROM occupants WHERE occupant_id = $1;`, occupantID)
}

func (s *SQLVenueStore) RemoveHistoryEntry(ctx context.Context, entryID string) error {
	return s.deleteByID(ctx, "remove history entry", `DELETE FROM history WHERE entry_id = $1;`, entryID)
}

func (s *SQLVenueStore) deleteByID(ctx context.Context, op, query, id string) error {
	if s.DB == nil {
		return errors.New("sql venue store: DB is nil")
	}

	res, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s %q: %w", op, id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %q: rows affected: %w", op, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", op, id, ports.ErrNotFound)
	}

	return nil
}

// Rewrite a queued party's size and note; id, join time and position are kept.
func (s *SQLVenueStore) UpdateParty(
	ctx context.Context,
	partyID string,
	apply func(domain.Party) domain.Party,
) (_ domain.Party, err error) {
	defer obs.Time(ctx, "venue.sql.UpdateParty")(&err)

	if s.DB == nil {
		return domain.Party{}, errors.New("sql venue store: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Party{}, fmt.Errorf("update party: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var p domain.Party
	err = tx.QueryRowContext(ctx, `
	SELECT party_id, size, note, join_at
	FROM parties
	WHERE party_id = $1
	FOR UPDATE;
	`, partyID).Scan(&p.ID, &p.Size, &p.Note, &p.JoinAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Party{}, fmt.Errorf("update party: party %q: %w", partyID, ports.ErrNotFound)
	}
	if err != nil {
		return domain.Party{}, fmt.Errorf("update party: select party: %w", err)
	}

	updated := apply(p)
	updated.ID, updated.JoinAt = p.ID, p.JoinAt

	_, err = tx.ExecContext(ctx, `
	UPDATE parties
	SET size = $2, note = $3
	WHERE party_id = $1;
	`, updated.ID, updated.Size, updated.Note)
	if err != nil {
		return domain.Party{}, fmt.Errorf("update party: update row: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Party{}, fmt.Errorf("update party: commit tx: %w", err)
	}

	return updated, nil
}

// Move a party inside within one transaction; the queue row is locked until commit.
func (s *SQLVenueStore) MoveToInside(
	ctx context.Context,
	partyID string,
	build func(domain.Party) domain.Occupant,
) (_ domain.Occupant, err error) {
	defer obs.Time(ctx, "venue.sql.MoveToInside")(&err)

	if s.DB == nil {
		return domain.Occupant{}, errors.New("sql venue store: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Occupant{}, fmt.Errorf("move to inside: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var p domain.Party
	err = tx.QueryRowContext(ctx, `
	SELECT party_id, size, note, join_at
	FROM parties
	WHERE party_id = $1
	FOR UPDATE;
	`, partyID).Scan(&p.ID, &p.Size, &p.Note, &p.JoinAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Occupant{}, fmt.Errorf("move to inside: party %q: %w", partyID, ports.ErrNotFound)
	}
	if err != nil {
		return domain.Occupant{}, fmt.Errorf("move to inside: select party: %w", err)
	}

	o := build(p)

	_, err = tx.ExecContext(ctx, `
	INSERT INTO occupants (occupant_id, size, note, course_id, enter_at, exit_at)
	VALUES ($1, $2, $3, $4, $5, $6);
	`, o.ID, o.Size, o.Note, o.CourseID, o.EnterAt, o.ExitAt)
	if err != nil {
		return domain.Occupant{}, fmt.Errorf("move to inside: insert occupant: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM parties WHERE party_id = $1;`, partyID); err != nil {
		return domain.Occupant{}, fmt.Errorf("move to inside: delete party: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Occupant{}, fmt.Errorf("move to inside: commit tx: %w", err)
	}

	return o, nil
}

// Move an occupant to history within one transaction.
func (s *SQLVenueStore) Checkout(
	ctx context.Context,
	occupantID string,
	historyID string,
	exitAt time.Time,
) (_ domain.HistoryEntry, err error) {
	defer obs.Time(ctx, "venue.sql.Checkout")(&err)

	if s.DB == nil {
		return domain.HistoryEntry{}, errors.New("sql venue store: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.HistoryEntry{}, fmt.Errorf("checkout: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var o domain.Occupant
	err = tx.QueryRowContext(ctx, `
	SELECT occupant_id, size, note, course_id, enter_at, exit_at
	FROM occupants
	WHERE occupant_id = $1
	FOR UPDATE;
	`, occupantID).Scan(&o.ID, &o.Size, &o.Note, &o.CourseID, &o.EnterAt, &o.ExitAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.HistoryEntry{}, fmt.Errorf("checkout: occupant %q: %w", occupantID, ports.ErrNotFound)
	}
	if err != nil {
		return domain.HistoryEntry{}, fmt.Errorf("checkout: select occupant: %w", err)
	}

	enterAt := o.EnterAt
	entry := domain.HistoryEntry{
		ID:       historyID,
		Size:     o.Size,
		Note:     o.Note,
		CourseID: o.CourseID,
		EnterAt:  &enterAt,
		ExitAt:   exitAt,
	}

	_, err = tx.ExecContext(ctx, `
	INSERT INTO history (entry_id, size, note, course_id, enter_at, exit_at)
	VALUES ($1, $2, $3, $4, $5, $6);
	`, entry.ID, entry.Size, entry.Note, entry.CourseID, entry.EnterAt, entry.ExitAt)
	if err != nil {
		return domain.HistoryEntry{}, fmt.Errorf("checkout: insert history: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM occupants WHERE occupant_id = $1;`, occupantID); err != nil {
		return domain.HistoryEntry{}, fmt.Errorf("checkout: delete occupant: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.HistoryEntry{}, fmt.Errorf("checkout: commit tx: %w", err)
	}

	return entry, nil
}

// Return history, newest exit first.
func (s *SQLVenueStore) ListHistory(ctx context.Context) ([]domain.HistoryEntry, error) {
	if s.DB == nil {
		return nil, errors.New("sql venue store: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT entry_id, size, note, course_id, enter_at, exit_at
	FROM history
	ORDER BY exit_at DESC, entry_id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list history: query history table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.HistoryEntry, 0, 64)
	for rows.Next() {
		var h domain.HistoryEntry
		var enterAt sql.NullTime
		if err := rows.Scan(&h.ID, &h.Size, &h.Note, &h.CourseID, &enterAt, &h.ExitAt); err != nil {
			return nil, fmt.Errorf("list history: scan row: %w", err)
		}
		if enterAt.Valid {
			t := enterAt.Time
			h.EnterAt = &t
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list history: row iteration: %w", err)
	}

	return out, nil
}

func (s *SQLVenueStore) ListCourses(ctx context.Context) ([]domain.Course, error) {
	if s.DB == nil {
		return nil, errors.New("sql venue store: DB is nil")
	}
	return listCourses(ctx, s.DB)
}

func (s *SQLVenueStore) SetCapacity(ctx context.Context, capacity int) error {
	if s.DB == nil {
		return errors.New("sql venue store: DB is nil")
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO settings (id, max_capacity)
	VALUES (1, $1)
	ON CONFLICT (id) DO UPDATE
	SET max_capacity = EXCLUDED.max_capacity;
	`, capacity)
	if err != nil {
		return fmt.Errorf("set capacity: %w", err)
	}

	return nil
}

var _ ports.VenueStore = (*SQLVenueStore)(nil)
