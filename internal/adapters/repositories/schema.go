package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Initialize the Postgres schema.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createPartiesQuery := `
	CREATE TABLE IF NOT EXISTS parties (
		seq BIGSERIAL NOT NULL,
		party_id TEXT PRIMARY KEY,
		size INTEGER NOT NULL CHECK (size > 0),
		note TEXT NOT NULL DEFAULT '',
		join_at TIMESTAMPTZ NOT NULL
	);
	`

	createOccupantsQuery := `
	CREATE TABLE IF NOT EXISTS occupants (
		occupant_id TEXT PRIMARY KEY,
		size INTEGER NOT NULL CHECK (size > 0),
		note TEXT NOT NULL DEFAULT '',
		course_id TEXT NOT NULL,
		enter_at TIMESTAMPTZ NOT NULL,
		exit_at TIMESTAMPTZ NOT NULL
	);
	`

	createHistoryQuery := `
	CREATE TABLE IF NOT EXISTS history (
		entry_id TEXT PRIMARY KEY,
		size INTEGER NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		course_id TEXT NOT NULL DEFAULT '',
		enter_at TIMESTAMPTZ,
		exit_at TIMESTAMPTZ NOT NULL
	);
	`

	createCoursesQuery := `
	CREATE TABLE IF NOT EXISTS courses (
		course_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		minutes INTEGER NOT NULL CHECK (minutes > 0)
	);
	`

	createSettingsQuery := `
	CREATE TABLE IF NOT EXISTS settings (
		id SMALLINT PRIMARY KEY CHECK (id = 1),
		max_capacity INTEGER NOT NULL CHECK (max_capacity > 0)
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_parties_join_at_seq
	ON parties(join_at, seq);
	`

	statements := []string{
		createPartiesQuery,
		createOccupantsQuery,
		createHistoryQuery,
		createCoursesQuery,
		createSettingsQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type CourseSeed struct {
	CourseID string `json:"course_id"`
	Name     string `json:"name"`
	Minutes  int    `json:"minutes"`
}

// Load course definitions from a JSON file.
func ReadCourseSeeds(jsonPath string) ([]CourseSeed, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("seed courses: read %q: %w", jsonPath, err)
	}

	var data []CourseSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("seed courses: parse json: %w", err)
	}

	rows := make([]CourseSeed, 0, len(data))
	for i, item := range data {
		id := strings.TrimSpace(item.CourseID)
		if id == "" {
			return nil, fmt.Errorf("seed courses: item at index %d: course_id cannot be empty", i+1)
		}

		if item.Minutes <= 0 {
			return nil, fmt.Errorf("seed courses: invalid minutes at index %d: %d", i+1, item.Minutes)
		}

		name := strings.TrimSpace(item.Name)
		if name == "" {
			name = fmt.Sprintf("%d min", item.Minutes)
		}
		rows = append(rows, CourseSeed{CourseID: id, Name: name, Minutes: item.Minutes})
	}

	return rows, nil
}

// Populate the courses table from a JSON file.
func SeedCoursesFromJSON(ctx context.Context, db *sql.DB, jsonPath string) error {
	rows, err := ReadCourseSeeds(jsonPath)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed courses: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO courses (course_id, name, minutes)
	VALUES ($1, $2, $3)
	ON CONFLICT (course_id) DO UPDATE
	SET name = EXCLUDED.name,
		minutes = EXCLUDED.minutes;
	`)
	if err != nil {
		return fmt.Errorf("seed courses: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range rows {
		if _, err := stmt.ExecContext(ctx, c.CourseID, c.Name, c.Minutes); err != nil {
			return fmt.Errorf("seed courses: insert course_id=%q: %w", c.CourseID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed courses: commit tx: %w", err)
	}

	return nil
}

// Insert the settings row with the given capacity unless one exists.
func EnsureSettings(ctx context.Context, db *sql.DB, capacity int) error {
	if capacity < 1 {
		return fmt.Errorf("ensure settings: capacity must be at least 1, got %d", capacity)
	}

	_, err := db.ExecContext(ctx, `
	INSERT INTO settings (id, max_capacity)
	VALUES (1, $1)
	ON CONFLICT (id) DO NOTHING;
	`, capacity)
	if err != nil {
		return fmt.Errorf("ensure settings: %w", err)
	}

	return nil
}
