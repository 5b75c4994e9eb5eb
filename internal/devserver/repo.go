package devserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/five82/worldwise/internal/cities"
)

const schema = `
CREATE TABLE IF NOT EXISTS cities (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	city_name TEXT    NOT NULL,
	country   TEXT    NOT NULL DEFAULT '',
	emoji     TEXT    NOT NULL DEFAULT '',
	visited   TEXT    NOT NULL,
	notes     TEXT    NOT NULL DEFAULT '',
	lat       REAL    NOT NULL,
	lng       REAL    NOT NULL
);`

const selectColumns = `SELECT id, city_name, country, emoji, visited, notes, lat, lng FROM cities`

// Repo persists cities in SQLite.
type Repo struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at path and applies
// the schema.
func Open(path string) (*Repo, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Repo{db: db}, nil
}

// Close closes the database handle.
func (r *Repo) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// List returns every city ordered by id.
func (r *Repo) List(ctx context.Context) ([]cities.City, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	defer rows.Close()

	out := []cities.City{}
	for rows.Next() {
		c, err := scanCity(rows)
		if err != nil {
			return nil, fmt.Errorf("list cities: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	return out, nil
}

// Get returns one city or an error matching cities.ErrNotFound.
func (r *Repo) Get(ctx context.Context, id cities.ID) (cities.City, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, int64(id))
	c, err := scanCity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return cities.City{}, fmt.Errorf("get city %d: %w", id, cities.ErrNotFound)
	}
	if err != nil {
		return cities.City{}, fmt.Errorf("get city %d: %w", id, err)
	}
	return c, nil
}

// Insert stores draft under a new id.
func (r *Repo) Insert(ctx context.Context, draft cities.Draft) (cities.City, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO cities (city_name, country, emoji, visited, notes, lat, lng) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		strings.TrimSpace(draft.Name), draft.Country, draft.Emoji,
		draft.Date.UTC().Format(time.RFC3339Nano), draft.Notes,
		draft.Position.Lat, draft.Position.Lng,
	)
	if err != nil {
		return cities.City{}, fmt.Errorf("insert city: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return cities.City{}, fmt.Errorf("insert city: %w", err)
	}
	draft.Name = strings.TrimSpace(draft.Name)
	draft.Date = draft.Date.UTC()
	return draft.WithID(cities.ID(id)), nil
}

// Delete removes a city or returns an error matching cities.ErrNotFound.
func (r *Repo) Delete(ctx context.Context, id cities.ID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cities WHERE id = ?`, int64(id))
	if err != nil {
		return fmt.Errorf("delete city %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete city %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete city %d: %w", id, cities.ErrNotFound)
	}
	return nil
}

// Seed inserts items when the table is empty and reports how many rows were
// written. Positive ids are kept; others are assigned.
func (r *Repo) Seed(ctx context.Context, items []cities.City) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM cities`).Scan(&count); err != nil {
		return 0, fmt.Errorf("seed: count: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	for _, c := range items {
		var id any
		if c.ID > 0 {
			id = int64(c.ID)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cities (id, city_name, country, emoji, visited, notes, lat, lng) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, c.Name, c.Country, c.Emoji, c.Date.UTC().Format(time.RFC3339Nano), c.Notes,
			c.Position.Lat, c.Position.Lng,
		); err != nil {
			return 0, fmt.Errorf("seed city %q: %w", c.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("seed: commit: %w", err)
	}
	return len(items), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCity(s scanner) (cities.City, error) {
	var (
		c       cities.City
		id      int64
		visited string
	)
	if err := s.Scan(&id, &c.Name, &c.Country, &c.Emoji, &visited, &c.Notes, &c.Position.Lat, &c.Position.Lng); err != nil {
		return cities.City{}, err
	}
	date, err := time.Parse(time.RFC3339Nano, visited)
	if err != nil {
		return cities.City{}, fmt.Errorf("parse visit date %q: %w", visited, err)
	}
	c.ID = cities.ID(id)
	c.Date = date
	return c, nil
}
