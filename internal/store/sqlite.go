// internal/store/sqlite.go
//
// SQLite implementation of the Store interface.
// The engine State is stored as a JSON document in sessions.state; timestamps
// are fixed-width RFC3339 strings in UTC.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/robalobadob/pebbles/internal/database"
)

type sqliteStore struct {
	db *sql.DB
}

// NewSQLiteStore returns a Store backed by the sessions table.
// The schema is created by database.Migrate.
func NewSQLiteStore(db *sql.DB) Store {
	return &sqliteStore{db: db}
}

// Save upserts the session row.
func (s *sqliteStore) Save(ctx context.Context, sess *Session) error {
	if err := sess.validate(); err != nil {
		return err
	}
	state, err := json.Marshal(sess.State)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO sessions (id, owner_id, state, turns, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            owner_id=excluded.owner_id,
            state=excluded.state,
            turns=excluded.turns,
            updated_at=excluded.updated_at`,
		sess.ID, sess.OwnerID, string(state), sess.Turns,
		database.FormatTime(sess.CreatedAt), database.FormatTime(sess.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	return nil
}

// Get loads one session row.
func (s *sqliteStore) Get(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, owner_id, state, turns, created_at, updated_at
        FROM sessions WHERE id=?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return sess, err
}

// ListByOwner returns the owner's sessions, most recently updated first.
func (s *sqliteStore) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, owner_id, state, turns, created_at, updated_at
        FROM sessions
        WHERE owner_id=?
        ORDER BY updated_at DESC
        LIMIT ?`, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// ReassignOwner moves sessions between owners, e.g. when a guest signs up.
func (s *sqliteStore) ReassignOwner(ctx context.Context, from, to string) (int, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE sessions SET owner_id=? WHERE owner_id=?`, to, from)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*Session, error) {
	var (
		sess             Session
		state            string
		created, updated string
	)
	if err := row.Scan(&sess.ID, &sess.OwnerID, &state, &sess.Turns, &created, &updated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(state), &sess.State); err != nil {
		return nil, fmt.Errorf("decode state for session %s: %w", sess.ID, err)
	}
	sess.CreatedAt = database.ParseTime(created)
	sess.UpdatedAt = database.ParseTime(updated)
	return &sess, nil
}
