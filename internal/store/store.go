// Package store persists game sessions between calls to the engine.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/robalobadob/pebbles/internal/game"
)

// ErrNotFound is returned by Get for unknown session IDs.
var ErrNotFound = errors.New("not found")

// Store defines the persistence interface for game sessions.
// Implementations may be backed by memory or SQL.
type Store interface {
	// Save persists or updates a session.
	Save(ctx context.Context, s *Session) error

	// Get retrieves a session by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Session, error)

	// ListByOwner returns up to limit sessions for an owner, newest first.
	// A non-positive limit means no limit.
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]*Session, error)

	// ReassignOwner moves every session of from to to and reports how many moved.
	ReassignOwner(ctx context.Context, from, to string) (int, error)
}

// Session is one game instance as seen by the transport: an engine State plus
// the bookkeeping needed to serve and record it.
type Session struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"ownerId"` // user ID or anonymous cookie ID
	State     game.State `json:"state"`
	Turns     int        `json:"turns"` // user turns in the current lifecycle
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (s *Session) validate() error {
	if s == nil || s.ID == "" {
		return errors.New("store: session id required")
	}
	return nil
}

// clone deep-copies s, including the winner pointer.
func (s *Session) clone() *Session {
	c := *s
	if s.State.Winner != nil {
		w := *s.State.Winner
		c.State.Winner = &w
	}
	return &c
}
