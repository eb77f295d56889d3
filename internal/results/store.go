// internal/results/store.go
//
// Finished-game history backed by the game_results table.
// Exposes:
//   - Record:      append one finished game.
//   - ForOwner:    recent results for an owner.
//   - Stats:       games played, wins, losses and current win streak.
//   - Leaderboard: owners ranked by wins.

package results

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/robalobadob/pebbles/internal/database"
	"github.com/robalobadob/pebbles/internal/game"
)

// Result is one finished game.
type Result struct {
	SessionID         string               `json:"sessionId"`
	OwnerID           string               `json:"ownerId"`
	Winner            game.Player          `json:"winner"`
	GaveUp            bool                 `json:"gaveUp"`
	Turns             int                  `json:"turns"`
	PebblesCount      uint32               `json:"pebblesCount"`
	MaxPebblesPerTurn uint32               `json:"maxPebblesPerTurn"`
	Difficulty        game.DifficultyLevel `json:"difficulty"`
	FirstPlayer       game.Player          `json:"firstPlayer"`
	FinishedAt        time.Time            `json:"finishedAt"`
}

// FromState builds a Result for a finished game state.
func FromState(sessionID, ownerID string, st game.State, turns int, gaveUp bool, at time.Time) (Result, error) {
	if st.Winner == nil {
		return Result{}, errors.New("results: game has no winner")
	}
	return Result{
		SessionID:         sessionID,
		OwnerID:           ownerID,
		Winner:            *st.Winner,
		GaveUp:            gaveUp,
		Turns:             turns,
		PebblesCount:      st.PebblesCount,
		MaxPebblesPerTurn: st.MaxPebblesPerTurn,
		Difficulty:        st.Difficulty,
		FirstPlayer:       st.FirstPlayer,
		FinishedAt:        at,
	}, nil
}

// Stats summarises an owner's history.
type Stats struct {
	GamesPlayed int `json:"gamesPlayed"`
	Wins        int `json:"wins"`
	Losses      int `json:"losses"`
	Streak      int `json:"streak"` // consecutive wins ending with the latest game
}

// LBRow is one leaderboard entry.
type LBRow struct {
	OwnerID     string `json:"ownerId"`
	Wins        int    `json:"wins"`
	GamesPlayed int    `json:"gamesPlayed"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Record inserts a finished game.
func (s *Store) Record(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO game_results
            (session_id, owner_id, winner, gave_up, turns, pebbles_count,
             max_pebbles_per_turn, difficulty, first_player, finished_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.SessionID, r.OwnerID, string(r.Winner), r.GaveUp, r.Turns, r.PebblesCount,
		r.MaxPebblesPerTurn, string(r.Difficulty), string(r.FirstPlayer), database.FormatTime(r.FinishedAt),
	)
	return err
}

// ForOwner returns the owner's latest results, newest first. Default limit is 50.
func (s *Store) ForOwner(ctx context.Context, ownerID string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT session_id, owner_id, winner, gave_up, turns, pebbles_count,
               max_pebbles_per_turn, difficulty, first_player, finished_at
        FROM game_results
        WHERE owner_id=?
        ORDER BY finished_at DESC, id DESC
        LIMIT ?`, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Result, 0, limit)
	for rows.Next() {
		var r Result
		var winner, difficulty, first, finished string
		if err := rows.Scan(&r.SessionID, &r.OwnerID, &winner, &r.GaveUp, &r.Turns, &r.PebblesCount,
			&r.MaxPebblesPerTurn, &difficulty, &first, &finished); err != nil {
			return nil, err
		}
		r.Winner = game.Player(winner)
		r.Difficulty = game.DifficultyLevel(difficulty)
		r.FirstPlayer = game.Player(first)
		r.FinishedAt = database.ParseTime(finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Stats computes totals and the current streak for an owner.
func (s *Store) Stats(ctx context.Context, ownerID string) (Stats, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT winner FROM game_results
        WHERE owner_id=?
        ORDER BY finished_at DESC, id DESC`, ownerID)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()

	var st Stats
	counting := true
	for rows.Next() {
		var winner string
		if err := rows.Scan(&winner); err != nil {
			return Stats{}, err
		}
		st.GamesPlayed++
		if game.Player(winner) == game.PlayerUser {
			st.Wins++
			if counting {
				st.Streak++
			}
		} else {
			st.Losses++
			counting = false
		}
	}
	return st, rows.Err()
}

// Leaderboard returns owners ordered by wins, then fewer games played.
// Default limit is 20.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT owner_id,
               SUM(CASE WHEN winner='user' THEN 1 ELSE 0 END) AS wins,
               COUNT(1) AS played
        FROM game_results
        GROUP BY owner_id
        HAVING wins > 0
        ORDER BY wins DESC, played ASC, owner_id ASC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []LBRow{}
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.OwnerID, &r.Wins, &r.GamesPlayed); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ReassignOwner moves history between owners, e.g. when a guest signs up.
func (s *Store) ReassignOwner(ctx context.Context, from, to string) (int, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE game_results SET owner_id=? WHERE owner_id=?`, to, from)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
