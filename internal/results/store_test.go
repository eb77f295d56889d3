package results

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/pebbles/assets"
	"github.com/robalobadob/pebbles/internal/database"
	"github.com/robalobadob/pebbles/internal/game"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(database.Memory)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db, assets.Migrations()))
	return NewStore(db)
}

func finished(winner game.Player) game.State {
	return game.State{
		PebblesCount:      15,
		MaxPebblesPerTurn: 2,
		Difficulty:        game.DifficultyEasy,
		FirstPlayer:       game.PlayerUser,
		Winner:            &winner,
	}
}

// record stores results for owner in order; the last one is the most recent.
func record(t *testing.T, s *Store, owner string, winners ...game.Player) {
	t.Helper()
	base := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)
	for i, w := range winners {
		r, err := FromState("s", owner, finished(w), i+1, false, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		require.NoError(t, s.Record(context.Background(), r))
	}
}

func TestFromState_RequiresWinner(t *testing.T) {
	_, err := FromState("s", "o", game.State{PebblesCount: 3, MaxPebblesPerTurn: 1}, 0, false, time.Now())
	require.Error(t, err)
}

func TestStats(t *testing.T) {
	tests := []struct {
		name    string
		winners []game.Player
		want    Stats
	}{
		{name: "no games", want: Stats{}},
		{
			name:    "streak after a loss",
			winners: []game.Player{game.PlayerUser, game.PlayerProgram, game.PlayerUser, game.PlayerUser},
			want:    Stats{GamesPlayed: 4, Wins: 3, Losses: 1, Streak: 2},
		},
		{
			name:    "latest game lost",
			winners: []game.Player{game.PlayerUser, game.PlayerProgram},
			want:    Stats{GamesPlayed: 2, Wins: 1, Losses: 1, Streak: 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			record(t, s, "alice", tt.winners...)
			got, err := s.Stats(context.Background(), "alice")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestForOwner(t *testing.T) {
	s := newStore(t)
	record(t, s, "alice", game.PlayerProgram, game.PlayerUser)
	record(t, s, "bob", game.PlayerUser)

	got, err := s.ForOwner(context.Background(), "alice", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, game.PlayerUser, got[0].Winner)
	assert.Equal(t, 2, got[0].Turns)
	assert.Equal(t, game.DifficultyEasy, got[0].Difficulty)
	assert.Equal(t, uint32(15), got[0].PebblesCount)
	assert.Equal(t, game.PlayerProgram, got[1].Winner)
	assert.True(t, got[0].FinishedAt.After(got[1].FinishedAt))
}

func TestLeaderboard(t *testing.T) {
	s := newStore(t)
	record(t, s, "alice", game.PlayerUser, game.PlayerUser, game.PlayerProgram)
	record(t, s, "bob", game.PlayerUser, game.PlayerUser)
	record(t, s, "carol", game.PlayerUser)
	record(t, s, "dave", game.PlayerProgram)

	got, err := s.Leaderboard(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []LBRow{
		{OwnerID: "bob", Wins: 2, GamesPlayed: 2},
		{OwnerID: "alice", Wins: 2, GamesPlayed: 3},
		{OwnerID: "carol", Wins: 1, GamesPlayed: 1},
	}, got)

	top, err := s.Leaderboard(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

func TestReassignOwner(t *testing.T) {
	s := newStore(t)
	record(t, s, "anon-1", game.PlayerUser, game.PlayerProgram)

	n, err := s.ReassignOwner(context.Background(), "anon-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	st, err := s.Stats(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, st.GamesPlayed)
}
