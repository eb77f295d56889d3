package store

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

// implementations returns a fresh instance of every Store.
func implementations(t *testing.T) map[string]Store {
	t.Helper()
	db, err := database.Open(database.Memory)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db, assets.Migrations()))

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": NewSQLiteStore(db),
	}
}

func newSession(id, owner string, updated time.Time) *Session {
	return &Session{
		ID:      id,
		OwnerID: owner,
		State: game.State{
			PebblesCount:      15,
			MaxPebblesPerTurn: 2,
			PebblesRemaining:  15,
			Difficulty:        game.DifficultyEasy,
			FirstPlayer:       game.PlayerUser,
		},
		CreatedAt: updated,
		UpdatedAt: updated,
	}
}

func TestStore_SaveGet(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	for name, st := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			sess := newSession("g1", "owner", now)
			require.NoError(t, st.Save(ctx, sess))

			got, err := st.Get(ctx, "g1")
			require.NoError(t, err)
			assert.Equal(t, sess, got)

			winner := game.PlayerProgram
			sess.State.PebblesRemaining = 0
			sess.State.Winner = &winner
			sess.Turns = 4
			sess.UpdatedAt = now.Add(time.Minute)
			require.NoError(t, st.Save(ctx, sess))

			got, err = st.Get(ctx, "g1")
			require.NoError(t, err)
			assert.Equal(t, sess, got)
			require.NotNil(t, got.State.Winner)
			assert.Equal(t, game.PlayerProgram, *got.State.Winner)
		})
	}
}

func TestStore_GetMissing(t *testing.T) {
	for name, st := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			_, err := st.Get(context.Background(), "nope")
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_SaveRequiresID(t *testing.T) {
	for name, st := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			require.Error(t, st.Save(context.Background(), &Session{}))
		})
	}
}

func TestStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	for name, st := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			sess := newSession("g1", "owner", time.Now().UTC())
			require.NoError(t, st.Save(ctx, sess))

			sess.State.PebblesRemaining = 1
			got, err := st.Get(ctx, "g1")
			require.NoError(t, err)
			assert.Equal(t, uint32(15), got.State.PebblesRemaining)

			got.State.PebblesRemaining = 3
			again, err := st.Get(ctx, "g1")
			require.NoError(t, err)
			assert.Equal(t, uint32(15), again.State.PebblesRemaining)
		})
	}
}

func TestStore_ListByOwner(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	for name, st := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, st.Save(ctx, newSession("old", "alice", base)))
			require.NoError(t, st.Save(ctx, newSession("new", "alice", base.Add(2*time.Hour))))
			require.NoError(t, st.Save(ctx, newSession("mid", "alice", base.Add(time.Hour))))
			require.NoError(t, st.Save(ctx, newSession("other", "bob", base)))

			all, err := st.ListByOwner(ctx, "alice", 0)
			require.NoError(t, err)
			ids := make([]string, 0, len(all))
			for _, s := range all {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, []string{"new", "mid", "old"}, ids)

			limited, err := st.ListByOwner(ctx, "alice", 2)
			require.NoError(t, err)
			assert.Len(t, limited, 2)

			none, err := st.ListByOwner(ctx, "carol", 10)
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}

func TestStore_ReassignOwner(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	for name, st := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, st.Save(ctx, newSession("a", "anon-1", now)))
			require.NoError(t, st.Save(ctx, newSession("b", "anon-1", now)))
			require.NoError(t, st.Save(ctx, newSession("c", "anon-2", now)))

			n, err := st.ReassignOwner(ctx, "anon-1", "user-1")
			require.NoError(t, err)
			assert.Equal(t, 2, n)

			got, err := st.Get(ctx, "a")
			require.NoError(t, err)
			assert.Equal(t, "user-1", got.OwnerID)

			left, err := st.ListByOwner(ctx, "anon-1", 0)
			require.NoError(t, err)
			assert.Empty(t, left)
		})
	}
}
