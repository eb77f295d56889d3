package database

import (
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/pebbles/assets"
)

func TestMigrate_EmbeddedSchema(t *testing.T) {
	db, err := Open(Memory)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db, assets.Migrations()))
	// Second run is a no-op.
	require.NoError(t, Migrate(db, assets.Migrations()))

	for _, table := range []string{"users", "sessions", "game_results"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, table)
	}

	var applied int
	require.NoError(t, db.QueryRow(`SELECT COUNT(1) FROM _migrations`).Scan(&applied))
	assert.Equal(t, 1, applied)
}

func TestMigrate_LexicalOrder(t *testing.T) {
	db, err := Open(Memory)
	require.NoError(t, err)
	defer db.Close()

	fsys := fstest.MapFS{
		"002_seed.sql":   {Data: []byte(`INSERT INTO things (name) VALUES ('first');`)},
		"001_create.sql": {Data: []byte(`CREATE TABLE things (name TEXT);`)},
		"README.md":      {Data: []byte(`not a migration`)},
	}
	require.NoError(t, Migrate(db, fsys))

	var name string
	require.NoError(t, db.QueryRow(`SELECT name FROM things`).Scan(&name))
	assert.Equal(t, "first", name)
}

func TestMigrate_FailureRollsBack(t *testing.T) {
	db, err := Open(Memory)
	require.NoError(t, err)
	defer db.Close()

	fsys := fstest.MapFS{
		"001_broken.sql": {Data: []byte(`CREATE TABLE ok (id INTEGER); THIS IS NOT SQL;`)},
	}
	require.Error(t, Migrate(db, fsys))

	var applied int
	require.NoError(t, db.QueryRow(`SELECT COUNT(1) FROM _migrations`).Scan(&applied))
	assert.Zero(t, applied)
}

func TestOpen_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pebbles.db")
	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db, assets.Migrations()))
	assert.FileExists(t, path)
}

func TestFormatTime_SortsLexically(t *testing.T) {
	base := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	earlier := FormatTime(base)
	later := FormatTime(base.Add(500 * time.Millisecond))
	assert.Less(t, earlier, later)
	assert.Len(t, later, len(earlier))

	local := base.In(time.FixedZone("UTC+2", 2*60*60))
	assert.Equal(t, earlier, FormatTime(local), "stored in UTC")
	assert.True(t, base.Equal(ParseTime(earlier)))
	assert.True(t, ParseTime("yesterday").IsZero())
}
