package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func exerciseDatabase(t *testing.T, db Database) {
	t.Helper()

	_, err := db.Get([]byte("missing"))
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.Put([]byte("a"), []byte("1")))
	value, err := db.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), value)

	batch := db.NewBatch()
	batch.Put([]byte("a"), []byte("2"))
	batch.Put([]byte("b"), []byte("3"))
	require.Equal(t, 2, batch.Len())

	value, err = db.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), value, "batch must not be visible before Write")

	require.NoError(t, batch.Write())
	value, err = db.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("2"), value)
	value, err = db.Get([]byte("b"))
	require.NoError(t, err)
	require.Equal(t, []byte("3"), value)
}

func TestMemDB(t *testing.T) {
	db := NewMemDB()
	defer db.Close()
	exerciseDatabase(t, db)
}

func TestLevelDB(t *testing.T) {
	db, err := NewLevelDB(t.TempDir())
	require.NoError(t, err)
	defer db.Close()
	exerciseDatabase(t, db)
}

func TestLevelDBPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	db, err := NewLevelDB(dir)
	require.NoError(t, err)
	require.NoError(t, db.Put([]byte("k"), []byte("v")))
	db.Close()

	reopened, err := NewLevelDB(dir)
	require.NoError(t, err)
	defer reopened.Close()
	value, err := reopened.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), value)
}

func TestBoltDB(t *testing.T) {
	db, err := NewBoltDB(filepath.Join(t.TempDir(), "state.bolt"))
	require.NoError(t, err)
	defer db.Close()
	exerciseDatabase(t, db)
}

func TestOpenSelectsEngine(t *testing.T) {
	for _, engine := range []string{EngineLevelDB, EngineBolt} {
		db, err := Open(engine, t.TempDir())
		require.NoError(t, err, engine)
		require.NoError(t, db.Put([]byte("k"), []byte(engine)))
		db.Close()
	}
	_, err := Open("rocksdb", t.TempDir())
	require.Error(t, err)
}
