package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "metadata.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLookupMissReturnsNotOK(t *testing.T) {
	s := openTestStore(t)

	_, _, ok := s.Lookup("a.py", 100, time.Now())
	assert.False(t, ok)
}

func TestStoreThenLookup(t *testing.T) {
	s := openTestStore(t)
	mod := time.Now()

	require.NoError(t, s.Store("a.py", 100, mod, 42, "python"))

	lineCount, language, ok := s.Lookup("a.py", 100, mod)
	require.True(t, ok)
	assert.Equal(t, 42, lineCount)
	assert.Equal(t, "python", language)
}

func TestLookupStaleOnSizeOrTimeChange(t *testing.T) {
	s := openTestStore(t)
	mod := time.Now()

	require.NoError(t, s.Store("a.py", 100, mod, 42, "python"))

	_, _, ok := s.Lookup("a.py", 101, mod)
	assert.False(t, ok, "size change must invalidate")

	_, _, ok = s.Lookup("a.py", 100, mod.Add(time.Second))
	assert.False(t, ok, "mtime change must invalidate")
}

func TestStoreUpsertReplaces(t *testing.T) {
	s := openTestStore(t)
	mod := time.Now()

	require.NoError(t, s.Store("a.py", 100, mod, 42, "python"))
	newMod := mod.Add(time.Minute)
	require.NoError(t, s.Store("a.py", 120, newMod, 50, "python"))

	lineCount, _, ok := s.Lookup("a.py", 120, newMod)
	require.True(t, ok)
	assert.Equal(t, 50, lineCount)
}

func TestPurgeDropsStaleEntries(t *testing.T) {
	s := openTestStore(t)
	mod := time.Now()

	require.NoError(t, s.Store("keep.py", 10, mod, 1, "python"))
	require.NoError(t, s.Store("gone.py", 20, mod, 2, "python"))

	require.NoError(t, s.Purge(map[string]bool{"keep.py": true}))

	_, _, ok := s.Lookup("keep.py", 10, mod)
	assert.True(t, ok)
	_, _, ok = s.Lookup("gone.py", 20, mod)
	assert.False(t, ok)
}
