package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveReadDirs(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("sess-b/teachers.xml", []byte("<Teachers/>"))
	require.NoError(t, err)
	_, err = store.Save("sess-a/mappings.json", []byte("{}"))
	require.NoError(t, err)

	data, err := store.Read("sess-b/teachers.xml")
	require.NoError(t, err)
	assert.Equal(t, "<Teachers/>", string(data))
	assert.True(t, store.Exists("sess-a/mappings.json"))
	assert.False(t, store.Exists("sess-a/teachers.xml"))

	dirs, err := store.Dirs()
	require.NoError(t, err)
	assert.Equal(t, []string{"sess-a", "sess-b"}, dirs)

	_, err = store.Read("sess-a/missing.xml")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("../outside.txt", []byte("x"))
	assert.Error(t, err)
	_, err = store.Read("a/../../etc/passwd")
	assert.Error(t, err)
}

func TestLocalStorageCleanupOlderThan(t *testing.T) {
	base := t.TempDir()
	store, err := NewLocalStorage(base)
	require.NoError(t, err)

	_, err = store.Save("batch/old.zip", []byte("old"))
	require.NoError(t, err)
	_, err = store.Save("batch/new.zip", []byte("new"))
	require.NoError(t, err)

	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(base, "batch", "old.zip"), past, past))

	deleted, err := store.CleanupOlderThan(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"batch/old.zip"}, deleted)
	assert.True(t, store.Exists("batch/new.zip"))
}

func TestLocalStorageDeleteTree(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("sess-a/teachers.xml", []byte("x"))
	require.NoError(t, err)
	require.NoError(t, store.Delete("sess-a"))
	assert.False(t, store.Exists("sess-a/teachers.xml"))
	assert.Error(t, store.Delete("."))
}
