package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Local {
	t.Helper()
	store, err := NewLocal(t.TempDir(), nil)
	require.NoError(t, err)
	return store
}

func TestSaveAndDelete(t *testing.T) {
	store := newTestStore(t)

	path, err := store.Save(strings.NewReader("fake video bytes"), "clip.mp4")
	require.NoError(t, err)
	assert.True(t, store.Exists(path))

	size, err := store.Size(path)
	require.NoError(t, err)
	assert.Equal(t, int64(len("fake video bytes")), size)

	info, err := store.Info(path)
	require.NoError(t, err)
	assert.Equal(t, "clip.mp4", info.Filename)

	require.NoError(t, store.Delete(path))
	assert.False(t, store.Exists(path))
}

func TestDeleteMissingIsNotAnError(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.Delete(filepath.Join(store.Root(), "never-existed.mp4")))
}

func TestSaveSanitizesFilename(t *testing.T) {
	store := newTestStore(t)

	path, err := store.Save(strings.NewReader("x"), "../escape.mp4")
	require.NoError(t, err)
	assert.Equal(t, store.Root(), filepath.Dir(path))
}

func TestSaveRejectsEmptyFilename(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Save(strings.NewReader("x"), "...")
	assert.Error(t, err)
}

func TestListOlderThan(t *testing.T) {
	store := newTestStore(t)

	oldPath, err := store.Save(strings.NewReader("old"), "old.mp4")
	require.NoError(t, err)
	_, err = store.Save(strings.NewReader("new"), "new.mp4")
	require.NoError(t, err)

	stale := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(oldPath, stale, stale))

	files, err := store.ListOlderThan(24 * time.Hour)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "old.mp4", files[0].Filename)
}
