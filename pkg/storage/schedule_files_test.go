package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestLocalStorageSaveAndOpen(t *testing.T) {
	store := newTestStorage(t)

	rel, err := store.Save("nested/report.csv", []byte("a,b\n1,2\n"))
	require.NoError(t, err)
	assert.Equal(t, "nested/report.csv", rel)

	file, err := store.Open(rel)
	require.NoError(t, err)
	defer file.Close()

	data, err := os.ReadFile(store.Path(rel))
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(data))
}

func TestLocalStorageDeleteMissingFile(t *testing.T) {
	store := newTestStorage(t)
	assert.NoError(t, store.Delete("never-written.txt"))
}

func TestScheduleFilesCreateAndDelete(t *testing.T) {
	store := newTestStorage(t)
	files := NewScheduleFiles(store)

	require.NoError(t, files.Create("prof-1"))
	path := store.Path(filepath.Join("professors", "prof-1.txt"))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "schedule for prof-1")

	require.NoError(t, files.Delete("prof-1"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestScheduleFilesDeleteMissingIsNoError(t *testing.T) {
	store := newTestStorage(t)
	files := NewScheduleFiles(store)
	assert.NoError(t, files.Delete("ghost"))
}
