package jsonstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	RecordID string `json:"id"`
	Name     string `json:"name"`
}

func (r record) ID() string { return r.RecordID }

func TestSaveLoadRoundTrip(t *testing.T) {
	store := New[record](t.TempDir())

	id, err := store.Save(record{RecordID: "rec-1", Name: "Italian Game"})
	require.NoError(t, err)
	assert.Equal(t, "rec-1", id)

	got, ok, err := store.Load("rec-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Italian Game", got.Name)
}

func TestLoadMissingRecordReturnsNotOK(t *testing.T) {
	store := New[record](t.TempDir())
	_, ok, err := store.Load("does-not-exist")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveOverwritesExistingRecord(t *testing.T) {
	store := New[record](t.TempDir())

	_, err := store.Save(record{RecordID: "rec-1", Name: "first"})
	require.NoError(t, err)
	_, err = store.Save(record{RecordID: "rec-1", Name: "second"})
	require.NoError(t, err)

	got, ok, err := store.Load("rec-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", got.Name)
}

func TestLoadAllSkipsUnparseableFilesAndNonexistentDir(t *testing.T) {
	dir := t.TempDir()
	store := New[record](dir)

	_, err := store.Save(record{RecordID: "rec-1", Name: "a"})
	require.NoError(t, err)
	_, err = store.Save(record{RecordID: "rec-2", Name: "b"})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "garbage.json"), []byte("{not json"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("hello"), 0o644))

	items, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)

	emptyStore := New[record](filepath.Join(dir, "does-not-exist"))
	items, err = emptyStore.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDeleteRemovesRecordAndIsIdempotent(t *testing.T) {
	store := New[record](t.TempDir())

	_, err := store.Save(record{RecordID: "rec-1", Name: "a"})
	require.NoError(t, err)

	require.NoError(t, store.Delete("rec-1"))
	_, ok, err := store.Load("rec-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Delete("rec-1"))
}
