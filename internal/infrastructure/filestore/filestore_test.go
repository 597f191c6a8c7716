package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "storage.json")
	ctx := context.Background()

	s := New(path)
	require.NoError(t, s.Set(ctx, "visitorId", "abc"))
	require.NoError(t, s.Close())

	reopened := New(path)
	v, ok, err := reopened.Get(ctx, "visitorId")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)
}

func TestStore_CorruptFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := New(path)
	_, ok, err := s.Get(context.Background(), "talents")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(context.Background(), "talents", "[]"))
	v, ok, err := New(path).Get(context.Background(), "talents")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)
}

func TestStore_DeleteMissingKey(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "storage.json"))
	assert.NoError(t, s.Delete(context.Background(), "nope"))
}
