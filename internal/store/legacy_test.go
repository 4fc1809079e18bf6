package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateLegacy(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "notes.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id":"a","title":"legacy a","updatedAt":10},
		{"id":"b","title":"legacy b","updatedAt":10},
		{"title":"no id"},
		{"id":"c","updatedAt":"broken"}
	]`), 0o600))

	local := NewMemoryLocalStore()
	// a newer local copy of b is kept
	require.NoError(t, local.Put(ctx, note("b", 50, "local b")))

	migrated, err := MigrateLegacy(ctx, path, local, nopLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, migrated)

	a, err := local.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "legacy a", a.Title)
	assert.False(t, a.Synced)

	b, err := local.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "local b", b.Title)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "legacy file is removed")

	// second run is a no-op
	migrated, err = MigrateLegacy(ctx, path, local, nopLogger())
	require.NoError(t, err)
	assert.Zero(t, migrated)
}

func TestMigrateLegacy_NotAnArrayKeepsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"oops":true}`), 0o600))

	_, err := MigrateLegacy(context.Background(), path, NewMemoryLocalStore(), nopLogger())
	assert.Error(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestMigrateLegacy_StoreFailureKeepsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"a","updatedAt":1}]`), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := MigrateLegacy(ctx, path, NewMemoryLocalStore(), nopLogger())
	assert.ErrorIs(t, err, ErrStorage)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
