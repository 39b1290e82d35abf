package snapshot_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copiiworld/cajita-go/internal/snapshot"
)

func openTestKV(t *testing.T) *snapshot.SQLiteKV {
	t.Helper()
	kv, err := snapshot.OpenSQLite(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func TestSQLiteSetGetDelete(t *testing.T) {
	kv := openTestKV(t)
	ctx := context.Background()

	_, ok, err := kv.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "session.1", "payload-a"))
	v, ok, err := kv.Get(ctx, "session.1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "payload-a", v)

	// Overwrite: at most one pending snapshot per key
	require.NoError(t, kv.Set(ctx, "session.1", "payload-b"))
	v, ok, err = kv.Get(ctx, "session.1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "payload-b", v)

	require.NoError(t, kv.Delete(ctx, "session.1"))
	_, ok, err = kv.Get(ctx, "session.1")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting an absent key is fine
	require.NoError(t, kv.Delete(ctx, "session.1"))
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sessions.db")
	ctx := context.Background()

	kv, err := snapshot.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, "session.2", "sticky"))
	require.NoError(t, kv.Close())

	kv, err = snapshot.OpenSQLite(path)
	require.NoError(t, err)
	defer kv.Close()

	v, ok, err := kv.Get(ctx, "session.2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "sticky", v)
}
