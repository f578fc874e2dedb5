package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	key := "test-save"
	t.Cleanup(func() { _ = s.Delete(ctx, key) })

	_, err := s.Load(ctx, key)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save(ctx, key, []byte("version: 1\n")))
	require.NoError(t, s.Save(ctx, key, []byte("version: 1\nday: 2\n")))
	got, err := s.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "version: 1\nday: 2\n", string(got))

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Load(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "saves")
	exerciseStore(t, NewFileStore(dir))

	s := NewFileStore(dir)
	require.NoError(t, s.Save(context.Background(), "slot", []byte("x")))
	_, err := os.Stat(filepath.Join(dir, "slot.yaml"))
	assert.NoError(t, err)

	assert.Error(t, s.Save(context.Background(), "../escape", []byte("x")))
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "saves.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	exerciseStore(t, s)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	s, err := OpenRedis(context.Background(), addr, os.Getenv("REDIS_PASSWORD"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	exerciseStore(t, s)
}

func TestOpen(t *testing.T) {
	s, err := Open(context.Background(), Settings{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = Open(context.Background(), Settings{Backend: "tape"})
	assert.Error(t, err)
}
