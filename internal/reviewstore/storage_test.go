package reviewstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ikkim/juveboxd-backend/internal/app/model"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStorage(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.GetItem(ctx, StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetItem(ctx, StorageKey, `[{"id":"1"}]`))
	v, ok, err := s.GetItem(ctx, StorageKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"1"}]`, v)

	require.NoError(t, s.SetItem(ctx, StorageKey, `[]`))
	v, _, _ = s.GetItem(ctx, StorageKey)
	assert.Equal(t, `[]`, v)

	require.NoError(t, s.RemoveItem(ctx, StorageKey))
	_, ok, err = s.GetItem(ctx, StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.RemoveItem(ctx, StorageKey))
}

func TestMemoryStorage(t *testing.T) {
	exerciseStorage(t, NewMemoryStorage(0))
}

func TestMemoryStorage_Quota(t *testing.T) {
	s := NewMemoryStorage(20)
	ctx := context.Background()

	require.NoError(t, s.SetItem(ctx, "k", "0123456789"))
	// Replacing a key only counts the new value.
	require.NoError(t, s.SetItem(ctx, "k", "0123456789abcdef"))
	assert.ErrorIs(t, s.SetItem(ctx, "k", "0123456789abcdefghijk"), ErrPersistenceFull)
	assert.ErrorIs(t, s.SetItem(ctx, "other", "0123"), ErrPersistenceFull)
}

func TestFileStorage(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStorage(filepath.Join(dir, "data"), 0)
	require.NoError(t, err)
	exerciseStorage(t, s)

	require.NoError(t, s.SetItem(context.Background(), StorageKey, "[]"))
	_, err = os.Stat(filepath.Join(dir, "data", StorageKey+".json"))
	assert.NoError(t, err)
}

func TestFileStorage_LimitsAndKeys(t *testing.T) {
	s, err := NewFileStorage(t.TempDir(), 8)
	require.NoError(t, err)
	ctx := context.Background()

	assert.ErrorIs(t, s.SetItem(ctx, "k", "123456789"), ErrPersistenceFull)
	assert.Error(t, s.SetItem(ctx, "../escape", "x"))
	_, _, err = s.GetItem(ctx, "a/b")
	assert.Error(t, err)
}

func TestFileStorage_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s1, err := NewFileStorage(dir, 0)
	require.NoError(t, err)
	store := NewLocalStore(s1, nil, nil)
	created, err := store.Create(ctx, model.ReviewDraft{Nickname: "Ana", Rating: 4.5, Comment: "Otimo"})
	require.NoError(t, err)

	s2, err := NewFileStorage(dir, 0)
	require.NoError(t, err)
	got, err := NewLocalStore(s2, nil, nil).GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func setupRedisStorage(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStorage(client, "juveboxd:"), mr
}

func TestRedisStorage(t *testing.T) {
	s, mr := setupRedisStorage(t)
	exerciseStorage(t, s)

	require.NoError(t, s.SetItem(context.Background(), StorageKey, "[]"))
	assert.True(t, mr.Exists("juveboxd:"+StorageKey))
}

func TestRedisStorage_BackingLocalStore(t *testing.T) {
	s, mr := setupRedisStorage(t)
	store := NewLocalStore(s, nil, nil)
	ctx := context.Background()

	created, err := store.Create(ctx, model.ReviewDraft{Nickname: "Ana", Rating: 5})
	require.NoError(t, err)

	raw, err := mr.Get("juveboxd:" + StorageKey)
	require.NoError(t, err)
	assert.Contains(t, raw, created.ID)

	mr.Set("juveboxd:"+StorageKey, "garbage")
	_, err = store.List(ctx)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestRedisStorage_Unreachable(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := NewLocalStore(NewRedisStorage(client, ""), nil, nil).List(ctx)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
