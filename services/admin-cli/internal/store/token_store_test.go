package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkg_redis "StoryBoxAdmin/pkg/redis"
)

func TestFileTokenStore_SaveLoadClear(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "storybox")

	s, err := NewFileTokenStore(dir)
	require.NoError(t, err)

	token, user, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Nil(t, user)

	require.NoError(t, s.Save(ctx, "tok-1", []byte(`{"id":"u1"}`)))

	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	dirInfo, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), dirInfo.Mode().Perm())

	token, user, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.JSONEq(t, `{"id":"u1"}`, string(user))

	require.NoError(t, s.Clear(ctx))
	token, user, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Nil(t, user)

	// Повторная очистка не ошибка
	assert.NoError(t, s.Clear(ctx))
	assert.NoError(t, s.Close())
}

func TestFileTokenStore_KeepsMalformedUser(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileTokenStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, "tok", []byte("{not json")))

	token, user, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	assert.Equal(t, "{not json", string(user))
}

func TestFileTokenStore_CorruptedFile(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileTokenStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(s.Path(), []byte("garbage"), 0600))

	_, _, err = s.Load(ctx)
	assert.Error(t, err)
}

func TestFileTokenStore_NoTempResidue(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileTokenStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, "a", []byte(`{}`)))
	require.NoError(t, s.Save(ctx, "b", []byte(`{}`)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "session.json", entries[0].Name())
}

func TestNewFileTokenStore_EmptyDir(t *testing.T) {
	_, err := NewFileTokenStore("")
	assert.Error(t, err)
}

func TestMemoryTokenStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryTokenStore()

	token, user, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Nil(t, user)

	payload := []byte(`{"id":"u1"}`)
	require.NoError(t, s.Save(ctx, "tok", payload))
	payload[0] = 'X'

	token, user, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	assert.Equal(t, `{"id":"u1"}`, string(user))

	require.NoError(t, s.Clear(ctx))
	token, user, _ = s.Load(ctx)
	assert.Empty(t, token)
	assert.Nil(t, user)
}

// TestRedisTokenStore требует запущенный Redis, адрес задается STORYBOX_TEST_REDIS
func TestRedisTokenStore(t *testing.T) {
	addr := os.Getenv("STORYBOX_TEST_REDIS")
	if addr == "" {
		t.Skip("STORYBOX_TEST_REDIS не задан")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	config := pkg_redis.NewConfig()
	config.Addr = addr
	client, err := pkg_redis.Connect(ctx, config)
	require.NoError(t, err)

	s := NewRedisTokenStore(client, "storybox:test:"+t.Name()+":", time.Minute)
	defer s.Close()

	require.NoError(t, s.Clear(ctx))

	token, user, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Nil(t, user)

	require.NoError(t, s.Save(ctx, "tok", []byte(`{"id":"u1"}`)))
	token, user, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	assert.JSONEq(t, `{"id":"u1"}`, string(user))

	require.NoError(t, s.Clear(ctx))
	token, _, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}
