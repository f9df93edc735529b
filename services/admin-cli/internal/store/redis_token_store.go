package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	pkg_redis "StoryBoxAdmin/pkg/redis"
)

// RedisTokenStore хранит сессию в Redis под двумя ключами: <prefix>token и <prefix>user
type RedisTokenStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisTokenStore создает хранилище поверх подключения pkg/redis.
// ttl = 0 означает хранение без ограничения по времени.
func NewRedisTokenStore(client *pkg_redis.Client, prefix string, ttl time.Duration) *RedisTokenStore {
	return &RedisTokenStore{
		client: client.Client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (s *RedisTokenStore) tokenKey() string { return s.prefix + "token" }
func (s *RedisTokenStore) userKey() string  { return s.prefix + "user" }

// Load читает оба ключа одним MGET
func (s *RedisTokenStore) Load(ctx context.Context) (string, []byte, error) {
	values, err := s.client.MGet(ctx, s.tokenKey(), s.userKey()).Result()
	if err != nil {
		return "", nil, fmt.Errorf("ошибка загрузки сессии из Redis: %w", err)
	}

	var token string
	var user []byte
	if v, ok := values[0].(string); ok {
		token = v
	}
	if v, ok := values[1].(string); ok && v != "" {
		user = []byte(v)
	}
	return token, user, nil
}

// Save записывает оба ключа в транзакции MULTI/EXEC
func (s *RedisTokenStore) Save(ctx context.Context, token string, user []byte) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.tokenKey(), token, s.ttl)
		pipe.Set(ctx, s.userKey(), string(user), s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения сессии в Redis: %w", err)
	}
	return nil
}

// Clear удаляет оба ключа одной командой DEL
func (s *RedisTokenStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.tokenKey(), s.userKey()).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("ошибка удаления сессии из Redis: %w", err)
	}
	return nil
}

// Close закрывает подключение к Redis
func (s *RedisTokenStore) Close() error {
	return s.client.Close()
}
