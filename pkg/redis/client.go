package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config параметры подключения к Redis
type Config struct {
	Addr     string
	Password string
	DB       int
	PoolSize int

	// Attempts число попыток PING при подключении
	Attempts      int
	RetryInterval time.Duration
	DialTimeout   time.Duration
	IOTimeout     time.Duration
}

// NewConfig возвращает настройки для локального Redis.
// Пул небольшой: клиент командной строки выполняет единичные запросы.
func NewConfig() *Config {
	return &Config{
		Addr:          "localhost:6379",
		PoolSize:      4,
		Attempts:      3,
		RetryInterval: 500 * time.Millisecond,
		DialTimeout:   3 * time.Second,
		IOTimeout:     3 * time.Second,
	}
}

func (c *Config) options() *redis.Options {
	return &redis.Options{
		Addr:         c.Addr,
		Password:     c.Password,
		DB:           c.DB,
		PoolSize:     c.PoolSize,
		DialTimeout:  c.DialTimeout,
		ReadTimeout:  c.IOTimeout,
		WriteTimeout: c.IOTimeout,
	}
}

// Client подключение к Redis; методы go-redis доступны напрямую
type Client struct {
	*redis.Client
}

// Connect создает клиента и ждет успешного PING
func Connect(ctx context.Context, config *Config) (*Client, error) {
	attempts := config.Attempts
	if attempts < 1 {
		attempts = 1
	}

	client := &Client{Client: redis.NewClient(config.options())}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if lastErr = client.Ping(ctx); lastErr == nil {
			return client, nil
		}
		if attempt == attempts {
			break
		}

		timer := time.NewTimer(config.RetryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			client.Close()
			return nil, fmt.Errorf("redis connect cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	}

	client.Close()
	return nil, fmt.Errorf("redis %s unreachable after %d attempts: %w", config.Addr, attempts, lastErr)
}

// Ping проверяет доступность сервера
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.Client == nil {
		return errors.New("redis client is not initialized")
	}
	return c.Client.Ping(ctx).Err()
}

// Close закрывает пул соединений
func (c *Client) Close() error {
	if c == nil || c.Client == nil {
		return nil
	}
	return c.Client.Close()
}
