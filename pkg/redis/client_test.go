package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConnect_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	config := NewConfig()
	config.Addr = "127.0.0.1:1"
	config.Attempts = 2
	config.RetryInterval = 10 * time.Millisecond
	config.DialTimeout = 200 * time.Millisecond

	client, err := Connect(ctx, config)
	assert.ErrorContains(t, err, "after 2 attempts")
	assert.Nil(t, client)
}

func TestConnect_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	config := NewConfig()
	config.Addr = "127.0.0.1:1"
	config.Attempts = 5
	config.RetryInterval = time.Second

	_, err := Connect(ctx, config)
	assert.Error(t, err)
}

func TestClient_NotInitialized(t *testing.T) {
	var client *Client
	assert.Error(t, client.Ping(context.Background()))
	assert.NoError(t, client.Close())
	assert.NoError(t, (&Client{}).Close())
}

func TestNewConfig(t *testing.T) {
	config := NewConfig()

	assert.Equal(t, "localhost:6379", config.Addr)
	assert.Equal(t, 0, config.DB)
	assert.Equal(t, 4, config.PoolSize)
	assert.Equal(t, 3, config.Attempts)
	assert.Equal(t, 500*time.Millisecond, config.RetryInterval)

	opts := config.options()
	assert.Equal(t, config.IOTimeout, opts.ReadTimeout)
	assert.Equal(t, config.IOTimeout, opts.WriteTimeout)
}
