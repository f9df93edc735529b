package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimiter интерфейс для ограничения частоты исходящих запросов
type RateLimiter interface {
	// Wait блокируется до получения разрешения или отмены контекста
	Wait(ctx context.Context) error
}

// TokenBucketLimiter реализация RateLimiter на основе token bucket из golang.org/x/time/rate
type TokenBucketLimiter struct {
	limiter *rate.Limiter
}

// NewTokenBucketLimiter создает лимитер на rps запросов в секунду.
// При rps <= 0 возвращается Unlimited.
func NewTokenBucketLimiter(rps float64, burst int) RateLimiter {
	if rps <= 0 {
		return Unlimited{}
	}
	if burst < 1 {
		burst = 1
	}
	return &TokenBucketLimiter{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Wait ожидает свободный токен
func (l *TokenBucketLimiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return nil
}

// Unlimited не ограничивает запросы
type Unlimited struct{}

// Wait сразу возвращает управление, если контекст не отменен
func (Unlimited) Wait(ctx context.Context) error {
	return ctx.Err()
}
