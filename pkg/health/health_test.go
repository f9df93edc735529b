package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestChecker_AllHealthy проверяет сводный статус при успешных проверках
func TestChecker_AllHealthy(t *testing.T) {
	checker := NewChecker("v1.0.0", time.Second)
	checker.Register("api", func(ctx context.Context) error { return nil })
	checker.Register("session", func(ctx context.Context) error { return nil })

	status := checker.Check(context.Background())

	if status.Status != StatusHealthy {
		t.Errorf("Expected status 'healthy', got %s", status.Status)
	}
	if status.Timestamp.IsZero() {
		t.Error("Expected timestamp, got zero")
	}
	if status.Version != "v1.0.0" {
		t.Errorf("Expected version 'v1.0.0', got %s", status.Version)
	}
	if len(status.Services) != 2 {
		t.Errorf("Expected 2 services, got %d", len(status.Services))
	}
}

// TestChecker_OneUnhealthy проверяет, что одна неудачная проверка меняет общий статус
func TestChecker_OneUnhealthy(t *testing.T) {
	checker := NewChecker("v1.0.0", time.Second)
	checker.Register("api", func(ctx context.Context) error { return nil })
	checker.Register("broker", func(ctx context.Context) error { return errors.New("connection refused") })

	status := checker.Check(context.Background())

	if status.Status != StatusUnhealthy {
		t.Errorf("Expected status 'unhealthy', got %s", status.Status)
	}
	broker := status.Services["broker"]
	if broker.Status != StatusUnhealthy || broker.Details != "connection refused" {
		t.Errorf("Unexpected broker status %+v", broker)
	}
	if status.Services["api"].Status != StatusHealthy {
		t.Errorf("Expected api to stay healthy")
	}
}

// TestChecker_Timeout проверяет ограничение времени проверки
func TestChecker_Timeout(t *testing.T) {
	checker := NewChecker("v1.0.0", 20*time.Millisecond)
	checker.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	status := checker.Check(context.Background())
	if status.Services["slow"].Status != StatusUnhealthy {
		t.Errorf("Expected slow check to time out")
	}
}

// TestChecker_Names проверяет порядок имен
func TestChecker_Names(t *testing.T) {
	checker := NewChecker("", 0)
	checker.Register("session", func(ctx context.Context) error { return nil })
	checker.Register("api", func(ctx context.Context) error { return nil })

	names := checker.Names()
	if len(names) != 2 || names[0] != "api" || names[1] != "session" {
		t.Errorf("Unexpected names %v", names)
	}
}
