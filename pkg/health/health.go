package health

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Значения статуса
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// CheckFunc проверяет одну зависимость. nil означает, что зависимость доступна.
type CheckFunc func(ctx context.Context) error

// HealthChecker интерфейс для проверки здоровья клиента и его зависимостей
type HealthChecker interface {
	Check(ctx context.Context) *HealthStatus
}

// HealthStatus представляет сводный статус
type HealthStatus struct {
	Status    string            `json:"status" yaml:"status"`
	Timestamp time.Time         `json:"timestamp" yaml:"timestamp"`
	Services  map[string]Status `json:"services,omitempty" yaml:"services,omitempty"`
	Version   string            `json:"version,omitempty" yaml:"version,omitempty"`
}

// Status представляет статус отдельной зависимости
type Status struct {
	Status   string        `json:"status" yaml:"status"`
	Details  string        `json:"details,omitempty" yaml:"details,omitempty"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Checker выполняет зарегистрированные проверки параллельно
type Checker struct {
	version string
	timeout time.Duration

	mu     sync.RWMutex
	checks map[string]CheckFunc
}

// NewChecker создает Checker. timeout ограничивает каждую проверку; 0 означает без ограничения.
func NewChecker(version string, timeout time.Duration) *Checker {
	return &Checker{
		version: version,
		timeout: timeout,
		checks:  make(map[string]CheckFunc),
	}
}

// Register добавляет проверку под именем зависимости
func (c *Checker) Register(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Names возвращает имена зарегистрированных проверок в алфавитном порядке
func (c *Checker) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Check запускает все проверки. Общий статус healthy, только если прошли все.
func (c *Checker) Check(ctx context.Context) *HealthStatus {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	result := &HealthStatus{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
		Services:  make(map[string]Status, len(checks)),
		Version:   c.version,
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, check := range checks {
		wg.Add(1)
		go func(name string, check CheckFunc) {
			defer wg.Done()

			checkCtx := ctx
			if c.timeout > 0 {
				var cancel context.CancelFunc
				checkCtx, cancel = context.WithTimeout(ctx, c.timeout)
				defer cancel()
			}

			started := time.Now()
			err := check(checkCtx)
			status := Status{Status: StatusHealthy, Duration: time.Since(started)}
			if err != nil {
				status.Status = StatusUnhealthy
				status.Details = err.Error()
			}

			mu.Lock()
			result.Services[name] = status
			if err != nil {
				result.Status = StatusUnhealthy
			}
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()

	return result
}
