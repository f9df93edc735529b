package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"StoryBoxAdmin/pkg/logger"
	"StoryBoxAdmin/pkg/metrics"
)

// Kind тип уведомления
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
)

// DefaultTTL время показа уведомления
const DefaultTTL = 3 * time.Second

const queueMetricName = "notifications"

// Notification короткое сообщение для пользователя
type Notification struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notifier принимает уведомления без блокировки
type Notifier interface {
	Push(kind Kind, text string) Notification
}

// Sink получает каждое уведомление асинхронно
type Sink interface {
	Deliver(ctx context.Context, n Notification) error
}

// Options параметры очереди
type Options struct {
	// TTL <= 0 оставляет уведомления до явного Dismiss
	TTL     time.Duration
	Buffer  int
	Sinks   []Sink
	Metrics *metrics.Metrics
	Logger  logger.Logger
}

type entry struct {
	notification Notification
	timer        *time.Timer
}

// Queue очередь уведомлений в порядке поступления
type Queue struct {
	ttl     time.Duration
	sinks   []Sink
	metrics *metrics.Metrics
	logger  logger.Logger

	mu      sync.Mutex
	items   []entry
	closed  bool
	pending chan Notification
	done    chan struct{}
}

// NewQueue создает очередь и запускает доставку в приемники
func NewQueue(opts Options) *Queue {
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	if opts.Buffer <= 0 {
		opts.Buffer = 64
	}

	q := &Queue{
		ttl:     opts.TTL,
		sinks:   opts.Sinks,
		metrics: opts.Metrics,
		logger:  opts.Logger,
		pending: make(chan Notification, opts.Buffer),
		done:    make(chan struct{}),
	}
	go q.deliver()
	return q
}

// Push добавляет уведомление. Не блокируется: при переполненном буфере
// уведомление остается в очереди, но не доставляется приемникам.
func (q *Queue) Push(kind Kind, text string) Notification {
	n := Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Text:      text,
		CreatedAt: time.Now(),
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		q.logger.Debug("уведомление после закрытия очереди отброшено", logger.String("text", text))
		return n
	}

	e := entry{notification: n}
	if q.ttl > 0 {
		id := n.ID
		e.timer = time.AfterFunc(q.ttl, func() { q.Dismiss(id) })
	}
	q.items = append(q.items, e)
	q.reportSize()

	select {
	case q.pending <- n:
	default:
		q.logger.Warn("буфер уведомлений переполнен, уведомление не доставлено",
			logger.String("kind", string(kind)),
			logger.String("text", text))
	}
	return n
}

// Dismiss удаляет уведомление. Возвращает false, если его уже нет.
func (q *Queue) Dismiss(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, e := range q.items {
		if e.notification.ID != id {
			continue
		}
		if e.timer != nil {
			e.timer.Stop()
		}
		q.items = append(q.items[:i], q.items[i+1:]...)
		q.reportSize()
		return true
	}
	return false
}

// List возвращает снимок активных уведомлений
func (q *Queue) List() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	list := make([]Notification, len(q.items))
	for i, e := range q.items {
		list[i] = e.notification
	}
	return list
}

// Close останавливает таймеры и ждет доставки буфера, не дольше чем позволяет ctx
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	for _, e := range q.items {
		if e.timer != nil {
			e.timer.Stop()
		}
	}
	close(q.pending)
	q.mu.Unlock()

	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) deliver() {
	defer close(q.done)
	for n := range q.pending {
		for _, sink := range q.sinks {
			if err := sink.Deliver(context.Background(), n); err != nil {
				q.logger.Warn("ошибка доставки уведомления",
					logger.String("id", n.ID),
					logger.Error(err))
			}
		}
	}
}

// reportSize вызывается под mu
func (q *Queue) reportSize() {
	if q.metrics != nil {
		q.metrics.SetQueueSize(queueMetricName, float64(len(q.items)))
	}
}
