package confirm

import (
	"context"
	"sync"

	"StoryBoxAdmin/pkg/logger"
)

// Prompt запрос подтверждения
type Prompt struct {
	Title       string
	Message     string
	ConfirmText string
	// Kind оттенок запроса: danger для удаления, warning для смены статуса
	Kind string
}

// Responder показывает запрос пользователю и возвращает ответ
type Responder interface {
	Respond(ctx context.Context, prompt Prompt) (bool, error)
}

// ResponderFunc адаптер функции к Responder
type ResponderFunc func(ctx context.Context, prompt Prompt) (bool, error)

func (f ResponderFunc) Respond(ctx context.Context, prompt Prompt) (bool, error) {
	return f(ctx, prompt)
}

// Requester запрашивает подтверждение
type Requester interface {
	Request(ctx context.Context, prompt Prompt) bool
}

// Gate показывает не больше одного запроса одновременно.
// Конкурентные запросы ждут своей очереди в порядке поступления.
// Отмена контекста или DismissAll дают отказ.
type Gate struct {
	responder Responder
	logger    logger.Logger

	mu        sync.Mutex
	active    bool
	waiters   []chan struct{}
	dismissed chan struct{}
}

// NewGate создает Gate
func NewGate(responder Responder, log logger.Logger) *Gate {
	if log == nil {
		log = logger.NewNop()
	}
	return &Gate{
		responder: responder,
		logger:    log,
		dismissed: make(chan struct{}),
	}
}

// Request блокируется до ответа пользователя. Любой исход кроме явного согласия дает false.
func (g *Gate) Request(ctx context.Context, prompt Prompt) bool {
	dismissed, ok := g.acquire(ctx)
	if !ok {
		return false
	}
	defer g.release()

	// Отмененный запрос не должен дальше ждать ответа
	rctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type answer struct {
		ok  bool
		err error
	}
	done := make(chan answer, 1)
	go func() {
		confirmed, err := g.responder.Respond(rctx, prompt)
		done <- answer{ok: confirmed, err: err}
	}()

	select {
	case a := <-done:
		if a.err != nil {
			g.logger.Warn("ошибка запроса подтверждения", logger.String("title", prompt.Title), logger.Error(a.err))
			return false
		}
		return a.ok
	case <-ctx.Done():
		return false
	case <-dismissed:
		return false
	}
}

// DismissAll отклоняет текущий и все ожидающие запросы
func (g *Gate) DismissAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	close(g.dismissed)
	g.dismissed = make(chan struct{})
}

// Pending возвращает число запросов, ожидающих очереди
func (g *Gate) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.waiters)
}

// acquire ждет очереди. Возвращает канал отмены поколения, в котором запрос поставлен.
func (g *Gate) acquire(ctx context.Context) (<-chan struct{}, bool) {
	g.mu.Lock()
	dismissed := g.dismissed
	if !g.active {
		g.active = true
		g.mu.Unlock()
		return dismissed, true
	}
	turn := make(chan struct{})
	g.waiters = append(g.waiters, turn)
	g.mu.Unlock()

	select {
	case <-turn:
		// Пока ждали, очередь могли распустить
		select {
		case <-dismissed:
			g.release()
			return nil, false
		default:
			return dismissed, true
		}
	case <-ctx.Done():
	case <-dismissed:
	}

	g.mu.Lock()
	for i, w := range g.waiters {
		if w == turn {
			g.waiters = append(g.waiters[:i], g.waiters[i+1:]...)
			g.mu.Unlock()
			return nil, false
		}
	}
	g.mu.Unlock()
	// Очередь уже передана этому запросу, отдаем ее следующему
	g.release()
	return nil, false
}

// release передает очередь следующему ожидающему
func (g *Gate) release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.waiters) == 0 {
		g.active = false
		return
	}
	next := g.waiters[0]
	g.waiters = g.waiters[1:]
	close(next)
}
