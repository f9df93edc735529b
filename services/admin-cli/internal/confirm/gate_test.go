package confirm

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingResponder отвечает только после сигнала и запоминает порядок запросов
type blockingResponder struct {
	mu      sync.Mutex
	seen    []string
	release chan bool
	shown   chan string
}

func newBlockingResponder() *blockingResponder {
	return &blockingResponder{release: make(chan bool), shown: make(chan string, 16)}
}

func (r *blockingResponder) Respond(ctx context.Context, p Prompt) (bool, error) {
	r.mu.Lock()
	r.seen = append(r.seen, p.Title)
	r.mu.Unlock()
	r.shown <- p.Title
	select {
	case answer := <-r.release:
		return answer, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func waitPending(t *testing.T, g *Gate, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return g.Pending() == n }, time.Second, time.Millisecond)
}

func TestGate_StaticAnswers(t *testing.T) {
	ctx := context.Background()
	assert.True(t, NewGate(StaticResponder{Answer: true}, nil).Request(ctx, Prompt{Title: "a"}))
	assert.False(t, NewGate(StaticResponder{Answer: false}, nil).Request(ctx, Prompt{Title: "a"}))
}

func TestGate_ResponderErrorIsDecline(t *testing.T) {
	g := NewGate(ResponderFunc(func(context.Context, Prompt) (bool, error) {
		return true, errors.New("tty closed")
	}), nil)
	assert.False(t, g.Request(context.Background(), Prompt{}))
}

func TestGate_FIFOOneVisible(t *testing.T) {
	r := newBlockingResponder()
	g := NewGate(r, nil)
	ctx := context.Background()

	results := make(chan string, 3)
	ask := func(title string) {
		if g.Request(ctx, Prompt{Title: title}) {
			results <- title
		} else {
			results <- "!" + title
		}
	}

	go ask("first")
	assert.Equal(t, "first", <-r.shown)

	go ask("second")
	waitPending(t, g, 1)
	go ask("third")
	waitPending(t, g, 2)

	// Пока первый запрос открыт, другие не показываются
	select {
	case title := <-r.shown:
		t.Fatalf("unexpected prompt %q while another is visible", title)
	case <-time.After(20 * time.Millisecond):
	}

	r.release <- true
	assert.Equal(t, "first", <-results)
	assert.Equal(t, "second", <-r.shown)
	r.release <- false
	assert.Equal(t, "!second", <-results)
	assert.Equal(t, "third", <-r.shown)
	r.release <- true
	assert.Equal(t, "third", <-results)

	r.mu.Lock()
	assert.Equal(t, []string{"first", "second", "third"}, r.seen)
	r.mu.Unlock()
	assert.Equal(t, 0, g.Pending())
}

func TestGate_ContextCancelDeclines(t *testing.T) {
	r := newBlockingResponder()
	g := NewGate(r, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan bool, 1)
	go func() { done <- g.Request(ctx, Prompt{Title: "visible"}) }()
	<-r.shown
	cancel()
	assert.False(t, <-done)

	// Очередь освобождена
	go func() { done <- g.Request(context.Background(), Prompt{Title: "next"}) }()
	assert.Equal(t, "next", <-r.shown)
	r.release <- true
	assert.True(t, <-done)
}

func TestGate_CancelWhileQueued(t *testing.T) {
	r := newBlockingResponder()
	g := NewGate(r, nil)

	first := make(chan bool, 1)
	go func() { first <- g.Request(context.Background(), Prompt{Title: "first"}) }()
	<-r.shown

	ctx, cancel := context.WithCancel(context.Background())
	queued := make(chan bool, 1)
	go func() { queued <- g.Request(ctx, Prompt{Title: "queued"}) }()
	waitPending(t, g, 1)
	cancel()
	assert.False(t, <-queued)
	assert.Equal(t, 0, g.Pending())

	r.release <- true
	assert.True(t, <-first)
}

func TestGate_DismissAll(t *testing.T) {
	r := newBlockingResponder()
	g := NewGate(r, nil)
	ctx := context.Background()

	results := make(chan bool, 3)
	go func() { results <- g.Request(ctx, Prompt{Title: "visible"}) }()
	<-r.shown
	go func() { results <- g.Request(ctx, Prompt{Title: "q1"}) }()
	go func() { results <- g.Request(ctx, Prompt{Title: "q2"}) }()
	waitPending(t, g, 2)

	g.DismissAll()
	for i := 0; i < 3; i++ {
		assert.False(t, <-results)
	}

	// Новые запросы после DismissAll обрабатываются обычно
	after := make(chan bool, 1)
	go func() { after <- g.Request(ctx, Prompt{Title: "after"}) }()
	assert.Equal(t, "after", <-r.shown)
	r.release <- true
	assert.True(t, <-after)
}

func TestTerminalResponder(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"да\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	}
	for _, tt := range tests {
		var out strings.Builder
		r := NewTerminalResponder(strings.NewReader(tt.input), &out)
		got, err := r.Respond(context.Background(), Prompt{
			Title:       "Delete Category",
			Message:     "Are you sure?",
			ConfirmText: "Delete",
		})
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.Contains(t, out.String(), "Delete Category")
		assert.Contains(t, out.String(), "Delete? [y/N]")
	}
}

// promptWriter сигналит о каждом показанном запросе
type promptWriter struct {
	shown chan struct{}
}

func (w *promptWriter) Write(p []byte) (int, error) {
	w.shown <- struct{}{}
	return len(p), nil
}

func TestGate_TerminalAnswerAfterCancelReachesNextPrompt(t *testing.T) {
	input, typed := io.Pipe()
	defer typed.Close()
	out := &promptWriter{shown: make(chan struct{}, 4)}
	g := NewGate(NewTerminalResponder(input, out), nil)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan bool, 1)
	go func() { first <- g.Request(ctx, Prompt{Message: "Delete a1?"}) }()
	<-out.shown
	cancel()
	assert.False(t, <-first)

	second := make(chan bool, 1)
	go func() { second <- g.Request(context.Background(), Prompt{Message: "Delete a2?"}) }()
	<-out.shown

	_, err := io.WriteString(typed, "y\n")
	require.NoError(t, err)

	select {
	case got := <-second:
		assert.True(t, got)
	case <-time.After(time.Second):
		t.Fatal("ответ не дошел до второго запроса")
	}
	assert.Equal(t, 0, g.Pending())
}

func TestTerminalResponder_EOFDeclinesLaterPrompts(t *testing.T) {
	r := NewTerminalResponder(strings.NewReader("y\n"), io.Discard)

	got, err := r.Respond(context.Background(), Prompt{Message: "first"})
	require.NoError(t, err)
	assert.True(t, got)

	for i := 0; i < 2; i++ {
		got, err = r.Respond(context.Background(), Prompt{Message: "next"})
		require.NoError(t, err)
		assert.False(t, got)
	}
}
