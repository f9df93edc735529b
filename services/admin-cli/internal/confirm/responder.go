package confirm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// TerminalResponder спрашивает подтверждение в терминале, по умолчанию отказ.
// Ввод читает одна горутина, запущенная при первом запросе: ответ,
// набранный после отмены запроса, достается следующему запросу.
type TerminalResponder struct {
	in  io.Reader
	out io.Writer

	once    sync.Once
	lines   chan string
	readErr error
}

// NewTerminalResponder создает TerminalResponder
func NewTerminalResponder(in io.Reader, out io.Writer) *TerminalResponder {
	return &TerminalResponder{in: in, out: out, lines: make(chan string)}
}

// Respond печатает запрос и ждет строку ответа или отмену ctx
func (r *TerminalResponder) Respond(ctx context.Context, prompt Prompt) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.once.Do(func() { go r.readLines() })

	if prompt.Title != "" {
		fmt.Fprintf(r.out, "%s\n", prompt.Title)
	}
	label := prompt.ConfirmText
	if label == "" {
		label = "Подтвердить"
	}
	fmt.Fprintf(r.out, "%s\n%s? [y/N]: ", prompt.Message, label)

	select {
	case line, ok := <-r.lines:
		if !ok {
			if r.readErr == io.EOF {
				return false, nil
			}
			return false, r.readErr
		}
		return isYes(line), nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// readLines передает строки ввода в lines и закрывает канал на EOF или ошибке
func (r *TerminalResponder) readLines() {
	reader := bufio.NewReader(r.in)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			r.lines <- line
		}
		if err != nil {
			r.readErr = err
			close(r.lines)
			return
		}
	}
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "д", "да":
		return true
	}
	return false
}

// StaticResponder отвечает всегда одинаково (флаг --yes, тесты)
type StaticResponder struct {
	Answer bool
}

func (r StaticResponder) Respond(ctx context.Context, _ Prompt) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return r.Answer, nil
}
