package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"StoryBoxAdmin/pkg/rabbitmq"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
)

var kindStyle = map[Kind]struct {
	color string
	mark  string
}{
	KindSuccess: {colorGreen, "✓"},
	KindError:   {colorRed, "✗"},
	KindWarning: {colorYellow, "!"},
	KindInfo:    {colorBlue, "i"},
}

// ConsoleSink печатает уведомления в терминал
type ConsoleSink struct {
	mu    sync.Mutex
	out   io.Writer
	color bool
}

// NewConsoleSink создает ConsoleSink; color включает ANSI раскраску
func NewConsoleSink(out io.Writer, color bool) *ConsoleSink {
	return &ConsoleSink{out: out, color: color}
}

func (s *ConsoleSink) Deliver(_ context.Context, n Notification) error {
	style, ok := kindStyle[n.Kind]
	if !ok {
		style = kindStyle[KindInfo]
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.color {
		_, err = fmt.Fprintf(s.out, "%s%s %s%s\n", style.color, style.mark, n.Text, colorReset)
	} else {
		_, err = fmt.Fprintf(s.out, "%s %s\n", style.mark, n.Text)
	}
	return err
}

// Publisher публикует сообщение в брокер; реализуется rabbitmq.Producer
type Publisher interface {
	Publish(ctx context.Context, msg rabbitmq.Message) error
}

// BrokerSink отправляет уведомления в RabbitMQ как журнал действий консоли.
// Вид уведомления становится последним сегментом routing key.
type BrokerSink struct {
	publisher Publisher
	source    string
}

// NewBrokerSink создает BrokerSink; source подписывает каждое событие
func NewBrokerSink(publisher Publisher, source string) *BrokerSink {
	return &BrokerSink{publisher: publisher, source: source}
}

type brokerMessage struct {
	Notification
	Source string `json:"source,omitempty"`
}

func (s *BrokerSink) Deliver(ctx context.Context, n Notification) error {
	body, err := json.Marshal(brokerMessage{Notification: n, Source: s.source})
	if err != nil {
		return fmt.Errorf("ошибка сериализации уведомления: %w", err)
	}
	return s.publisher.Publish(ctx, rabbitmq.Message{
		Suffix:  string(n.Kind),
		Headers: map[string]any{"kind": string(n.Kind)},
		Body:    body,
	})
}
