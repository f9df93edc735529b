package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Message событие для публикации
type Message struct {
	// Suffix добавляется к базовому routing key через точку
	Suffix  string
	Headers map[string]any
	Body    []byte
}

// Producer публикует JSON события в exchange соединения
type Producer struct {
	conn *Connection
}

// NewProducer создает Producer поверх открытого соединения
func NewProducer(conn *Connection) *Producer {
	return &Producer{conn: conn}
}

// RoutingKey возвращает ключ, под которым уйдет сообщение
func (p *Producer) RoutingKey(msg Message) string {
	key := p.conn.config.RoutingKey
	switch {
	case msg.Suffix == "":
		return key
	case key == "":
		return msg.Suffix
	default:
		return key + "." + msg.Suffix
	}
}

// Publish отправляет сообщение и ждет подтверждения брокера
func (p *Producer) Publish(ctx context.Context, msg Message) error {
	if err := p.conn.Ping(); err != nil {
		return err
	}

	publishing := amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
		Body:         msg.Body,
	}
	if len(msg.Headers) > 0 {
		publishing.Headers = amqp091.Table(msg.Headers)
	}

	deferred, err := p.conn.channel.PublishWithDeferredConfirmWithContext(ctx,
		p.conn.config.Exchange, p.RoutingKey(msg), false, false, publishing)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	if deferred == nil {
		return nil
	}

	timeout := p.conn.config.ConfirmTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	acked, err := deferred.WaitContext(waitCtx)
	switch {
	case err != nil:
		return fmt.Errorf("wait confirm: %w", err)
	case !acked:
		return errors.New("broker nacked message")
	}
	return nil
}
