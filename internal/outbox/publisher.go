// Package outbox mirrors outbound replies onto an AMQP exchange so other
// systems can observe what the assistant sends without touching the chat
// transport.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/grafamedia/keuangan-bot/internal/domain"
)

// Publisher is the outbound mirror. A nil *Publisher is a valid no-op, so
// callers never branch on whether the outbox is configured.
type Publisher struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	queue    string
	log      *slog.Logger
}

// outboundEnvelope is the wire form of a mirrored reply. Image payloads are
// reduced to their size; consumers only need to know an image was sent.
type outboundEnvelope struct {
	ID         string `json:"id"`
	To         string `json:"to"`
	Text       string `json:"text"`
	ImageBytes int    `json:"image_bytes,omitempty"`
	SentAt     string `json:"sent_at"`
}

func NewPublisher(url, exchange, queue string, log *slog.Logger) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p := &Publisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		queue:    queue,
		log:      log,
	}

	if err := p.setup(); err != nil {
		p.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return p, nil
}

func (p *Publisher) setup() error {
	err := p.channel.ExchangeDeclare(
		p.exchange,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = p.channel.QueueDeclare(
		p.queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	err = p.channel.QueueBind(
		p.queue,
		p.queue, // routing key matches the queue on a direct exchange
		p.exchange,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// Publish mirrors one outbound reply. Failures are logged and swallowed; the
// mirror never blocks or fails the reply itself.
func (p *Publisher) Publish(ctx context.Context, msg domain.OutboundMessage) {
	if p == nil {
		return
	}

	env := outboundEnvelope{
		ID:     msg.ID,
		To:     msg.To,
		Text:   msg.Text,
		SentAt: time.Now().Format(time.RFC3339),
	}
	if msg.Image != nil {
		env.ImageBytes = len(msg.Image.Data)
	}

	body, err := json.Marshal(env)
	if err != nil {
		p.log.Error("marshal outbox envelope failed", slog.Any("error", err))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		p.queue,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		p.log.Error("publish outbox message failed",
			slog.String("message_id", msg.ID),
			slog.Any("error", err))
		return
	}

	p.log.Debug("mirrored outbound message",
		slog.String("message_id", msg.ID),
		slog.String("exchange", p.exchange))
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
