package rabbitmq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

type Message struct {
	ID         string
	RoutingKey string
	Body       []byte
	Timestamp  time.Time
}

type Producer struct {
	exchange string
	conn     *amqp.Connection
	channel  *amqp.Channel
}

// NewProducer dials url and declares a durable topic exchange.
func NewProducer(url, exchange string) (*Producer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Producer{exchange: exchange, conn: conn, channel: ch}, nil
}

func (p *Producer) Publish(ctx context.Context, msg Message) error {
	if p.conn.IsClosed() {
		return fmt.Errorf("rabbitmq connection closed")
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return p.channel.PublishWithContext(ctx, p.exchange, msg.RoutingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.ID,
		Timestamp:    msg.Timestamp,
		Body:         msg.Body,
	})
}

func (p *Producer) Close() error {
	if err := p.channel.Close(); err != nil {
		zap.L().Warn("Failed to close rabbitmq channel", zap.Error(err))
	}
	return p.conn.Close()
}

// Fallback is used when no broker is configured: events are logged and
// treated as delivered.
type Fallback struct{}

func (Fallback) Publish(_ context.Context, msg Message) error {
	zap.L().Info("Event published",
		zap.String("id", msg.ID),
		zap.String("routingKey", msg.RoutingKey),
		zap.ByteString("body", msg.Body),
	)
	return nil
}

func (Fallback) Close() error {
	return nil
}
