package messagequeue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// RabbitMQPublisher implements Publisher using a durable RabbitMQ queue.
type RabbitMQPublisher struct {
	mu      sync.Mutex // amqp.Channel is not safe for concurrent publishes
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	logger  *zap.Logger
}

// NewRabbitMQPublisherConfig contains options for creating a new RabbitMQPublisher.
type NewRabbitMQPublisherConfig struct {
	URL   string
	Queue string
}

// NewRabbitMQPublisher dials the broker, opens a channel and declares the queue.
func NewRabbitMQPublisher(cfg NewRabbitMQPublisherConfig, logger *zap.Logger) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		cfg.Queue, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", cfg.Queue, err)
	}

	logger.Info("Connected to RabbitMQ", zap.String("queue", cfg.Queue))
	return &RabbitMQPublisher{conn: conn, channel: ch, queue: cfg.Queue, logger: logger}, nil
}

// Publish sends event as a persistent JSON message.
func (p *RabbitMQPublisher) Publish(_ context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", event.Type, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.Publish(
		"",      // exchange
		p.queue, // routing key (queue name)
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    event.ID,
			Type:         event.Type,
			Timestamp:    event.OccurredAt,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		})
	if err != nil {
		return fmt.Errorf("failed to publish %s to queue %s: %w", event.Type, p.queue, err)
	}
	p.logger.Debug("Published event", zap.String("type", event.Type), zap.String("id", event.ID))
	return nil
}

// Close closes the RabbitMQ channel and connection.
func (p *RabbitMQPublisher) Close() error {
	var lastErr error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			lastErr = err
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

var _ Publisher = (*RabbitMQPublisher)(nil)
