package rabbitmq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Publisher struct {
	chManager *ChannelManager
	ctx       context.Context
}

func NewPublisher(ctx context.Context, connManager *ConnectionManager) (*Publisher, error) {
	if connManager == nil {
		return nil, fmt.Errorf("connection manager is required")
	}

	return &Publisher{
		chManager: NewChannelManager(ctx, connManager),
		ctx:       ctx,
	}, nil
}

// Publish sends a message to the named queue, declaring it first so the
// publisher can run before any consumer exists.
func (p *Publisher) Publish(queueName string, payload interface{}, headers *amqp.Table) error {
	msg, err := NewMessage(payload, headers)
	if err != nil {
		return fmt.Errorf("failed to build message: %w", err)
	}

	ch, err := p.chManager.GetChannel()
	if err != nil || ch == nil {
		return fmt.Errorf("channel not available: %w", err)
	}

	config := DefaultQueueConfig()
	if _, err = ch.QueueDeclare(
		queueName,
		config.Durable,
		config.AutoDelete,
		config.Exclusive,
		config.NoWait,
		config.Args,
	); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}

	if err = ch.PublishWithContext(
		p.ctx,
		"",
		queueName,
		false,
		false,
		*msg.GeneratePayload(),
	); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", queueName, err)
	}

	return nil
}

func (p *Publisher) Close() error {
	return p.chManager.Close()
}
