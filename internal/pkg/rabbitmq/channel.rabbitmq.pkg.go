package rabbitmq

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ChannelManager lazily opens a channel on the shared connection and
// replaces it whenever the broker closes it.
type ChannelManager struct {
	connManager *ConnectionManager
	ch          *amqp.Channel
	mu          sync.Mutex
	ctx         context.Context
}

func NewChannelManager(ctx context.Context, connManager *ConnectionManager) *ChannelManager {
	return &ChannelManager{
		connManager: connManager,
		ctx:         ctx,
	}
}

func (cm *ChannelManager) GetChannel() (*amqp.Channel, error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if err := cm.ctx.Err(); err != nil {
		return nil, fmt.Errorf("context canceled: %w", err)
	}

	if cm.ch != nil && !cm.ch.IsClosed() {
		return cm.ch, nil
	}

	conn := cm.connManager.GetConnection()
	if conn == nil || conn.IsClosed() {
		return nil, fmt.Errorf("connection not available")
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	cm.ch = ch
	return cm.ch, nil
}

func (cm *ChannelManager) Close() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.ch != nil && !cm.ch.IsClosed() {
		if err := cm.ch.Close(); err != nil {
			return fmt.Errorf("failed to close channel: %w", err)
		}
	}
	cm.ch = nil
	return nil
}
