package rabbitmq

import (
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ChannelPool keeps a fixed set of ready channels on one AMQP connection
// so publishing never opens a channel on the request path.
type ChannelPool struct {
	conn      *amqp.Connection
	channels  chan *amqp.Channel
	queueName string
	logger    *zap.Logger

	closeOnce sync.Once
}

func NewChannelPool(rabbitmqURL, queueName string, size int, logger *zap.Logger) (*ChannelPool, error) {
	conn, err := amqp.Dial(rabbitmqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	pool := &ChannelPool{
		conn:      conn,
		channels:  make(chan *amqp.Channel, size),
		queueName: queueName,
		logger:    logger,
	}
	for i := 0; i < size; i++ {
		ch, err := pool.newChannel()
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to create channel %d: %w", i, err)
		}
		pool.channels <- ch
	}

	logger.Info("Created RabbitMQ channel pool", zap.Int("size", size), zap.String("queue", queueName))
	return pool, nil
}

// newChannel opens a channel and declares the durable receipt queue on it.
// The declaration is idempotent.
func (p *ChannelPool) newChannel() (*amqp.Channel, error) {
	ch, err := p.conn.Channel()
	if err != nil {
		return nil, err
	}
	if _, err := ch.QueueDeclare(p.queueName, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", p.queueName, err)
	}
	return ch, nil
}

// GetChannel hands out a pooled channel, replacing any the broker closed
// while it sat idle.
func (p *ChannelPool) GetChannel() (*amqp.Channel, error) {
	select {
	case ch := <-p.channels:
		if !ch.IsClosed() {
			return ch, nil
		}
		return p.newChannel()
	default:
		return nil, errors.New("no channels available in pool")
	}
}

// ReturnChannel puts a channel back. Closed channels are dropped; if the
// pool is already full the extra one is closed.
func (p *ChannelPool) ReturnChannel(ch *amqp.Channel) {
	if ch == nil || ch.IsClosed() {
		return
	}
	select {
	case p.channels <- ch:
	default:
		ch.Close()
	}
}

// Close drains and closes every pooled channel, then the connection.
func (p *ChannelPool) Close() {
	p.closeOnce.Do(func() {
		close(p.channels)
		for ch := range p.channels {
			ch.Close()
		}
		if p.conn != nil {
			p.conn.Close()
		}
		p.logger.Info("Closed RabbitMQ channel pool")
	})
}
