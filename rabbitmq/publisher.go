package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront-service/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

type Publisher struct {
	pool      *ChannelPool
	queueName string
	logger    *zap.Logger
}

func NewPublisher(pool *ChannelPool, queueName string, logger *zap.Logger) *Publisher {
	return &Publisher{
		pool:      pool,
		queueName: queueName,
		logger:    logger,
	}
}

// PublishReceiptRequest enqueues a receipt request for the notification
// worker. Called only after the order transaction has committed.
func (p *Publisher) PublishReceiptRequest(req models.ReceiptRequest) error {
	ch, err := p.pool.GetChannel()
	if err != nil {
		return fmt.Errorf("failed to get channel from pool: %w", err)
	}
	defer p.pool.ReturnChannel(ch)

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal receipt request: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = ch.PublishWithContext(ctx,
		"",          // exchange
		p.queueName, // routing key (queue name)
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    req.MessageID,
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish receipt request: %w", err)
	}

	p.logger.Info("Published receipt request",
		zap.Int64("order_id", req.OrderID),
		zap.String("message_id", req.MessageID))
	return nil
}
