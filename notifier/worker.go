package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"storefront-service/models"
	"storefront-service/receipts"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ReceiptStore loads the data a receipt is rendered from.
type ReceiptStore interface {
	ReceiptData(ctx context.Context, orderID int64) (*models.ReceiptData, bool, error)
}

// Mailer delivers a rendered receipt.
type Mailer interface {
	SendReceipt(ctx context.Context, to, subject, html string) error
}

// Worker consumes receipt requests, renders the HTML receipt and hands it
// to the mailer. A failed send is requeued once by the broker; a request
// for a vanished order is dropped.
type Worker struct {
	workerID  int
	channel   *amqp.Channel
	queueName string
	store     ReceiptStore
	mailer    Mailer
	serverURL string
	logger    *zap.Logger
}

func NewWorker(workerID int, conn *amqp.Connection, queueName string, store ReceiptStore, mailer Mailer, serverURL string, logger *zap.Logger) (*Worker, error) {
	// Each worker gets its own channel.
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel for worker %d: %w", workerID, err)
	}

	// One message at a time per worker.
	err = ch.Qos(
		1,     // prefetch count
		0,     // prefetch size
		false, // global
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to set QoS for worker %d: %w", workerID, err)
	}

	return &Worker{
		workerID:  workerID,
		channel:   ch,
		queueName: queueName,
		store:     store,
		mailer:    mailer,
		serverURL: serverURL,
		logger:    logger,
	}, nil
}

// Start begins consuming messages until the channel closes.
func (w *Worker) Start(wg *sync.WaitGroup) {
	defer wg.Done()
	defer w.channel.Close()

	msgs, err := w.channel.Consume(
		w.queueName,                          // queue
		fmt.Sprintf("notifier-%d", w.workerID), // consumer tag
		false,                                // auto-ack
		false,                                // exclusive
		false,                                // no-local
		false,                                // no-wait
		nil,                                  // args
	)
	if err != nil {
		w.logger.Error("Worker failed to register consumer", zap.Int("worker_id", w.workerID), zap.Error(err))
		return
	}

	w.logger.Info("Notification worker started", zap.Int("worker_id", w.workerID))

	for msg := range msgs {
		w.processMessage(msg)
	}

	w.logger.Info("Notification worker stopped", zap.Int("worker_id", w.workerID))
}

func (w *Worker) processMessage(msg amqp.Delivery) {
	var req models.ReceiptRequest
	if err := json.Unmarshal(msg.Body, &req); err != nil {
		w.logger.Error("Failed to unmarshal receipt request", zap.Int("worker_id", w.workerID), zap.Error(err))
		// Malformed, don't requeue.
		msg.Nack(false, false)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	data, found, err := w.store.ReceiptData(ctx, req.OrderID)
	if err != nil {
		w.logger.Error("Failed to load receipt data",
			zap.Int64("order_id", req.OrderID), zap.String("message_id", req.MessageID), zap.Error(err))
		msg.Nack(false, !msg.Redelivered)
		return
	}
	if !found {
		w.logger.Warn("Receipt requested for unknown order, dropping",
			zap.Int64("order_id", req.OrderID), zap.String("message_id", req.MessageID))
		msg.Nack(false, false)
		return
	}

	html, err := receipts.Render(data, w.serverURL)
	if err != nil {
		w.logger.Error("Failed to render receipt", zap.Int64("order_id", req.OrderID), zap.Error(err))
		msg.Nack(false, false)
		return
	}

	to := req.Email
	if to == "" {
		to = data.Email
	}
	if err := w.mailer.SendReceipt(ctx, to, receipts.Subject(data.OrderID, data.DateOrdered), html); err != nil {
		w.logger.Error("Failed to send receipt email",
			zap.Int64("order_id", req.OrderID), zap.String("to", to), zap.Error(err))
		msg.Nack(false, !msg.Redelivered)
		return
	}

	if err := msg.Ack(false); err != nil {
		w.logger.Error("Failed to acknowledge message", zap.Int("worker_id", w.workerID), zap.Error(err))
		return
	}
	w.logger.Info("Sent order receipt",
		zap.Int("worker_id", w.workerID),
		zap.Int64("order_id", req.OrderID),
		zap.String("to", to))
}

// Stop closes the worker channel, ending its consume loop.
func (w *Worker) Stop() {
	if w.channel != nil {
		w.channel.Close()
	}
}
