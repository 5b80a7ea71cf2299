package notifier

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"storefront-service/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAcknowledger struct {
	acked    bool
	nacked   bool
	requeued bool
}

func (a *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	a.acked = true
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	a.nacked = true
	a.requeued = requeue
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	a.nacked = true
	a.requeued = requeue
	return nil
}

type fakeReceiptStore struct {
	data *models.ReceiptData
	err  error
}

func (s *fakeReceiptStore) ReceiptData(ctx context.Context, orderID int64) (*models.ReceiptData, bool, error) {
	if s.err != nil {
		return nil, false, s.err
	}
	if s.data == nil || s.data.OrderID != orderID {
		return nil, false, nil
	}
	return s.data, true, nil
}

type fakeMailer struct {
	to      string
	subject string
	html    string
	err     error
	calls   int
}

func (m *fakeMailer) SendReceipt(ctx context.Context, to, subject, html string) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	m.to = to
	m.subject = subject
	m.html = html
	return nil
}

func newTestWorker(store ReceiptStore, mailer Mailer) *Worker {
	return &Worker{
		workerID:  1,
		queueName: "order_receipts",
		store:     store,
		mailer:    mailer,
		serverURL: "http://localhost:4000",
		logger:    zap.NewNop(),
	}
}

func receiptDelivery(t *testing.T, req models.ReceiptRequest, ack *fakeAcknowledger, redelivered bool) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: ack, Body: body, Redelivered: redelivered}
}

func sampleReceiptData() *models.ReceiptData {
	return &models.ReceiptData{
		OrderID:     12,
		DateOrdered: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		Status:      models.OrderStatusProcessing,
		LastName:    "Reyes",
		FirstName:   "Ana",
		Email:       "ana@example.com",
		Items: []models.ReceiptItem{
			{ItemID: 1, Name: "Mug", Quantity: 2, Price: decimal.RequireFromString("120.00")},
		},
	}
}

func TestProcessMessage_SendsAndAcks(t *testing.T) {
	mailer := &fakeMailer{}
	w := newTestWorker(&fakeReceiptStore{data: sampleReceiptData()}, mailer)
	ack := &fakeAcknowledger{}

	w.processMessage(receiptDelivery(t, models.ReceiptRequest{
		MessageID: "m1", OrderID: 12, Email: "buyer@example.com",
	}, ack, false))

	assert.True(t, ack.acked)
	assert.False(t, ack.nacked)
	assert.Equal(t, "buyer@example.com", mailer.to)
	assert.Equal(t, "Order Receipt #12 (Mar 14, 2026)", mailer.subject)
	assert.Contains(t, mailer.html, "Order Receipt #12")
}

func TestProcessMessage_FallsBackToStoredEmail(t *testing.T) {
	mailer := &fakeMailer{}
	w := newTestWorker(&fakeReceiptStore{data: sampleReceiptData()}, mailer)
	ack := &fakeAcknowledger{}

	w.processMessage(receiptDelivery(t, models.ReceiptRequest{
		MessageID: "m1", OrderID: 12,
	}, ack, false))

	assert.True(t, ack.acked)
	assert.Equal(t, "ana@example.com", mailer.to)
}

func TestProcessMessage_MalformedBodyNotRequeued(t *testing.T) {
	mailer := &fakeMailer{}
	w := newTestWorker(&fakeReceiptStore{}, mailer)
	ack := &fakeAcknowledger{}

	w.processMessage(amqp.Delivery{Acknowledger: ack, Body: []byte("{not json")})

	assert.True(t, ack.nacked)
	assert.False(t, ack.requeued)
	assert.Zero(t, mailer.calls)
}

func TestProcessMessage_UnknownOrderDropped(t *testing.T) {
	mailer := &fakeMailer{}
	w := newTestWorker(&fakeReceiptStore{}, mailer)
	ack := &fakeAcknowledger{}

	w.processMessage(receiptDelivery(t, models.ReceiptRequest{
		MessageID: "m1", OrderID: 99,
	}, ack, false))

	assert.True(t, ack.nacked)
	assert.False(t, ack.requeued)
	assert.Zero(t, mailer.calls)
}

func TestProcessMessage_SendFailureRequeuedOnce(t *testing.T) {
	w := newTestWorker(&fakeReceiptStore{data: sampleReceiptData()}, &fakeMailer{err: assert.AnError})

	first := &fakeAcknowledger{}
	w.processMessage(receiptDelivery(t, models.ReceiptRequest{MessageID: "m1", OrderID: 12}, first, false))
	assert.True(t, first.nacked)
	assert.True(t, first.requeued)

	// The redelivered attempt is not requeued again.
	second := &fakeAcknowledger{}
	w.processMessage(receiptDelivery(t, models.ReceiptRequest{MessageID: "m1", OrderID: 12}, second, true))
	assert.True(t, second.nacked)
	assert.False(t, second.requeued)
}

func TestProcessMessage_StoreFailureRequeued(t *testing.T) {
	mailer := &fakeMailer{}
	w := newTestWorker(&fakeReceiptStore{err: assert.AnError}, mailer)
	ack := &fakeAcknowledger{}

	w.processMessage(receiptDelivery(t, models.ReceiptRequest{MessageID: "m1", OrderID: 12}, ack, false))

	assert.True(t, ack.nacked)
	assert.True(t, ack.requeued)
	assert.Zero(t, mailer.calls)
}
