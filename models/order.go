package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses follow the storefront lifecycle: every order starts as
// processing and is moved forward by admin actions.
const (
	OrderStatusProcessing = "processing"
	OrderStatusDelivered  = "delivered"
	OrderStatusCanceled   = "canceled"
)

type Order struct {
	OrderID      int64      `json:"order_id"`
	CustomerID   int64      `json:"customer_id"`
	DateOrdered  time.Time  `json:"date_ordered"`
	DateDelivery *time.Time `json:"date_delivery"`
	Status       string     `json:"status"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// OrderLine is one item-and-quantity entry belonging to exactly one order.
// Name, price and images are denormalized from the catalog at read time.
type OrderLine struct {
	ItemID    int64           `json:"item_id"`
	Quantity  int64           `json:"quantity"`
	Name      string          `json:"name"`
	SellPrice decimal.Decimal `json:"sell_price"`
	Images    []string        `json:"images,omitempty"`
}

type OrderWithLines struct {
	Order
	Lines []OrderLine `json:"items"`
}

// CartEntry is one line of the transient cart supplied by the caller.
type CartEntry struct {
	ItemID   int64 `json:"item_id" binding:"required,min=1"`
	Quantity int64 `json:"quantity" binding:"required,min=1"`
}

type CreateOrderRequest struct {
	Cart []CartEntry `json:"cart" binding:"required,min=1,dive"`
}

type OrderConfirmation struct {
	Success     bool        `json:"success"`
	OrderID     int64       `json:"order_id"`
	DateOrdered time.Time   `json:"date_ordered"`
	Message     string      `json:"message"`
	Cart        []CartEntry `json:"cart"`

	// CustomerEmail feeds the receipt notification; not part of the
	// HTTP response body.
	CustomerEmail string `json:"-"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=processing delivered canceled"`
}

// ReceiptRequest is the message published to the notification queue after
// an order commits.
type ReceiptRequest struct {
	MessageID string `json:"message_id"`
	OrderID   int64  `json:"order_id"`
	Email     string `json:"email"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
