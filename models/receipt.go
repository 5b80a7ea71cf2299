package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptData is everything the receipt template needs for one order,
// assembled from the orders/customer/items joins.
type ReceiptData struct {
	OrderID      int64
	DateOrdered  time.Time
	DateDelivery *time.Time
	Status       string
	LastName     string
	FirstName    string
	Address      string
	City         string
	Phone        string
	Email        string
	Items        []ReceiptItem
}

type ReceiptItem struct {
	ItemID   int64
	Name     string
	Quantity int64
	Price    decimal.Decimal
	Images   []string
}
