package database

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestGroupOrderRows(t *testing.T) {
	ordered := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	price := decimal.RequireFromString("120.00")

	// The image join repeats each line once per image, including a
	// duplicate path, and one line has no image at all.
	rows := []orderRow{
		{OrderID: 2, CustomerID: 70, DateOrdered: ordered, Status: "processing", ItemID: 1, Quantity: 2, Name: "Mug", SellPrice: price, ImagePath: strPtr("images/items/mug-1.jpg")},
		{OrderID: 2, CustomerID: 70, DateOrdered: ordered, Status: "processing", ItemID: 1, Quantity: 2, Name: "Mug", SellPrice: price, ImagePath: strPtr("images/items/mug-2.jpg")},
		{OrderID: 2, CustomerID: 70, DateOrdered: ordered, Status: "processing", ItemID: 1, Quantity: 2, Name: "Mug", SellPrice: price, ImagePath: strPtr("images/items/mug-1.jpg")},
		{OrderID: 2, CustomerID: 70, DateOrdered: ordered, Status: "processing", ItemID: 3, Quantity: 1, Name: "Shirt", SellPrice: price, ImagePath: nil},
		{OrderID: 1, CustomerID: 70, DateOrdered: ordered, Status: "delivered", ItemID: 1, Quantity: 1, Name: "Mug", SellPrice: price, ImagePath: strPtr("images/items/mug-1.jpg")},
	}

	grouped := groupOrderRows(rows)

	require.Len(t, grouped, 2)

	first := grouped[0]
	assert.Equal(t, int64(2), first.Order.OrderID)
	assert.Equal(t, "processing", first.Order.Status)
	require.Len(t, first.Lines, 2)
	assert.Equal(t, int64(1), first.Lines[0].ItemID)
	assert.Equal(t, int64(2), first.Lines[0].Quantity)
	assert.Equal(t, []string{"images/items/mug-1.jpg", "images/items/mug-2.jpg"}, first.Lines[0].Images)
	assert.Equal(t, int64(3), first.Lines[1].ItemID)
	assert.Empty(t, first.Lines[1].Images)

	second := grouped[1]
	assert.Equal(t, int64(1), second.Order.OrderID)
	assert.Equal(t, "delivered", second.Order.Status)
	require.Len(t, second.Lines, 1)
	assert.Equal(t, []string{"images/items/mug-1.jpg"}, second.Lines[0].Images)
}

func TestGroupOrderRows_Empty(t *testing.T) {
	assert.Empty(t, groupOrderRows(nil))
}

func TestGroupOrderRows_PreservesRowOrder(t *testing.T) {
	ordered := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	rows := []orderRow{
		{OrderID: 9, CustomerID: 1, DateOrdered: ordered, Status: "processing", ItemID: 4, Quantity: 1, Name: "A"},
		{OrderID: 8, CustomerID: 1, DateOrdered: ordered, Status: "processing", ItemID: 4, Quantity: 1, Name: "A"},
		{OrderID: 7, CustomerID: 1, DateOrdered: ordered, Status: "processing", ItemID: 4, Quantity: 1, Name: "A"},
	}

	grouped := groupOrderRows(rows)

	require.Len(t, grouped, 3)
	assert.Equal(t, int64(9), grouped[0].Order.OrderID)
	assert.Equal(t, int64(8), grouped[1].Order.OrderID)
	assert.Equal(t, int64(7), grouped[2].Order.OrderID)
}
