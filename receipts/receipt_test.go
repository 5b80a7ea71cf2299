package receipts

import (
	"testing"
	"time"

	"storefront-service/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotals(t *testing.T) {
	items := []models.ReceiptItem{
		{ItemID: 1, Quantity: 2, Price: decimal.RequireFromString("120.00")},
		{ItemID: 2, Quantity: 1, Price: decimal.RequireFromString("99.50")},
	}

	itemsTotal, grandTotal := Totals(items)

	assert.Equal(t, "339.50", itemsTotal.StringFixed(2))
	assert.Equal(t, "389.50", grandTotal.StringFixed(2))
}

func TestTotals_EmptyCartOnlyShipping(t *testing.T) {
	itemsTotal, grandTotal := Totals(nil)

	assert.True(t, itemsTotal.IsZero())
	assert.True(t, grandTotal.Equal(ShippingFee))
}

func TestImageURL(t *testing.T) {
	assert.Equal(t, "http://localhost:4000/images/items/mug.jpg",
		ImageURL("http://localhost:4000", "images/items/mug.jpg"))
	assert.Equal(t, "http://localhost:4000/images/items/mug.jpg",
		ImageURL("http://localhost:4000/", "/images/items/mug.jpg"))
	assert.Equal(t, "https://cdn.example.com/mug.jpg",
		ImageURL("http://localhost:4000", "https://cdn.example.com/mug.jpg"))
}

func TestRender(t *testing.T) {
	delivered := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	data := &models.ReceiptData{
		OrderID:      12,
		DateOrdered:  time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		DateDelivery: &delivered,
		Status:       models.OrderStatusDelivered,
		LastName:     "Reyes",
		FirstName:    "Ana",
		Address:      "12 Mabini St",
		City:         "Quezon City",
		Phone:        "09171234567",
		Email:        "ana@example.com",
		Items: []models.ReceiptItem{
			{ItemID: 1, Name: "Mug", Quantity: 2, Price: decimal.RequireFromString("120.00"), Images: []string{"images/items/mug.jpg"}},
			{ItemID: 2, Name: "Shirt", Quantity: 1, Price: decimal.RequireFromString("250.00")},
		},
	}

	html, err := Render(data, "http://localhost:4000")
	require.NoError(t, err)

	assert.Contains(t, html, "Order Receipt #12")
	assert.Contains(t, html, "03/14/2026")
	assert.Contains(t, html, "03/20/2026")
	assert.Contains(t, html, "Reyes, Ana")
	assert.Contains(t, html, "12 Mabini St, Quezon City")
	assert.Contains(t, html, "http://localhost:4000/images/items/mug.jpg")
	assert.Contains(t, html, "No image")
	assert.Contains(t, html, "&#8369; 240.00")
	assert.Contains(t, html, "&#8369; 490.00")
	assert.Contains(t, html, "&#8369; 50.00")
	assert.Contains(t, html, "&#8369; 540.00")
}

func TestRender_NoDeliveryDate(t *testing.T) {
	data := &models.ReceiptData{
		OrderID:     3,
		DateOrdered: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		Status:      models.OrderStatusProcessing,
	}

	html, err := Render(data, "http://localhost:4000")
	require.NoError(t, err)

	assert.Contains(t, html, "N/A")
}

func TestSubject(t *testing.T) {
	subject := Subject(12, time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, "Order Receipt #12 (Mar 14, 2026)", subject)
}
