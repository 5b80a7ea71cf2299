package receipts

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"storefront-service/models"

	"github.com/shopspring/decimal"
)

// ShippingFee is the flat per-order surcharge applied when rendering
// confirmations and receipts. It is presentation-layer only and never
// stored per order line.
// TODO: regional or weight-based rates will need this to move into config.
var ShippingFee = decimal.RequireFromString("50.00")

// Totals sums the item subtotals and adds the shipping fee.
func Totals(items []models.ReceiptItem) (itemsTotal, grandTotal decimal.Decimal) {
	itemsTotal = decimal.Zero
	for _, item := range items {
		itemsTotal = itemsTotal.Add(item.Price.Mul(decimal.NewFromInt(item.Quantity)))
	}
	return itemsTotal, itemsTotal.Add(ShippingFee)
}

// ImageURL makes an image path absolute against the server URL unless it
// already is.
func ImageURL(serverURL, path string) string {
	if strings.HasPrefix(path, "http") {
		return path
	}
	return strings.TrimRight(serverURL, "/") + "/" + strings.TrimLeft(path, "/")
}

var receiptTemplate = template.Must(template.New("receipt").Parse(`
<html><head>
<style>
body { font-family: Arial, sans-serif; }
.receipt-header { background: #007bff; color: #fff; padding: 10px; }
.receipt-section { margin-bottom: 20px; }
table { width: 100%; border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 6px; text-align: left; }
th { background: #f8f8f8; }
.text-right { text-align: right; }
.img-thumb { width: 40px; height: 40px; object-fit: cover; border-radius: 4px; margin-right: 2px; }
</style>
</head><body>
<div class='receipt-header'><h2>Order Receipt #{{.OrderID}}</h2></div>
<div class='receipt-section'>
	<strong>Date Ordered:</strong> {{.DateOrdered}}<br/>
	<strong>Status:</strong> {{.Status}}<br/>
	<strong>Date Delivered:</strong> {{.DateDelivery}}
</div>
<div class='receipt-section'>
	<strong>Customer:</strong> {{.LastName}}, {{.FirstName}}<br/>
	<strong>Address:</strong> {{.Address}}{{if .City}}, {{.City}}{{end}}<br/>
	<strong>Phone:</strong> {{.Phone}}<br/>
	<strong>Email:</strong> {{.Email}}
</div>
<div class='receipt-section'>
	<table><thead><tr>
		<th>Images</th><th>Name</th><th>Price</th><th>Qty</th><th>Subtotal</th>
	</tr></thead><tbody>
	{{range .Items}}<tr>
		<td>{{if .Images}}{{range .Images}}<img src='{{.}}' class='img-thumb' />{{end}}{{else}}<span>No image</span>{{end}}</td>
		<td>{{.Name}}</td>
		<td>&#8369; {{.Price}}</td>
		<td>{{.Quantity}}</td>
		<td>&#8369; {{.Subtotal}}</td>
	</tr>{{end}}
	</tbody></table>
	<div class='text-right'><strong>Total (Items):</strong> &#8369; {{.ItemsTotal}}</div>
	<div class='text-right'><strong>Shipping Fee:</strong> &#8369; {{.Shipping}}</div>
	<div class='text-right'><strong>Grand Total:</strong> &#8369; {{.GrandTotal}}</div>
</div>
<div class='receipt-section'>Thank you for your order!</div>
</body></html>
`))

type templateItem struct {
	Name     string
	Quantity int64
	Price    string
	Subtotal string
	Images   []string
}

type templateData struct {
	OrderID      int64
	DateOrdered  string
	DateDelivery string
	Status       string
	LastName     string
	FirstName    string
	Address      string
	City         string
	Phone        string
	Email        string
	Items        []templateItem
	ItemsTotal   string
	Shipping     string
	GrandTotal   string
}

// Render produces the HTML receipt for one order. serverURL prefixes
// relative image paths so the document works standalone in an email.
func Render(data *models.ReceiptData, serverURL string) (string, error) {
	td := templateData{
		OrderID:      data.OrderID,
		DateOrdered:  data.DateOrdered.Format("01/02/2006"),
		DateDelivery: "N/A",
		Status:       data.Status,
		LastName:     data.LastName,
		FirstName:    data.FirstName,
		Address:      data.Address,
		City:         data.City,
		Phone:        data.Phone,
		Email:        data.Email,
	}
	if data.DateDelivery != nil {
		td.DateDelivery = data.DateDelivery.Format("01/02/2006")
	}

	for _, item := range data.Items {
		subtotal := item.Price.Mul(decimal.NewFromInt(item.Quantity))
		ti := templateItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price.StringFixed(2),
			Subtotal: subtotal.StringFixed(2),
		}
		for _, img := range item.Images {
			ti.Images = append(ti.Images, ImageURL(serverURL, img))
		}
		td.Items = append(td.Items, ti)
	}

	itemsTotal, grandTotal := Totals(data.Items)
	td.ItemsTotal = itemsTotal.StringFixed(2)
	td.Shipping = ShippingFee.StringFixed(2)
	td.GrandTotal = grandTotal.StringFixed(2)

	var sb strings.Builder
	if err := receiptTemplate.Execute(&sb, td); err != nil {
		return "", fmt.Errorf("failed to render receipt: %w", err)
	}
	return sb.String(), nil
}

// Subject is the email subject line for a confirmation.
func Subject(orderID int64, dateOrdered time.Time) string {
	return fmt.Sprintf("Order Receipt #%d (%s)", orderID, dateOrdered.Format("Jan 2, 2006"))
}
