package database

import (
	"context"
	"time"

	"storefront-service/models"

	"github.com/shopspring/decimal"
)

const orderRowsQuery = `
	SELECT o.order_id, o.customer_id, o.date_ordered, o.date_delivery, o.status, o.updated_at,
	       ol.item_id, ol.quantity, i.name, COALESCE(i.sell_price, 0), img.image_path
	FROM orders o
	INNER JOIN orderline ol ON ol.order_id = o.order_id
	INNER JOIN items i ON i.item_id = ol.item_id
	LEFT JOIN items_images img ON img.item_id = i.item_id
`

type orderRow struct {
	OrderID      int64
	CustomerID   int64
	DateOrdered  time.Time
	DateDelivery *time.Time
	Status       string
	UpdatedAt    time.Time
	ItemID       int64
	Quantity     int64
	Name         string
	SellPrice    decimal.Decimal
	ImagePath    *string
}

// OrdersForUser returns every order of one user with its lines grouped and
// item images deduplicated.
func (db *DB) OrdersForUser(ctx context.Context, userID int64) ([]models.OrderWithLines, error) {
	query := orderRowsQuery + `
	INNER JOIN customer c ON c.customer_id = o.customer_id
	WHERE c.user_id = $1
	ORDER BY o.order_id DESC, ol.item_id
	`
	rows, err := db.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flat []orderRow
	for rows.Next() {
		var r orderRow
		if err := rows.Scan(&r.OrderID, &r.CustomerID, &r.DateOrdered, &r.DateDelivery, &r.Status, &r.UpdatedAt,
			&r.ItemID, &r.Quantity, &r.Name, &r.SellPrice, &r.ImagePath); err != nil {
			return nil, err
		}
		flat = append(flat, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return groupOrderRows(flat), nil
}

// AllOrders is the admin listing across every customer.
func (db *DB) AllOrders(ctx context.Context) ([]models.OrderWithLines, error) {
	query := orderRowsQuery + `
	ORDER BY o.order_id DESC, ol.item_id
	`
	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flat []orderRow
	for rows.Next() {
		var r orderRow
		if err := rows.Scan(&r.OrderID, &r.CustomerID, &r.DateOrdered, &r.DateDelivery, &r.Status, &r.UpdatedAt,
			&r.ItemID, &r.Quantity, &r.Name, &r.SellPrice, &r.ImagePath); err != nil {
			return nil, err
		}
		flat = append(flat, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return groupOrderRows(flat), nil
}

// groupOrderRows folds the flat join result into one entry per order. The
// LEFT JOIN on images repeats an order line once per image, so lines are
// merged by item and image paths deduplicated.
func groupOrderRows(rows []orderRow) []models.OrderWithLines {
	var result []models.OrderWithLines
	orderIdx := make(map[int64]int)
	lineIdx := make(map[int64]map[int64]int)

	for _, r := range rows {
		oi, ok := orderIdx[r.OrderID]
		if !ok {
			oi = len(result)
			orderIdx[r.OrderID] = oi
			lineIdx[r.OrderID] = make(map[int64]int)
			result = append(result, models.OrderWithLines{
				Order: models.Order{
					OrderID:      r.OrderID,
					CustomerID:   r.CustomerID,
					DateOrdered:  r.DateOrdered,
					DateDelivery: r.DateDelivery,
					Status:       r.Status,
					UpdatedAt:    r.UpdatedAt,
				},
			})
		}

		li, ok := lineIdx[r.OrderID][r.ItemID]
		if !ok {
			li = len(result[oi].Lines)
			lineIdx[r.OrderID][r.ItemID] = li
			result[oi].Lines = append(result[oi].Lines, models.OrderLine{
				ItemID:    r.ItemID,
				Quantity:  r.Quantity,
				Name:      r.Name,
				SellPrice: r.SellPrice,
			})
		}

		if r.ImagePath != nil {
			line := &result[oi].Lines[li]
			if !containsString(line.Images, *r.ImagePath) {
				line.Images = append(line.Images, *r.ImagePath)
			}
		}
	}
	return result
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

// UpdateOrderStatus moves an order through its lifecycle. Transitioning to
// delivered stamps date_delivery once.
func (db *DB) UpdateOrderStatus(ctx context.Context, orderID int64, status string) (bool, error) {
	query := `
		UPDATE orders
		SET status = $1,
		    date_delivery = CASE WHEN $1 = 'delivered' AND date_delivery IS NULL THEN NOW() ELSE date_delivery END,
		    updated_at = NOW()
		WHERE order_id = $2
	`
	tag, err := db.pool.Exec(ctx, query, status, orderID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteOrder removes an order; its lines go with it via the FK cascade.
func (db *DB) DeleteOrder(ctx context.Context, orderID int64) (bool, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM orders WHERE order_id = $1`, orderID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ReceiptData loads everything the receipt template needs for one order.
// Returns found=false when the order does not exist or has no lines.
func (db *DB) ReceiptData(ctx context.Context, orderID int64) (*models.ReceiptData, bool, error) {
	query := `
		SELECT o.order_id, o.date_ordered, o.date_delivery, o.status,
		       c.last_name, c.first_name, COALESCE(c.address, ''), COALESCE(c.city, ''), COALESCE(c.phone, ''), u.email,
		       ol.item_id, ol.quantity, i.name, COALESCE(i.sell_price, 0),
		       img.image_path
		FROM orders o
		INNER JOIN customer c ON o.customer_id = c.customer_id
		INNER JOIN users u ON c.user_id = u.id
		INNER JOIN orderline ol ON o.order_id = ol.order_id
		INNER JOIN items i ON ol.item_id = i.item_id
		LEFT JOIN items_images img ON i.item_id = img.item_id
		WHERE o.order_id = $1
		ORDER BY ol.item_id
	`
	rows, err := db.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var data *models.ReceiptData
	itemIdx := make(map[int64]int)
	for rows.Next() {
		var (
			r         models.ReceiptData
			itemID    int64
			quantity  int64
			name      string
			price     decimal.Decimal
			imagePath *string
		)
		if err := rows.Scan(&r.OrderID, &r.DateOrdered, &r.DateDelivery, &r.Status,
			&r.LastName, &r.FirstName, &r.Address, &r.City, &r.Phone, &r.Email,
			&itemID, &quantity, &name, &price, &imagePath); err != nil {
			return nil, false, err
		}
		if data == nil {
			data = &r
		}

		ii, ok := itemIdx[itemID]
		if !ok {
			ii = len(data.Items)
			itemIdx[itemID] = ii
			data.Items = append(data.Items, models.ReceiptItem{
				ItemID:   itemID,
				Name:     name,
				Quantity: quantity,
				Price:    price,
			})
		}
		if imagePath != nil {
			item := &data.Items[ii]
			if !containsString(item.Images, *imagePath) {
				item.Images = append(item.Images, *imagePath)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	if data == nil {
		return nil, false, nil
	}
	return data, true, nil
}
