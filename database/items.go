package database

import (
	"context"
	"errors"
	"fmt"

	"storefront-service/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ListItems returns the whole catalog with stock quantity and images.
func (db *DB) ListItems(ctx context.Context) ([]models.Item, error) {
	query := `
		SELECT i.item_id, i.name, i.description, i.category,
		       COALESCE(i.cost_price, 0), COALESCE(i.sell_price, 0), i.show_item,
		       COALESCE(s.quantity, 0), img.image_path
		FROM items i
		LEFT JOIN stock s ON i.item_id = s.item_id
		LEFT JOIN items_images img ON i.item_id = img.item_id
		ORDER BY i.item_id
	`
	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Item
	idx := make(map[int64]int)
	for rows.Next() {
		var (
			item      models.Item
			imagePath *string
		)
		if err := rows.Scan(&item.ItemID, &item.Name, &item.Description, &item.Category,
			&item.CostPrice, &item.SellPrice, &item.ShowItem, &item.Quantity, &imagePath); err != nil {
			return nil, err
		}

		i, ok := idx[item.ItemID]
		if !ok {
			i = len(items)
			idx[item.ItemID] = i
			items = append(items, item)
		}
		if imagePath != nil && !containsString(items[i].Images, *imagePath) {
			items[i].Images = append(items[i].Images, *imagePath)
		}
	}
	return items, rows.Err()
}

// GetItem returns a single catalog item with its stock quantity.
func (db *DB) GetItem(ctx context.Context, itemID int64) (models.Item, bool, error) {
	query := `
		SELECT i.item_id, i.name, i.description, i.category,
		       COALESCE(i.cost_price, 0), COALESCE(i.sell_price, 0), i.show_item,
		       COALESCE(s.quantity, 0)
		FROM items i
		LEFT JOIN stock s ON i.item_id = s.item_id
		WHERE i.item_id = $1
	`
	var item models.Item
	err := db.pool.QueryRow(ctx, query, itemID).Scan(&item.ItemID, &item.Name, &item.Description,
		&item.Category, &item.CostPrice, &item.SellPrice, &item.ShowItem, &item.Quantity)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Item{}, false, nil
	}
	if err != nil {
		return models.Item{}, false, err
	}
	return item, true, nil
}

// CreateItem inserts a catalog item and its inventory record together.
func (db *DB) CreateItem(ctx context.Context, req models.CreateItemRequest) (int64, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	showItem := req.ShowItem
	if showItem == "" {
		showItem = "yes"
	}

	var itemID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO items (name, description, category, cost_price, sell_price, show_item)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING item_id
	`, req.Name, req.Description, req.Category, decimalOrNil(req.CostPrice), decimalOrNil(req.SellPrice), showItem).Scan(&itemID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert item: %w", err)
	}

	if _, err := tx.Exec(ctx, `INSERT INTO stock (item_id, quantity) VALUES ($1, $2)`, itemID, req.Quantity); err != nil {
		return 0, fmt.Errorf("failed to insert stock: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return itemID, nil
}

// UpdateItem overwrites a catalog item and resets its stock quantity.
func (db *DB) UpdateItem(ctx context.Context, itemID int64, req models.CreateItemRequest) (bool, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	showItem := req.ShowItem
	if showItem == "" {
		showItem = "yes"
	}

	tag, err := tx.Exec(ctx, `
		UPDATE items
		SET name = $1, description = $2, category = $3, cost_price = $4, sell_price = $5, show_item = $6
		WHERE item_id = $7
	`, req.Name, req.Description, req.Category, decimalOrNil(req.CostPrice), decimalOrNil(req.SellPrice), showItem, itemID)
	if err != nil {
		return false, fmt.Errorf("failed to update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO stock (item_id, quantity) VALUES ($1, $2)
		ON CONFLICT (item_id) DO UPDATE SET quantity = EXCLUDED.quantity
	`, itemID, req.Quantity)
	if err != nil {
		return false, fmt.Errorf("failed to update stock: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit: %w", err)
	}
	return true, nil
}

// DeleteItem removes an item together with its stock and images.
func (db *DB) DeleteItem(ctx context.Context, itemID int64) (bool, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Stock and images first due to FK constraints.
	if _, err := tx.Exec(ctx, `DELETE FROM stock WHERE item_id = $1`, itemID); err != nil {
		return false, fmt.Errorf("failed to delete stock: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM items_images WHERE item_id = $1`, itemID); err != nil {
		return false, fmt.Errorf("failed to delete item images: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM items WHERE item_id = $1`, itemID)
	if err != nil {
		return false, fmt.Errorf("failed to delete item: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func decimalOrNil(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return *d
}
