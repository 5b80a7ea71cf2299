package database

import (
	"context"
	"errors"
	"time"

	"storefront-service/models"
	"storefront-service/orders"

	"github.com/jackc/pgx/v5"
)

// Begin opens one transaction scoped to a single order placement. The
// returned value satisfies orders.Tx; the caller must end it with Commit
// or Rollback on every path.
func (db *DB) Begin(ctx context.Context) (orders.Tx, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &orderTx{tx: tx}, nil
}

type orderTx struct {
	tx pgx.Tx
}

func (t *orderTx) ResolveCustomer(ctx context.Context, userID int64) (models.CustomerIdentity, bool, error) {
	query := `
		SELECT c.customer_id, u.email
		FROM customer c
		INNER JOIN users u ON u.id = c.user_id
		WHERE u.id = $1
	`
	var identity models.CustomerIdentity
	err := t.tx.QueryRow(ctx, query, userID).Scan(&identity.CustomerID, &identity.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.CustomerIdentity{}, false, nil
	}
	if err != nil {
		return models.CustomerIdentity{}, false, err
	}
	return identity, true, nil
}

func (t *orderTx) InsertOrder(ctx context.Context, customerID int64, dateOrdered time.Time) (int64, error) {
	query := `
		INSERT INTO orders (customer_id, date_ordered, status)
		VALUES ($1, $2, $3)
		RETURNING order_id
	`
	var orderID int64
	err := t.tx.QueryRow(ctx, query, customerID, dateOrdered, models.OrderStatusProcessing).Scan(&orderID)
	return orderID, err
}

func (t *orderTx) InsertOrderLine(ctx context.Context, orderID, itemID, quantity int64) error {
	query := `INSERT INTO orderline (order_id, item_id, quantity) VALUES ($1, $2, $3)`
	_, err := t.tx.Exec(ctx, query, orderID, itemID, quantity)
	return err
}

// DecrementStock is a single conditional update, not read-then-write, so
// two orders racing for the last units cannot both succeed. Zero rows
// affected means the item is missing or under-stocked.
func (t *orderTx) DecrementStock(ctx context.Context, itemID, quantity int64) (int64, error) {
	query := `UPDATE stock SET quantity = quantity - $1 WHERE item_id = $2 AND quantity >= $1`
	tag, err := t.tx.Exec(ctx, query, quantity, itemID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (t *orderTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *orderTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}
