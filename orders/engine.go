package orders

import (
	"context"
	"time"

	"storefront-service/models"

	"go.uber.org/zap"
)

// Store is the transactional unit-of-work primitive the engine runs on.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
	OrdersForUser(ctx context.Context, userID int64) ([]models.OrderWithLines, error)
}

// Tx scopes every mutation of one PlaceOrder call to a single transaction.
// Nothing is visible to other operations until Commit returns nil.
type Tx interface {
	ResolveCustomer(ctx context.Context, userID int64) (models.CustomerIdentity, bool, error)
	InsertOrder(ctx context.Context, customerID int64, dateOrdered time.Time) (int64, error)
	InsertOrderLine(ctx context.Context, orderID, itemID, quantity int64) error
	// DecrementStock reduces on-hand quantity only if enough units remain,
	// as a single conditional update. Returns the number of rows affected.
	DecrementStock(ctx context.Context, itemID, quantity int64) (int64, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Engine places orders atomically: the order row, every order line and
// every stock decrement commit together or not at all.
type Engine struct {
	store  Store
	logger *zap.Logger
}

func NewEngine(store Store, logger *zap.Logger) *Engine {
	return &Engine{
		store:  store,
		logger: logger,
	}
}

// PlaceOrder creates an order for userID from the supplied cart. Cart
// entries are processed in caller order; concurrent orders racing for the
// same stock are serialized by the conditional decrement, so the first
// order to claim the remaining units wins and later ones fail fast.
func (e *Engine) PlaceOrder(ctx context.Context, userID int64, cart []models.CartEntry) (*models.OrderConfirmation, error) {
	if userID <= 0 || len(cart) == 0 {
		return nil, ErrInvalidRequest
	}
	seen := make(map[int64]struct{}, len(cart))
	for i, entry := range cart {
		if entry.ItemID <= 0 || entry.Quantity <= 0 {
			return nil, &InvalidCartEntryError{Index: i}
		}
		// Order lines are keyed by (order, item), so a repeated item
		// would only fail later at the primary key.
		if _, dup := seen[entry.ItemID]; dup {
			return nil, &DuplicateCartItemError{Index: i, ItemID: entry.ItemID}
		}
		seen[entry.ItemID] = struct{}{}
	}

	tx, err := e.store.Begin(ctx)
	if err != nil {
		e.logger.Error("Failed to begin order transaction", zap.Error(err))
		return nil, &PersistenceError{Op: "begin", Err: err}
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	customer, found, err := tx.ResolveCustomer(ctx, userID)
	if err != nil {
		e.logger.Error("Failed to resolve customer", zap.Int64("user_id", userID), zap.Error(err))
		return nil, &PersistenceError{Op: "resolve customer", Err: err}
	}
	if !found {
		return nil, ErrCustomerNotFound
	}

	dateOrdered := time.Now().UTC()
	orderID, err := tx.InsertOrder(ctx, customer.CustomerID, dateOrdered)
	if err != nil {
		e.logger.Error("Failed to insert order", zap.Int64("customer_id", customer.CustomerID), zap.Error(err))
		return nil, &PersistenceError{Op: "insert order", Err: err}
	}

	for _, entry := range cart {
		// Decrement first: an item with no catalog row has no stock row
		// either, so it fails here as a stock shortage rather than
		// tripping the orderline FK on insert.
		affected, err := tx.DecrementStock(ctx, entry.ItemID, entry.Quantity)
		if err != nil {
			e.logger.Error("Failed to decrement stock",
				zap.Int64("order_id", orderID), zap.Int64("item_id", entry.ItemID), zap.Error(err))
			return nil, &PersistenceError{Op: "decrement stock", Err: err}
		}
		if affected == 0 {
			return nil, &InsufficientStockError{ItemID: entry.ItemID}
		}

		if err := tx.InsertOrderLine(ctx, orderID, entry.ItemID, entry.Quantity); err != nil {
			e.logger.Error("Failed to insert order line",
				zap.Int64("order_id", orderID), zap.Int64("item_id", entry.ItemID), zap.Error(err))
			return nil, &PersistenceError{Op: "insert order line", Err: err}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		e.logger.Error("Failed to commit order", zap.Int64("order_id", orderID), zap.Error(err))
		return nil, &CommitError{Err: err}
	}
	committed = true

	e.logger.Info("Placed order",
		zap.Int64("order_id", orderID),
		zap.Int64("customer_id", customer.CustomerID),
		zap.Int("lines", len(cart)))

	return &models.OrderConfirmation{
		Success:       true,
		OrderID:       orderID,
		DateOrdered:   dateOrdered,
		Message:       "Order placed successfully!",
		Cart:          cart,
		CustomerEmail: customer.Email,
	}, nil
}

// OrdersForUser assembles the persisted orders of one user into a nested
// view, order lines grouped by order. A pure projection, no mutation.
func (e *Engine) OrdersForUser(ctx context.Context, userID int64) ([]models.OrderWithLines, error) {
	if userID <= 0 {
		return nil, ErrInvalidRequest
	}
	return e.store.OrdersForUser(ctx, userID)
}
