package orders

import (
	"errors"
	"fmt"
)

// Business-rule rejections. These always leave the store in its pre-call
// state and are safe to surface to the caller verbatim.
var (
	ErrInvalidRequest   = errors.New("missing user or cart is empty")
	ErrCustomerNotFound = errors.New("customer not found")
)

// InvalidCartEntryError rejects the whole order when a single cart entry
// is malformed. Index is the zero-based position in the caller's cart.
type InvalidCartEntryError struct {
	Index int
}

func (e *InvalidCartEntryError) Error() string {
	return fmt.Sprintf("cart entry %d missing item_id or quantity", e.Index)
}

// DuplicateCartItemError rejects a cart naming the same item more than
// once. Index is the position of the repeated entry.
type DuplicateCartItemError struct {
	Index  int
	ItemID int64
}

func (e *DuplicateCartItemError) Error() string {
	return fmt.Sprintf("cart entry %d repeats item %d", e.Index, e.ItemID)
}

// InsufficientStockError means the conditional decrement matched zero rows:
// either the item has no inventory record or not enough units remain.
type InsufficientStockError struct {
	ItemID int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %d", e.ItemID)
}

// PersistenceError wraps a storage failure unrelated to business rules.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// CommitError means the store rejected the final commit after every step
// had apparently succeeded.
type CommitError struct {
	Err error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit failure: %v", e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }
