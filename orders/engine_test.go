package orders

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"storefront-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeStore mimics the relational store: stock decrements take effect
// immediately under lock (as row locks would) and are undone on rollback,
// while order and line rows only become visible on commit.
type fakeStore struct {
	mu          sync.Mutex
	customers   map[int64]models.CustomerIdentity
	stock       map[int64]int64
	orders      map[int64]int64             // orderID -> customerID, committed only
	lines       map[int64][]models.CartEntry // committed lines by order
	nextOrderID int64

	beginErr      error
	commitErr     error
	insertLineErr error

	// enforceCatalogFK makes InsertOrderLine reject items without an
	// inventory record, like the orderline foreign key does.
	enforceCatalogFK bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		customers: make(map[int64]models.CustomerIdentity),
		stock:     make(map[int64]int64),
		orders:    make(map[int64]int64),
		lines:     make(map[int64][]models.CartEntry),
	}
}

func (s *fakeStore) Begin(ctx context.Context) (Tx, error) {
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	return &fakeTx{store: s, undo: make(map[int64]int64)}, nil
}

func (s *fakeStore) OrdersForUser(ctx context.Context, userID int64) ([]models.OrderWithLines, error) {
	return nil, nil
}

type fakeTx struct {
	store *fakeStore

	orderID    int64
	customerID int64
	hasOrder   bool
	cartLines  []models.CartEntry
	undo       map[int64]int64 // itemID -> quantity to restore
	ended      bool
}

func (t *fakeTx) ResolveCustomer(ctx context.Context, userID int64) (models.CustomerIdentity, bool, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	identity, ok := t.store.customers[userID]
	return identity, ok, nil
}

func (t *fakeTx) InsertOrder(ctx context.Context, customerID int64, dateOrdered time.Time) (int64, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.store.nextOrderID++
	t.orderID = t.store.nextOrderID
	t.customerID = customerID
	t.hasOrder = true
	return t.orderID, nil
}

func (t *fakeTx) InsertOrderLine(ctx context.Context, orderID, itemID, quantity int64) error {
	if t.store.insertLineErr != nil {
		return t.store.insertLineErr
	}
	if t.store.enforceCatalogFK {
		t.store.mu.Lock()
		_, ok := t.store.stock[itemID]
		t.store.mu.Unlock()
		if !ok {
			return errors.New(`insert or update on table "orderline" violates foreign key constraint "orderline_item_id_fkey" (SQLSTATE 23503)`)
		}
	}
	t.cartLines = append(t.cartLines, models.CartEntry{ItemID: itemID, Quantity: quantity})
	return nil
}

func (t *fakeTx) DecrementStock(ctx context.Context, itemID, quantity int64) (int64, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	current, ok := t.store.stock[itemID]
	if !ok || current < quantity {
		return 0, nil
	}
	t.store.stock[itemID] = current - quantity
	t.undo[itemID] += quantity
	return 1, nil
}

func (t *fakeTx) Commit(ctx context.Context) error {
	if t.store.commitErr != nil {
		return t.store.commitErr
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.hasOrder {
		t.store.orders[t.orderID] = t.customerID
		t.store.lines[t.orderID] = t.cartLines
	}
	t.ended = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.ended {
		return nil
	}
	for itemID, quantity := range t.undo {
		t.store.stock[itemID] += quantity
	}
	t.undo = make(map[int64]int64)
	t.ended = true
	return nil
}

func newTestEngine(store *fakeStore) *Engine {
	return NewEngine(store, zap.NewNop())
}

func seedCustomer(store *fakeStore, userID, customerID int64) {
	store.customers[userID] = models.CustomerIdentity{CustomerID: customerID, Email: "buyer@example.com"}
}

func TestPlaceOrder_Success(t *testing.T) {
	store := newFakeStore()
	seedCustomer(store, 7, 70)
	store.stock[1] = 5

	engine := newTestEngine(store)
	confirmation, err := engine.PlaceOrder(context.Background(), 7, []models.CartEntry{{ItemID: 1, Quantity: 2}})

	require.NoError(t, err)
	require.NotNil(t, confirmation)
	assert.True(t, confirmation.Success)
	assert.Equal(t, int64(1), confirmation.OrderID)
	assert.Equal(t, "Order placed successfully!", confirmation.Message)
	assert.Equal(t, "buyer@example.com", confirmation.CustomerEmail)
	assert.WithinDuration(t, time.Now().UTC(), confirmation.DateOrdered, 2*time.Second)

	assert.Equal(t, int64(3), store.stock[1])
	assert.Len(t, store.orders, 1)
	assert.Equal(t, []models.CartEntry{{ItemID: 1, Quantity: 2}}, store.lines[confirmation.OrderID])
}

func TestPlaceOrder_InsufficientStock(t *testing.T) {
	store := newFakeStore()
	seedCustomer(store, 7, 70)
	store.stock[1] = 5

	engine := newTestEngine(store)
	confirmation, err := engine.PlaceOrder(context.Background(), 7, []models.CartEntry{{ItemID: 1, Quantity: 10}})

	require.Error(t, err)
	assert.Nil(t, confirmation)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(1), stockErr.ItemID)

	assert.Equal(t, int64(5), store.stock[1])
	assert.Empty(t, store.orders)
}

func TestPlaceOrder_RollsBackEarlierLines(t *testing.T) {
	store := newFakeStore()
	seedCustomer(store, 7, 70)
	store.stock[1] = 5
	// Item 99 has no inventory record at all.

	engine := newTestEngine(store)
	cart := []models.CartEntry{
		{ItemID: 1, Quantity: 2},
		{ItemID: 99, Quantity: 1},
	}
	_, err := engine.PlaceOrder(context.Background(), 7, cart)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(99), stockErr.ItemID)

	// Item 1's earlier decrement must have been rolled back.
	assert.Equal(t, int64(5), store.stock[1])
	assert.Empty(t, store.orders)
	assert.Empty(t, store.lines)
}

func TestPlaceOrder_UnknownItemFailsAsStockShortage(t *testing.T) {
	store := newFakeStore()
	store.enforceCatalogFK = true
	seedCustomer(store, 7, 70)
	store.stock[1] = 5
	// Item 99 exists in neither catalog nor stock. The decrement must
	// classify it before the line insert can hit the foreign key.

	engine := newTestEngine(store)
	cart := []models.CartEntry{
		{ItemID: 1, Quantity: 2},
		{ItemID: 99, Quantity: 1},
	}
	_, err := engine.PlaceOrder(context.Background(), 7, cart)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(99), stockErr.ItemID)

	var persistErr *PersistenceError
	assert.False(t, errors.As(err, &persistErr))

	assert.Equal(t, int64(5), store.stock[1])
	assert.Empty(t, store.orders)
	assert.Empty(t, store.lines)
}

func TestPlaceOrder_RejectsDuplicateCartItem(t *testing.T) {
	store := newFakeStore()
	seedCustomer(store, 7, 70)
	store.stock[1] = 5
	store.stock[2] = 5

	engine := newTestEngine(store)
	cart := []models.CartEntry{
		{ItemID: 1, Quantity: 1},
		{ItemID: 2, Quantity: 1},
		{ItemID: 1, Quantity: 3},
	}
	_, err := engine.PlaceOrder(context.Background(), 7, cart)

	var dupErr *DuplicateCartItemError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, 2, dupErr.Index)
	assert.Equal(t, int64(1), dupErr.ItemID)

	assert.Equal(t, int64(5), store.stock[1])
	assert.Equal(t, int64(5), store.stock[2])
	assert.Empty(t, store.orders)
}

func TestPlaceOrder_ConcurrentOrdersForLastUnits(t *testing.T) {
	store := newFakeStore()
	seedCustomer(store, 7, 70)
	seedCustomer(store, 8, 80)
	store.stock[1] = 5

	engine := newTestEngine(store)

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for _, userID := range []int64{7, 8} {
		wg.Add(1)
		go func(uid int64) {
			defer wg.Done()
			_, err := engine.PlaceOrder(context.Background(), uid, []models.CartEntry{{ItemID: 1, Quantity: 3}})
			results <- err
		}(userID)
	}
	wg.Wait()
	close(results)

	var successes, stockFailures int
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		var stockErr *InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		stockFailures++
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, stockFailures)
	assert.Equal(t, int64(2), store.stock[1])
	assert.Len(t, store.orders, 1)
}

func TestPlaceOrder_StockNeverGoesNegative(t *testing.T) {
	store := newFakeStore()
	seedCustomer(store, 7, 70)
	const initial = 10
	store.stock[1] = initial

	engine := newTestEngine(store)

	const callers = 8
	var wg sync.WaitGroup
	results := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.PlaceOrder(context.Background(), 7, []models.CartEntry{{ItemID: 1, Quantity: 3}})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes int64
	for err := range results {
		if err == nil {
			successes++
		}
	}

	assert.GreaterOrEqual(t, store.stock[1], int64(0))
	assert.Equal(t, int64(initial)-successes*3, store.stock[1])
	assert.LessOrEqual(t, successes*3, int64(initial))
}

func TestPlaceOrder_UnknownUserHasNoSideEffects(t *testing.T) {
	store := newFakeStore()
	store.stock[1] = 5

	engine := newTestEngine(store)
	cart := []models.CartEntry{{ItemID: 1, Quantity: 1}}

	// Rollback must be idempotent across repeated failing calls.
	for i := 0; i < 2; i++ {
		_, err := engine.PlaceOrder(context.Background(), 42, cart)
		require.ErrorIs(t, err, ErrCustomerNotFound)
	}

	assert.Equal(t, int64(5), store.stock[1])
	assert.Empty(t, store.orders)
	assert.Empty(t, store.lines)
}

func TestPlaceOrder_ValidatesRequest(t *testing.T) {
	store := newFakeStore()
	seedCustomer(store, 7, 70)
	engine := newTestEngine(store)

	tests := []struct {
		name    string
		userID  int64
		cart    []models.CartEntry
		wantErr error
	}{
		{name: "missing user", userID: 0, cart: []models.CartEntry{{ItemID: 1, Quantity: 1}}, wantErr: ErrInvalidRequest},
		{name: "empty cart", userID: 7, cart: nil, wantErr: ErrInvalidRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.PlaceOrder(context.Background(), tc.userID, tc.cart)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestPlaceOrder_RejectsMalformedCartEntry(t *testing.T) {
	store := newFakeStore()
	seedCustomer(store, 7, 70)
	store.stock[1] = 5

	engine := newTestEngine(store)
	cart := []models.CartEntry{
		{ItemID: 1, Quantity: 2},
		{ItemID: 2}, // missing quantity
	}
	_, err := engine.PlaceOrder(context.Background(), 7, cart)

	var entryErr *InvalidCartEntryError
	require.ErrorAs(t, err, &entryErr)
	assert.Equal(t, 1, entryErr.Index)

	// The whole operation fails before any mutation.
	assert.Equal(t, int64(5), store.stock[1])
	assert.Empty(t, store.orders)
}

func TestPlaceOrder_ExactlyOneLinePerCartEntry(t *testing.T) {
	store := newFakeStore()
	seedCustomer(store, 7, 70)
	store.stock[1] = 5
	store.stock[2] = 5
	store.stock[3] = 5

	engine := newTestEngine(store)
	cart := []models.CartEntry{
		{ItemID: 1, Quantity: 1},
		{ItemID: 2, Quantity: 2},
		{ItemID: 3, Quantity: 3},
	}
	confirmation, err := engine.PlaceOrder(context.Background(), 7, cart)

	require.NoError(t, err)
	require.Len(t, store.lines[confirmation.OrderID], 3)
	assert.Equal(t, cart, store.lines[confirmation.OrderID])
}

func TestPlaceOrder_CommitFailureRollsBack(t *testing.T) {
	store := newFakeStore()
	seedCustomer(store, 7, 70)
	store.stock[1] = 5
	store.commitErr = errors.New("connection reset")

	engine := newTestEngine(store)
	_, err := engine.PlaceOrder(context.Background(), 7, []models.CartEntry{{ItemID: 1, Quantity: 2}})

	var commitErr *CommitError
	require.ErrorAs(t, err, &commitErr)

	assert.Equal(t, int64(5), store.stock[1])
	assert.Empty(t, store.orders)
}

func TestPlaceOrder_PersistenceFailureRollsBack(t *testing.T) {
	store := newFakeStore()
	seedCustomer(store, 7, 70)
	store.stock[1] = 5
	store.insertLineErr = errors.New("disk full")

	engine := newTestEngine(store)
	_, err := engine.PlaceOrder(context.Background(), 7, []models.CartEntry{{ItemID: 1, Quantity: 2}})

	var persistErr *PersistenceError
	require.ErrorAs(t, err, &persistErr)
	assert.Equal(t, "insert order line", persistErr.Op)

	assert.Equal(t, int64(5), store.stock[1])
	assert.Empty(t, store.orders)
}

func TestPlaceOrder_BeginFailure(t *testing.T) {
	store := newFakeStore()
	seedCustomer(store, 7, 70)
	store.beginErr = errors.New("pool exhausted")

	engine := newTestEngine(store)
	_, err := engine.PlaceOrder(context.Background(), 7, []models.CartEntry{{ItemID: 1, Quantity: 1}})

	var persistErr *PersistenceError
	require.ErrorAs(t, err, &persistErr)
	assert.Equal(t, "begin", persistErr.Op)
}

func TestOrdersForUser_RejectsInvalidUser(t *testing.T) {
	engine := newTestEngine(newFakeStore())
	_, err := engine.OrdersForUser(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
