package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"green-kart/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// insertOrder persists an order with its lines, committing the transaction.
func insertOrder(t *testing.T, repo OrderRepository, order *model.Order) {
	t.Helper()
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)

	err = repo.CreateOrder(ctx, tx, order)
	require.NoError(t, err)

	err = repo.CreateOrderLines(ctx, tx, order.Lines)
	require.NoError(t, err)

	err = tx.Commit(ctx)
	require.NoError(t, err)
}

func sampleOrder(method model.PaymentMethod) *model.Order {
	now := time.Now()
	orderID := uuid.New()
	order := &model.Order{
		ID:            orderID,
		OwnerID:       "user-1",
		AmountCents:   1020,
		Address:       "42 Fern Street",
		PaymentMethod: method,
		Paid:          false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	order.Lines = []model.OrderLine{
		{ID: uuid.New(), OrderID: orderID, ProductID: "P001", Quantity: 2, UnitPriceCents: 900},
	}
	if method == model.PaymentOnline {
		sessionID := "cs_" + orderID.String()[:8]
		order.GatewaySessionID = &sessionID
	}
	return order
}

func TestOrderRepository_CreateAndGetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger := zerolog.Nop()
	repo := NewOrderRepository(pool, logger)
	seedProducts(t, pool, testCatalog(time.Now()))

	ctx := context.Background()

	order := sampleOrder(model.PaymentOnline)
	insertOrder(t, repo, order)

	t.Run("Order exists with lines", func(t *testing.T) {
		retrieved, err := repo.GetByID(ctx, order.ID)

		require.NoError(t, err)
		require.NotNil(t, retrieved)
		assert.Equal(t, order.ID, retrieved.ID)
		assert.Equal(t, order.OwnerID, retrieved.OwnerID)
		assert.Equal(t, order.AmountCents, retrieved.AmountCents)
		assert.Equal(t, model.PaymentOnline, retrieved.PaymentMethod)
		assert.False(t, retrieved.Paid)
		require.NotNil(t, retrieved.GatewaySessionID)
		assert.Equal(t, *order.GatewaySessionID, *retrieved.GatewaySessionID)

		require.Len(t, retrieved.Lines, 1)
		assert.Equal(t, "P001", retrieved.Lines[0].ProductID)
		assert.Equal(t, 2, retrieved.Lines[0].Quantity)
		assert.Equal(t, int64(900), retrieved.Lines[0].UnitPriceCents)
	})

	t.Run("Order does not exist", func(t *testing.T) {
		retrieved, err := repo.GetByID(ctx, uuid.New())

		require.NoError(t, err)
		assert.Nil(t, retrieved)
	})
}

func TestOrderRepository_TransactionRollback(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger := zerolog.Nop()
	repo := NewOrderRepository(pool, logger)

	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)

	order := sampleOrder(model.PaymentCOD)
	order.Lines = nil
	err = repo.CreateOrder(ctx, tx, order)
	require.NoError(t, err)

	err = tx.Rollback(ctx)
	require.NoError(t, err)

	retrieved, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Nil(t, retrieved)
}

func TestOrderRepository_MarkPaid(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger := zerolog.Nop()
	repo := NewOrderRepository(pool, logger)
	seedProducts(t, pool, testCatalog(time.Now()))

	ctx := context.Background()

	order := sampleOrder(model.PaymentOnline)
	insertOrder(t, repo, order)

	t.Run("Marks unpaid order paid", func(t *testing.T) {
		found, err := repo.MarkPaid(ctx, order.ID)

		require.NoError(t, err)
		assert.True(t, found)

		retrieved, err := repo.GetByID(ctx, order.ID)
		require.NoError(t, err)
		require.NotNil(t, retrieved)
		assert.True(t, retrieved.Paid)
	})

	t.Run("Marking again is a no-op success", func(t *testing.T) {
		found, err := repo.MarkPaid(ctx, order.ID)

		require.NoError(t, err)
		assert.True(t, found)
	})

	t.Run("Unknown order reports not found", func(t *testing.T) {
		found, err := repo.MarkPaid(ctx, uuid.New())

		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestOrderRepository_DeleteIfUnpaid(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger := zerolog.Nop()
	repo := NewOrderRepository(pool, logger)
	seedProducts(t, pool, testCatalog(time.Now()))

	ctx := context.Background()

	t.Run("Deletes unpaid online order", func(t *testing.T) {
		order := sampleOrder(model.PaymentOnline)
		insertOrder(t, repo, order)

		deleted, err := repo.DeleteIfUnpaid(ctx, order.ID)

		require.NoError(t, err)
		assert.True(t, deleted)

		retrieved, err := repo.GetByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Nil(t, retrieved)
	})

	t.Run("Deleting removes order lines too", func(t *testing.T) {
		order := sampleOrder(model.PaymentOnline)
		insertOrder(t, repo, order)

		deleted, err := repo.DeleteIfUnpaid(ctx, order.ID)
		require.NoError(t, err)
		require.True(t, deleted)

		var count int
		err = pool.QueryRow(ctx, "SELECT COUNT(*) FROM order_lines WHERE order_id = $1", order.ID).Scan(&count)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("Paid order survives", func(t *testing.T) {
		order := sampleOrder(model.PaymentOnline)
		insertOrder(t, repo, order)

		found, err := repo.MarkPaid(ctx, order.ID)
		require.NoError(t, err)
		require.True(t, found)

		deleted, err := repo.DeleteIfUnpaid(ctx, order.ID)

		require.NoError(t, err)
		assert.False(t, deleted)

		retrieved, err := repo.GetByID(ctx, order.ID)
		require.NoError(t, err)
		require.NotNil(t, retrieved)
		assert.True(t, retrieved.Paid)
	})

	t.Run("Cash-on-delivery order survives", func(t *testing.T) {
		order := sampleOrder(model.PaymentCOD)
		insertOrder(t, repo, order)

		deleted, err := repo.DeleteIfUnpaid(ctx, order.ID)

		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("Unknown order is a no-op", func(t *testing.T) {
		deleted, err := repo.DeleteIfUnpaid(ctx, uuid.New())

		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestOrderRepository_ListFiltering(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger := zerolog.Nop()
	repo := NewOrderRepository(pool, logger)
	seedProducts(t, pool, testCatalog(time.Now()))

	ctx := context.Background()

	codOrder := sampleOrder(model.PaymentCOD)
	insertOrder(t, repo, codOrder)

	paidOnline := sampleOrder(model.PaymentOnline)
	insertOrder(t, repo, paidOnline)
	found, err := repo.MarkPaid(ctx, paidOnline.ID)
	require.NoError(t, err)
	require.True(t, found)

	unpaidOnline := sampleOrder(model.PaymentOnline)
	insertOrder(t, repo, unpaidOnline)

	otherOwner := sampleOrder(model.PaymentCOD)
	otherOwner.OwnerID = "user-2"
	insertOrder(t, repo, otherOwner)

	t.Run("ListByOwner hides unpaid online orders", func(t *testing.T) {
		orders, err := repo.ListByOwner(ctx, "user-1")

		require.NoError(t, err)
		require.Len(t, orders, 2)

		ids := map[uuid.UUID]bool{}
		for _, o := range orders {
			ids[o.ID] = true
			require.NotEmpty(t, o.Lines)
		}
		assert.True(t, ids[codOrder.ID])
		assert.True(t, ids[paidOnline.ID])
		assert.False(t, ids[unpaidOnline.ID])
	})

	t.Run("ListByOwner scopes to the owner", func(t *testing.T) {
		orders, err := repo.ListByOwner(ctx, "user-2")

		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, otherOwner.ID, orders[0].ID)
	})

	t.Run("ListAll spans owners but keeps the filter", func(t *testing.T) {
		orders, err := repo.ListAll(ctx)

		require.NoError(t, err)
		require.Len(t, orders, 3)
		for _, o := range orders {
			assert.NotEqual(t, unpaidOnline.ID, o.ID)
		}
	})

	t.Run("Unknown owner yields empty list", func(t *testing.T) {
		orders, err := repo.ListByOwner(ctx, "nobody")

		require.NoError(t, err)
		assert.Empty(t, orders)
	})
}

// TestOrderRepository_ConcurrentMarkPaidAndExpire drives MarkPaid and
// DeleteIfUnpaid against the same order from concurrent goroutines. Whatever
// the interleaving, a successfully paid order must never end up deleted.
func TestOrderRepository_ConcurrentMarkPaidAndExpire(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger := zerolog.Nop()
	repo := NewOrderRepository(pool, logger)
	seedProducts(t, pool, testCatalog(time.Now()))

	ctx := context.Background()

	const iterations = 25

	for i := 0; i < iterations; i++ {
		order := sampleOrder(model.PaymentOnline)
		insertOrder(t, repo, order)

		var (
			wg      sync.WaitGroup
			paidOK  bool
			paidErr error
			deleted bool
			expErr  error
		)

		wg.Add(2)
		go func() {
			defer wg.Done()
			paidOK, paidErr = repo.MarkPaid(ctx, order.ID)
		}()
		go func() {
			defer wg.Done()
			deleted, expErr = repo.DeleteIfUnpaid(ctx, order.ID)
		}()
		wg.Wait()

		require.NoError(t, paidErr)
		require.NoError(t, expErr)

		retrieved, err := repo.GetByID(ctx, order.ID)
		require.NoError(t, err)

		if paidOK && !deleted {
			// Payment won: the order must survive as paid.
			require.NotNil(t, retrieved)
			assert.True(t, retrieved.Paid)
		} else if deleted && !paidOK {
			// Expiry won before the payment landed: the order is gone.
			assert.Nil(t, retrieved)
		} else if paidOK && deleted {
			t.Fatalf("iteration %d: order was both marked paid and deleted", i)
		} else {
			t.Fatalf("iteration %d: neither mark paid nor expiry matched the order", i)
		}
	}
}

func TestOrderRepository_ErrorPaths(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	logger := zerolog.Nop()
	repo := NewOrderRepository(pool, logger)
	seedProducts(t, pool, testCatalog(time.Now()))

	ctx := context.Background()

	order := sampleOrder(model.PaymentOnline)
	insertOrder(t, repo, order)

	// Close the pool to simulate database errors
	pool.Close()

	t.Run("BeginTx with closed pool", func(t *testing.T) {
		tx, err := repo.BeginTx(ctx)

		require.Error(t, err)
		assert.Nil(t, tx)
	})

	t.Run("GetByID with closed pool", func(t *testing.T) {
		retrieved, err := repo.GetByID(ctx, order.ID)

		require.Error(t, err)
		assert.Nil(t, retrieved)
	})

	t.Run("MarkPaid with closed pool", func(t *testing.T) {
		found, err := repo.MarkPaid(ctx, order.ID)

		require.Error(t, err)
		assert.False(t, found)
	})
}
