package repository

import (
	"context"

	"green-kart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CatalogRepository defines read-only access to the product catalogue.
// Order placement never writes to it.
type CatalogRepository interface {
	// GetAll retrieves all products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// Snapshot retrieves the current offer price and stock status for the
	// given product IDs, keyed by product ID. Products absent from the
	// result did not exist at snapshot time.
	Snapshot(ctx context.Context, ids []string) (map[string]model.CatalogEntry, error)
}

// OrderRepository defines the interface for order data access operations.
//
// MarkPaid and DeleteIfUnpaid are single atomic statements rather than
// read-modify-write sequences, so concurrent paid/expired notifications
// for the same order cannot interleave into deleting a paid order.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderLines inserts the order's lines within the provided transaction.
	CreateOrderLines(ctx context.Context, tx pgx.Tx, lines []model.OrderLine) error

	// GetByID retrieves an order with its lines, or nil if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ListByOwner retrieves the owner's visible orders (COD or paid),
	// newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]model.Order, error)

	// ListAll retrieves all visible orders (COD or paid), newest first.
	ListAll(ctx context.Context) ([]model.Order, error)

	// MarkPaid sets the order paid. Returns false if no such order exists.
	// Marking an already-paid order succeeds and reports found.
	MarkPaid(ctx context.Context, id uuid.UUID) (found bool, err error)

	// DeleteIfUnpaid deletes the order only while it is an unpaid online
	// order. Returns whether a row was deleted.
	DeleteIfUnpaid(ctx context.Context, id uuid.UUID) (deleted bool, err error)
}
