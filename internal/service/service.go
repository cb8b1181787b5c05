package service

import (
	"context"

	"green-kart/internal/model"

	"github.com/google/uuid"
)

// CatalogService defines read-only product operations.
type CatalogService interface {
	// GetAll retrieves all products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)
}

// OrderService owns the order lifecycle: placement, the single
// unpaid-to-paid transition, expiry of unpaid online orders, and read-only
// projections.
type OrderService interface {
	// PlaceOrder validates the cart, prices it from a fresh catalogue
	// snapshot, and persists the order. For online orders a gateway
	// checkout session is created first; if that fails, no order is
	// persisted.
	PlaceOrder(ctx context.Context, req *model.PlaceOrderRequest, method model.PaymentMethod) (*model.PlaceOrderResponse, error)

	// MarkPaid marks the order paid. Idempotent: an already-paid order is
	// a successful no-op. Returns model.ErrOrderNotFound if absent.
	MarkPaid(ctx context.Context, id uuid.UUID) error

	// ExpireUnpaid deletes the order only if it is still an unpaid online
	// order. A paid order is never deleted; expiry after payment is a
	// no-op. Returns model.ErrOrderNotFound if absent.
	ExpireUnpaid(ctx context.Context, id uuid.UUID) error

	// ListByOwner retrieves the owner's visible orders.
	ListByOwner(ctx context.Context, ownerID string) ([]model.Order, error)

	// ListAll retrieves all visible orders.
	ListAll(ctx context.Context) ([]model.Order, error)
}
