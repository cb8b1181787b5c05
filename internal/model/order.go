package model

import (
	"time"

	"github.com/google/uuid"
)

// PaymentMethod is how an order settles.
type PaymentMethod string

const (
	// PaymentCOD settles in person on delivery; the order is fulfillable
	// immediately and never transitions to paid through the gateway.
	PaymentCOD PaymentMethod = "COD"

	// PaymentOnline settles asynchronously through the payment gateway;
	// the order must reach paid before fulfilment proceeds.
	PaymentOnline PaymentMethod = "ONLINE"
)

// CartLine is a single client-submitted cart entry. It carries no price:
// prices come from the catalogue snapshot at placement time.
type CartLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// OrderLine is a persisted order line. UnitPriceCents is captured at
// creation time and never recomputed from the live catalogue, so historical
// orders are immune to later price changes.
type OrderLine struct {
	ID             uuid.UUID `json:"-" db:"id"`
	OrderID        uuid.UUID `json:"-" db:"order_id"`
	ProductID      string    `json:"productId" db:"product_id"`
	Quantity       int       `json:"quantity" db:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents" db:"unit_price_cents"`
}

// Order is the durable record of a placed purchase.
//
// Every field except Paid is immutable after creation. Paid transitions at
// most once (false -> true) and only through reconciliation or the admin
// override; an order is deleted only while still an unpaid online order
// whose gateway session expired.
type Order struct {
	ID               uuid.UUID     `json:"id" db:"id"`
	OwnerID          string        `json:"ownerId" db:"owner_id"`
	Lines            []OrderLine   `json:"lines"`
	AmountCents      int64         `json:"amountCents" db:"amount_cents"`
	Address          string        `json:"address" db:"address"`
	PaymentMethod    PaymentMethod `json:"paymentMethod" db:"payment_method"`
	Paid             bool          `json:"paid" db:"paid"`
	GatewaySessionID *string       `json:"gatewaySessionId,omitempty" db:"gateway_session_id"`
	CreatedAt        time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time     `json:"updatedAt" db:"updated_at"`
}

// PlaceOrderRequest is the request payload for placing an order.
type PlaceOrderRequest struct {
	OwnerID string     `json:"ownerId"`
	Address string     `json:"address"`
	Lines   []CartLine `json:"items"`
}

// PlaceOrderResponse is returned after successful placement. CheckoutURL
// is set only for online orders.
type PlaceOrderResponse struct {
	OrderID     uuid.UUID `json:"orderId"`
	TotalCents  int64     `json:"totalCents"`
	CheckoutURL string    `json:"checkoutUrl,omitempty"`
}
