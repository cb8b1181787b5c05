package model

import "time"

// Product represents a product in the catalogue. Prices are integer
// minor currency units (cents).
type Product struct {
	ID              string    `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Category        string    `json:"category" db:"category"`
	PriceCents      int64     `json:"priceCents" db:"price_cents"`
	OfferPriceCents int64     `json:"offerPriceCents" db:"offer_price_cents"`
	InStock         bool      `json:"inStock" db:"in_stock"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}

// CatalogEntry is the pricing snapshot for a single product as returned by
// the catalogue reader at order-placement time. Orders are always priced
// from a fresh snapshot, never from client-submitted amounts.
type CatalogEntry struct {
	ProductID       string
	OfferPriceCents int64
	InStock         bool
}
