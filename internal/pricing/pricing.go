// Package pricing computes trusted order totals from cart lines and a
// catalogue price snapshot. It is pure: deterministic, no I/O, and all
// money arithmetic is integer cents so repeated runs can never drift.
package pricing

import (
	"green-kart/internal/model"
)

// TaxRatePercent is the flat tax applied on top of the subtotal. The tax
// amount is floored to the nearest cent.
const TaxRatePercent = 2

// Quote is the server-computed breakdown for a cart. TotalCents is the
// only amount ever persisted or charged; client-declared totals are never
// accepted.
type Quote struct {
	// LineTotals holds unitPrice*quantity per line, in input order.
	LineTotals []int64

	// UnitPrices holds the snapshot offer price per line, in input order.
	// These are captured onto the order so later catalogue changes cannot
	// affect historical orders.
	UnitPrices []int64

	SubtotalCents int64
	TaxCents      int64
	TotalCents    int64
}

// ComputeTotal prices the given cart lines against a catalogue snapshot.
//
// It fails with model.ErrInvalidCart when the cart is empty or any
// quantity is below one, and with a ProductUnavailableError when a
// referenced product is missing from the snapshot or out of stock.
func ComputeTotal(lines []model.CartLine, snapshot map[string]model.CatalogEntry) (*Quote, error) {
	if len(lines) == 0 {
		return nil, model.ErrInvalidCart
	}

	q := &Quote{
		LineTotals: make([]int64, len(lines)),
		UnitPrices: make([]int64, len(lines)),
	}

	for i, line := range lines {
		if line.Quantity < 1 {
			return nil, model.ErrInvalidCart
		}

		entry, ok := snapshot[line.ProductID]
		if !ok || !entry.InStock {
			return nil, model.NewProductUnavailableError(line.ProductID)
		}

		lineTotal := entry.OfferPriceCents * int64(line.Quantity)
		q.UnitPrices[i] = entry.OfferPriceCents
		q.LineTotals[i] = lineTotal
		q.SubtotalCents += lineTotal
	}

	// Integer division of a nonnegative subtotal floors the tax.
	q.TaxCents = q.SubtotalCents * TaxRatePercent / 100
	q.TotalCents = q.SubtotalCents + q.TaxCents

	return q, nil
}
