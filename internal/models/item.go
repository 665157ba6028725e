package models

import "github.com/shopspring/decimal"

// Item represents a single receipt line.
// Immutable once the session leaves draft, except for attached claims.
type Item struct {
	// ID is the unique identifier for the item (UUID format).
	ID string

	// SessionID is the session this item belongs to.
	SessionID string

	// Name is the line description from the receipt (e.g. "Burger").
	Name string

	// Price is the unit price, non-negative.
	Price decimal.Decimal

	// Quantity is the number of units, always >= 1. Quantity is claimed
	// as a whole: claimants split Price*Quantity evenly, never fractional
	// per-claimant quantities.
	Quantity int

	// Claimants are the member IDs currently claiming this item.
	Claimants []string
}

// Total returns Price * Quantity.
func (i Item) Total() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
