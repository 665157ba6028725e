package models

import "github.com/shopspring/decimal"

// Status is the lifecycle state of a session. Transitions are one-way:
// draft -> open -> paid, never skipping and never reversing.
type Status string

const (
	// StatusDraft is the post-ingestion review state. Items may still be
	// edited; nobody has joined yet and claims are rejected.
	StatusDraft Status = "draft"

	// StatusOpen freezes the item list and admits joins and claims.
	StatusOpen Status = "open"

	// StatusPaid makes the session read-only except for Member.IsPaid.
	StatusPaid Status = "paid"
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusOpen || s == StatusPaid
}

// Session represents one shared bill.
// Its ID doubles as the share-link token handed to participants.
type Session struct {
	// ID is the unique identifier for the session (UUID format).
	ID string

	// Title is an optional human-readable name for the bill.
	Title string

	// Currency is the ISO 4217 code for every amount on this bill.
	Currency string

	// Tax is the absolute tax amount for the whole bill, not a percentage.
	Tax decimal.Decimal

	// Tip is the absolute tip amount for the whole bill, not a percentage.
	Tip decimal.Decimal

	// Status is the lifecycle state. Only the lifecycle manager moves it.
	Status Status

	// CreatedAt is the Unix timestamp when the session was created.
	CreatedAt int64

	// Items are the receipt lines. Frozen once Status leaves draft.
	Items []Item

	// Members are the participants who have joined so far.
	Members []Member
}
