package realtime

// Payload shapes for the four event types. Each carries enough state for
// a receiver to patch its local view without a full re-fetch.

// ClaimPayload reports the complete claimant list of one item after a
// claim or unclaim committed. Receivers replace, not merge, the list.
type ClaimPayload struct {
	ItemID    string   `json:"itemId"`
	Claimants []string `json:"claimants"`
}

// MemberPayload reports a member that joined or changed.
type MemberPayload struct {
	MemberID   string `json:"memberId"`
	Name       string `json:"name"`
	AvatarSeed string `json:"avatarSeed"`
	IsPaid     bool   `json:"isPaid"`
}

// ItemPayload reports an item added or re-priced during draft review.
// Removed is set when the item was deleted.
type ItemPayload struct {
	ItemID   string `json:"itemId"`
	Name     string `json:"name,omitempty"`
	Price    string `json:"price,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
	Removed  bool   `json:"removed,omitempty"`
}

// LifecyclePayload reports a status transition.
type LifecyclePayload struct {
	Status string `json:"status"`
}
