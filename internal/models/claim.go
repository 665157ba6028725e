package models

// Claim records that a member is one of the people splitting an item.
//
// (ItemID, MemberID) is unique: a member cannot claim the same item twice.
// Under the exclusive policy at most one claim exists per item; under the
// shared policy the item's cost divides evenly across all claimants.
type Claim struct {
	// ItemID is the claimed item.
	ItemID string

	// MemberID is the claiming member.
	MemberID string

	// CreatedAt is the Unix timestamp when the claim was committed.
	CreatedAt int64
}
