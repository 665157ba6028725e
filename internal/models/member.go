package models

// Member represents one anonymous participant in a session.
//
// A device is recognized by its fingerprint: (SessionID, Fingerprint) is
// unique, so repeated joins from the same device (page reloads, reopened
// tabs) resolve to the same Member and never reset IsPaid.
type Member struct {
	// ID is the unique identifier for the member (UUID format).
	ID string

	// SessionID is the session this member belongs to.
	SessionID string

	// Fingerprint is the opaque per-device identifier supplied by the
	// client. Generated once per device and persisted locally; the core
	// treats it as an opaque non-empty string.
	Fingerprint string

	// Name is the user-supplied display name.
	Name string

	// AvatarSeed is derived deterministically from the fingerprint so the
	// same device renders the same avatar on every visit.
	AvatarSeed string

	// IsPaid records that this member has settled up. It is the only
	// mutable field once the session is paid.
	IsPaid bool

	// CreatedAt is the Unix timestamp when the member first joined.
	CreatedAt int64
}
