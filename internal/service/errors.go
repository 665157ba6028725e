package service

import "errors"

// Typed rejections for the handler layer to map onto status codes. The
// arbitrator and lifecycle manager never swallow these; every denied
// mutation surfaces one so clients can roll back optimistic updates.
var (
	// ErrSessionNotDraft rejects item edits once the item list is frozen.
	ErrSessionNotDraft = errors.New("session items are frozen")

	// ErrSessionNotOpen rejects claim traffic outside the open state.
	ErrSessionNotOpen = errors.New("session is not open for claims")

	// ErrSessionClosed rejects joins and claims on a paid session.
	ErrSessionClosed = errors.New("session is closed")

	// ErrAlreadyClaimed is the exclusive-policy rejection: another member
	// holds the claim.
	ErrAlreadyClaimed = errors.New("item already claimed by another member")

	// ErrInvalidTransition rejects lifecycle moves that skip or reverse.
	ErrInvalidTransition = errors.New("invalid lifecycle transition")

	// ErrNoItems rejects opening a session with an empty item list.
	ErrNoItems = errors.New("session has no items")
)
