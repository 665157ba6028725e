// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/tabshare/tabshare/internal/models"
)

var (
	// ErrNotFound is returned when a referenced session, item, or member
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a write loses a uniqueness race: a
	// claim on an item already claimed by someone else (exclusive policy)
	// or a lifecycle compare-and-set that observed a different state.
	ErrConflict = errors.New("conflict")
)

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConflict reports whether err wraps ErrConflict.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// Store defines the interface for session storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
//
// Every uniqueness guarantee (one member per fingerprint, one claim per
// (item, member), one winner per exclusive claim race) is enforced by the
// store in a single atomic write, never by a read-then-write in callers.
type Store interface {
	// CreateSession persists a new draft session with its items.
	// Missing IDs and CreatedAt are populated by the store.
	CreateSession(ctx context.Context, session *models.Session) error

	// GetSession retrieves a session with its items (including claimant
	// lists) and members. Returns ErrNotFound if the id is unknown.
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)

	// TransitionSession atomically moves a session from one status to
	// another. Returns ErrConflict if the session was not in `from`,
	// ErrNotFound if the session does not exist.
	TransitionSession(ctx context.Context, sessionID string, from, to models.Status) error

	// AddItem appends an item to a session.
	AddItem(ctx context.Context, item *models.Item) error

	// UpdateItem rewrites an item's name, price, and quantity.
	// Returns ErrNotFound if the item is not in the session.
	UpdateItem(ctx context.Context, item *models.Item) error

	// RemoveItem deletes an item and its claims.
	// Returns ErrNotFound if the item is not in the session.
	RemoveItem(ctx context.Context, sessionID, itemID string) error

	// GetItem retrieves one item with its claimant list.
	GetItem(ctx context.Context, sessionID, itemID string) (*models.Item, error)

	// UpsertMember creates the member unless one already exists for
	// (SessionID, Fingerprint), in which case the existing row is
	// returned untouched. The returned bool is true when a new member
	// was created.
	UpsertMember(ctx context.Context, member *models.Member) (*models.Member, bool, error)

	// GetMember retrieves a member by id within a session.
	GetMember(ctx context.Context, sessionID, memberID string) (*models.Member, error)

	// SetMemberPaid flips a member's settled-up flag.
	SetMemberPaid(ctx context.Context, sessionID, memberID string, paid bool) error

	// CreateClaim inserts a claim for (itemID, memberID). When exclusive
	// is true the insert only succeeds if the item has no claim from any
	// other member; losing that race returns ErrConflict. A claim that
	// already exists for the same member is returned as-is in either
	// mode (idempotent re-claim).
	CreateClaim(ctx context.Context, itemID, memberID string, exclusive bool) (*models.Claim, error)

	// DeleteClaim removes a claim. Deleting a claim that does not exist
	// is a no-op, not an error.
	DeleteClaim(ctx context.Context, itemID, memberID string) error

	// ListClaimants returns the member IDs claiming an item, ordered by
	// claim time then member id, for broadcast payloads.
	ListClaimants(ctx context.Context, itemID string) ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}
