package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tabshare/tabshare/internal/models"
	"github.com/tabshare/tabshare/internal/realtime"
	"github.com/tabshare/tabshare/internal/storage"
)

// ClaimPolicy selects how the arbitrator treats competing claims on one
// item. The policy is fixed per deployment, not per session.
type ClaimPolicy string

const (
	// PolicyExclusive lets at most one member claim an item: the first
	// claim wins and later claims from other members are rejected.
	PolicyExclusive ClaimPolicy = "exclusive"

	// PolicyShared lets any number of members claim an item; its cost
	// divides evenly across the claimant set.
	PolicyShared ClaimPolicy = "shared"
)

// ParseClaimPolicy validates a policy string, defaulting to exclusive.
func ParseClaimPolicy(s string) (ClaimPolicy, error) {
	switch ClaimPolicy(s) {
	case "", PolicyExclusive:
		return PolicyExclusive, nil
	case PolicyShared:
		return PolicyShared, nil
	}
	return "", fmt.Errorf("unknown claim policy %q", s)
}

var claimConflicts = promauto.NewCounter(prometheus.CounterOpts{
	Name: "tabshare_claim_conflicts_total",
	Help: "Claims rejected because another member already held the item.",
})

// ClaimService is the claim arbitrator. All claim writes flow through it;
// the race between two devices claiming one item is settled by a single
// conditional insert in the store, so the outcome always equals some
// sequential ordering of the requests.
type ClaimService struct {
	store  storage.Store
	hub    *realtime.Hub
	policy ClaimPolicy
}

// NewClaimService creates a ClaimService enforcing the given policy.
func NewClaimService(store storage.Store, hub *realtime.Hub, policy ClaimPolicy) *ClaimService {
	return &ClaimService{store: store, hub: hub, policy: policy}
}

// Policy returns the arbitration policy in force.
func (s *ClaimService) Policy() ClaimPolicy {
	return s.policy
}

// Claim records that a member splits an item. Re-claiming an item the
// member already holds returns the existing claim unchanged.
func (s *ClaimService) Claim(ctx context.Context, sessionID, itemID, memberID string) (*models.Claim, error) {
	if err := s.checkPreconditions(ctx, sessionID, itemID, memberID); err != nil {
		return nil, err
	}

	claim, err := s.store.CreateClaim(ctx, itemID, memberID, s.policy == PolicyExclusive)
	if err != nil {
		if storage.IsConflict(err) {
			claimConflicts.Inc()
			slog.Info("Claim lost race", "session_id", sessionID, "item_id", itemID, "member_id", memberID)
			return nil, ErrAlreadyClaimed
		}
		slog.Error("Claim failed", "session_id", sessionID, "item_id", itemID, "error", err)
		return nil, err
	}

	slog.Info("Item claimed", "session_id", sessionID, "item_id", itemID, "member_id", memberID)
	if err := s.publishClaimants(ctx, sessionID, itemID); err != nil {
		return nil, err
	}
	return claim, nil
}

// Unclaim releases a member's claim on an item. Unclaiming an item the
// member never claimed is a no-op, not an error.
func (s *ClaimService) Unclaim(ctx context.Context, sessionID, itemID, memberID string) error {
	if err := s.checkPreconditions(ctx, sessionID, itemID, memberID); err != nil {
		return err
	}

	if err := s.store.DeleteClaim(ctx, itemID, memberID); err != nil {
		slog.Error("Unclaim failed", "session_id", sessionID, "item_id", itemID, "error", err)
		return err
	}

	slog.Info("Item unclaimed", "session_id", sessionID, "item_id", itemID, "member_id", memberID)
	return s.publishClaimants(ctx, sessionID, itemID)
}

// checkPreconditions verifies the session is open and that both the item
// and the member belong to it.
func (s *ClaimService) checkPreconditions(ctx context.Context, sessionID, itemID, memberID string) error {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	switch session.Status {
	case models.StatusOpen:
	case models.StatusPaid:
		return ErrSessionClosed
	default:
		return ErrSessionNotOpen
	}

	if _, err := s.store.GetItem(ctx, sessionID, itemID); err != nil {
		return err
	}
	if _, err := s.store.GetMember(ctx, sessionID, memberID); err != nil {
		return err
	}
	return nil
}

// publishClaimants broadcasts the item's full post-commit claimant list
// so receivers reconcile by replacement, never by merging deltas.
func (s *ClaimService) publishClaimants(ctx context.Context, sessionID, itemID string) error {
	claimants, err := s.store.ListClaimants(ctx, itemID)
	if err != nil {
		return err
	}
	s.hub.Publish(realtime.Event{
		Type:      realtime.EventClaim,
		SessionID: sessionID,
		Payload:   realtime.ClaimPayload{ItemID: itemID, Claimants: claimants},
	})
	return nil
}
