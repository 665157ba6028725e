package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/tabshare/tabshare/internal/models"
	"github.com/tabshare/tabshare/internal/realtime"
	"github.com/tabshare/tabshare/internal/storage"
)

// MemberService is the identity binder: it maps a device's stable
// fingerprint to exactly one member within a session.
type MemberService struct {
	store storage.Store
	hub   *realtime.Hub
}

// NewMemberService creates a MemberService with the given storage backend and hub.
func NewMemberService(store storage.Store, hub *realtime.Hub) *MemberService {
	return &MemberService{store: store, hub: hub}
}

// Join binds a fingerprint to a member, creating one on first contact.
// Repeated joins (page reloads, reopened tabs) return the existing member
// untouched: same id, same name, IsPaid preserved. Late joins to a paid
// session are rejected so nobody can retroactively owe money.
func (s *MemberService) Join(ctx context.Context, sessionID, fingerprint, name string) (*models.Member, bool, error) {
	if fingerprint == "" {
		return nil, false, fmt.Errorf("fingerprint is required")
	}

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}
	if session.Status == models.StatusPaid {
		return nil, false, ErrSessionClosed
	}

	member, created, err := s.store.UpsertMember(ctx, &models.Member{
		SessionID:   sessionID,
		Fingerprint: fingerprint,
		Name:        name,
		AvatarSeed:  avatarSeed(fingerprint),
	})
	if err != nil {
		slog.Error("Join failed", "session_id", sessionID, "error", err)
		return nil, false, err
	}

	if created {
		slog.Info("Member joined", "session_id", sessionID, "member_id", member.ID)
		s.publishMember(member)
	}
	return member, created, nil
}

// SetPaid records that a member has settled up. This is the only mutation
// a paid session still accepts; it is meaningless while the session is in
// draft, before anyone has joined.
func (s *MemberService) SetPaid(ctx context.Context, sessionID, memberID string, paid bool) (*models.Member, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == models.StatusDraft {
		return nil, ErrSessionNotOpen
	}

	if err := s.store.SetMemberPaid(ctx, sessionID, memberID, paid); err != nil {
		return nil, err
	}

	member, err := s.store.GetMember(ctx, sessionID, memberID)
	if err != nil {
		return nil, err
	}

	slog.Info("Member paid flag set", "session_id", sessionID, "member_id", memberID, "paid", paid)
	s.publishMember(member)
	return member, nil
}

func (s *MemberService) publishMember(member *models.Member) {
	s.hub.Publish(realtime.Event{
		Type:      realtime.EventMember,
		SessionID: member.SessionID,
		Payload: realtime.MemberPayload{
			MemberID:   member.ID,
			Name:       member.Name,
			AvatarSeed: member.AvatarSeed,
			IsPaid:     member.IsPaid,
		},
	})
}

// avatarSeed derives a stable avatar input from the fingerprint so the
// same device renders the same avatar on every visit. The fingerprint
// itself never leaves the server.
func avatarSeed(fingerprint string) string {
	sum := sha256.Sum256([]byte(fingerprint))
	return hex.EncodeToString(sum[:8])
}
