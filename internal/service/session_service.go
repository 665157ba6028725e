package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/tabshare/tabshare/internal/calculator"
	"github.com/tabshare/tabshare/internal/models"
	"github.com/tabshare/tabshare/internal/realtime"
	"github.com/tabshare/tabshare/internal/storage"
)

// SessionService owns session creation from ingestion output, the draft
// item review surface, and the lifecycle state machine.
type SessionService struct {
	store storage.Store
	hub   *realtime.Hub
}

// NewSessionService creates a SessionService with the given storage backend and hub.
func NewSessionService(store storage.Store, hub *realtime.Hub) *SessionService {
	return &SessionService{store: store, hub: hub}
}

// ItemInput is one parsed receipt line from the ingestion pipeline.
type ItemInput struct {
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// CreateInput is the validated handoff from the ingestion pipeline.
type CreateInput struct {
	Title    string
	Currency string
	Tax      decimal.Decimal
	Tip      decimal.Decimal
	Items    []ItemInput
}

// Create materializes a draft session from ingestion output.
func (s *SessionService) Create(ctx context.Context, in CreateInput) (*models.Session, error) {
	session := &models.Session{
		Title:    in.Title,
		Currency: in.Currency,
		Tax:      in.Tax,
		Tip:      in.Tip,
		Status:   models.StatusDraft,
	}
	for _, item := range in.Items {
		session.Items = append(session.Items, models.Item{
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}

	if err := s.store.CreateSession(ctx, session); err != nil {
		slog.Error("Create session failed", "error", err)
		return nil, err
	}

	slog.Info("Session created", "session_id", session.ID, "items", len(session.Items), "currency", session.Currency)
	return session, nil
}

// Get loads a session with its full graph and the settlement computed
// from the current claim set. The settlement here is a convenience view;
// devices run the same pure calculation locally on every mutation.
func (s *SessionService) Get(ctx context.Context, sessionID string) (*models.Session, map[string]*calculator.Settlement, calculator.Summary, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, calculator.Summary{}, err
	}

	items := make([]calculator.Item, len(session.Items))
	for i, item := range session.Items {
		items[i] = calculator.Item{
			ID:        item.ID,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Claimants: item.Claimants,
		}
	}

	settlements, summary, err := calculator.Settle(items, session.Tax, session.Tip)
	if err != nil {
		slog.Error("Settle failed", "session_id", sessionID, "error", err)
		return nil, nil, calculator.Summary{}, err
	}

	return session, settlements, summary, nil
}

// Transition moves the session one step along draft -> open -> paid.
// Transitions never skip a state and never reverse; the store performs
// the move as a compare-and-set so racing requests get one winner.
func (s *SessionService) Transition(ctx context.Context, sessionID string, to models.Status) error {
	var from models.Status
	switch to {
	case models.StatusOpen:
		from = models.StatusDraft
	case models.StatusPaid:
		from = models.StatusOpen
	default:
		return fmt.Errorf("cannot transition to %q: %w", to, ErrInvalidTransition)
	}

	if to == models.StatusOpen {
		session, err := s.store.GetSession(ctx, sessionID)
		if err != nil {
			return err
		}
		if len(session.Items) == 0 {
			return ErrNoItems
		}
	}

	if err := s.store.TransitionSession(ctx, sessionID, from, to); err != nil {
		if storage.IsConflict(err) {
			return fmt.Errorf("session is not %s: %w", from, ErrInvalidTransition)
		}
		return err
	}

	slog.Info("Session transitioned", "session_id", sessionID, "from", from, "to", to)
	s.hub.Publish(realtime.Event{
		Type:      realtime.EventLifecycle,
		SessionID: sessionID,
		Payload:   realtime.LifecyclePayload{Status: string(to)},
	})
	return nil
}

// AddItem appends an item during draft review.
func (s *SessionService) AddItem(ctx context.Context, sessionID string, in ItemInput) (*models.Item, error) {
	if err := s.requireDraft(ctx, sessionID); err != nil {
		return nil, err
	}

	item := &models.Item{
		SessionID: sessionID,
		Name:      in.Name,
		Price:     in.Price,
		Quantity:  in.Quantity,
	}
	if err := s.store.AddItem(ctx, item); err != nil {
		slog.Error("AddItem failed", "session_id", sessionID, "error", err)
		return nil, err
	}

	s.publishItem(sessionID, item, false)
	return item, nil
}

// UpdateItem re-prices or renames an item during draft review.
func (s *SessionService) UpdateItem(ctx context.Context, sessionID, itemID string, in ItemInput) (*models.Item, error) {
	if err := s.requireDraft(ctx, sessionID); err != nil {
		return nil, err
	}

	item := &models.Item{
		ID:        itemID,
		SessionID: sessionID,
		Name:      in.Name,
		Price:     in.Price,
		Quantity:  in.Quantity,
	}
	if err := s.store.UpdateItem(ctx, item); err != nil {
		return nil, err
	}

	s.publishItem(sessionID, item, false)
	return item, nil
}

// RemoveItem deletes an item during draft review.
func (s *SessionService) RemoveItem(ctx context.Context, sessionID, itemID string) error {
	if err := s.requireDraft(ctx, sessionID); err != nil {
		return err
	}

	if err := s.store.RemoveItem(ctx, sessionID, itemID); err != nil {
		return err
	}

	s.publishItem(sessionID, &models.Item{ID: itemID}, true)
	return nil
}

func (s *SessionService) requireDraft(ctx context.Context, sessionID string) error {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Status != models.StatusDraft {
		return ErrSessionNotDraft
	}
	return nil
}

func (s *SessionService) publishItem(sessionID string, item *models.Item, removed bool) {
	payload := realtime.ItemPayload{ItemID: item.ID, Removed: removed}
	if !removed {
		payload.Name = item.Name
		payload.Price = item.Price.StringFixed(2)
		payload.Quantity = item.Quantity
	}
	s.hub.Publish(realtime.Event{
		Type:      realtime.EventItem,
		SessionID: sessionID,
		Payload:   payload,
	})
}
