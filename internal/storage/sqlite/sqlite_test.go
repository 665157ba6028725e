package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tabshare/tabshare/internal/models"
	"github.com/tabshare/tabshare/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func createTestSession(t *testing.T, store *SQLiteStore, status models.Status) *models.Session {
	t.Helper()
	ctx := context.Background()

	session := &models.Session{
		Title:    "Dinner",
		Currency: "USD",
		Tax:      decimal.RequireFromString("1.60"),
		Tip:      decimal.RequireFromString("3.00"),
		Items: []models.Item{
			{Name: "Burger", Price: decimal.RequireFromString("12.00"), Quantity: 1},
			{Name: "Fries", Price: decimal.RequireFromString("4.00"), Quantity: 2},
		},
	}
	if err := store.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	if status == models.StatusOpen || status == models.StatusPaid {
		if err := store.TransitionSession(ctx, session.ID, models.StatusDraft, models.StatusOpen); err != nil {
			t.Fatalf("transition to open failed: %v", err)
		}
	}
	if status == models.StatusPaid {
		if err := store.TransitionSession(ctx, session.ID, models.StatusOpen, models.StatusPaid); err != nil {
			t.Fatalf("transition to paid failed: %v", err)
		}
	}
	session.Status = status
	return session
}

func joinTestMember(t *testing.T, store *SQLiteStore, sessionID, fingerprint, name string) *models.Member {
	t.Helper()
	member, _, err := store.UpsertMember(context.Background(), &models.Member{
		SessionID:   sessionID,
		Fingerprint: fingerprint,
		Name:        name,
		AvatarSeed:  "seed-" + fingerprint,
	})
	if err != nil {
		t.Fatalf("UpsertMember failed: %v", err)
	}
	return member
}

func TestSessionRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateSession generates IDs and defaults to draft", func(t *testing.T) {
		session := createTestSession(t, store, models.StatusDraft)
		if session.ID == "" {
			t.Error("Expected session ID to be generated")
		}
		if session.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
		for _, item := range session.Items {
			if item.ID == "" {
				t.Error("Expected item ID to be generated")
			}
		}
	})

	t.Run("GetSession retrieves the full graph with exact amounts", func(t *testing.T) {
		session := createTestSession(t, store, models.StatusDraft)

		got, err := store.GetSession(ctx, session.ID)
		if err != nil {
			t.Fatalf("GetSession failed: %v", err)
		}
		if got.Status != models.StatusDraft {
			t.Errorf("status = %s, want draft", got.Status)
		}
		if !got.Tax.Equal(decimal.RequireFromString("1.60")) {
			t.Errorf("tax = %s, want 1.60", got.Tax)
		}
		if len(got.Items) != 2 {
			t.Fatalf("items = %d, want 2", len(got.Items))
		}
		if !got.Items[0].Price.Equal(decimal.RequireFromString("12.00")) {
			t.Errorf("item price = %s, want 12.00", got.Items[0].Price)
		}
	})

	t.Run("GetSession returns ErrNotFound for unknown id", func(t *testing.T) {
		_, err := store.GetSession(ctx, "nonexistent-id")
		if !storage.IsNotFound(err) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestTransitionSession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("compare-and-set moves exactly one step", func(t *testing.T) {
		session := createTestSession(t, store, models.StatusDraft)

		if err := store.TransitionSession(ctx, session.ID, models.StatusDraft, models.StatusOpen); err != nil {
			t.Fatalf("draft->open failed: %v", err)
		}

		// Repeating the same transition loses the compare-and-set.
		err := store.TransitionSession(ctx, session.ID, models.StatusDraft, models.StatusOpen)
		if !storage.IsConflict(err) {
			t.Errorf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("unknown session yields ErrNotFound", func(t *testing.T) {
		err := store.TransitionSession(ctx, "nope", models.StatusDraft, models.StatusOpen)
		if !storage.IsNotFound(err) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestUpsertMember(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	session := createTestSession(t, store, models.StatusOpen)

	t.Run("join twice with one fingerprint returns one member", func(t *testing.T) {
		first := joinTestMember(t, store, session.ID, "device-1", "Alice")
		second := joinTestMember(t, store, session.ID, "device-1", "Alice (reload)")

		if first.ID != second.ID {
			t.Errorf("member ids differ: %s vs %s", first.ID, second.ID)
		}
		if second.Name != "Alice" {
			t.Errorf("name = %q, want original %q", second.Name, "Alice")
		}

		got, err := store.GetSession(ctx, session.ID)
		if err != nil {
			t.Fatalf("GetSession failed: %v", err)
		}
		if len(got.Members) != 1 {
			t.Errorf("members = %d, want 1", len(got.Members))
		}
	})

	t.Run("repeat join preserves isPaid", func(t *testing.T) {
		member := joinTestMember(t, store, session.ID, "device-2", "Bob")
		if err := store.SetMemberPaid(ctx, session.ID, member.ID, true); err != nil {
			t.Fatalf("SetMemberPaid failed: %v", err)
		}

		again := joinTestMember(t, store, session.ID, "device-2", "Bob")
		if !again.IsPaid {
			t.Error("expected isPaid to survive a repeated join")
		}
	})

	t.Run("created flag reports only the first join", func(t *testing.T) {
		_, created, err := store.UpsertMember(ctx, &models.Member{
			SessionID: session.ID, Fingerprint: "device-3", Name: "Cara", AvatarSeed: "s",
		})
		if err != nil {
			t.Fatalf("UpsertMember failed: %v", err)
		}
		if !created {
			t.Error("first join should report created")
		}

		_, created, err = store.UpsertMember(ctx, &models.Member{
			SessionID: session.ID, Fingerprint: "device-3", Name: "Cara", AvatarSeed: "s",
		})
		if err != nil {
			t.Fatalf("UpsertMember failed: %v", err)
		}
		if created {
			t.Error("second join should not report created")
		}
	})
}

func TestCreateClaim(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("exclusive mode admits one claimant", func(t *testing.T) {
		session := createTestSession(t, store, models.StatusOpen)
		itemID := session.Items[0].ID
		alice := joinTestMember(t, store, session.ID, "d1", "Alice")
		bob := joinTestMember(t, store, session.ID, "d2", "Bob")

		if _, err := store.CreateClaim(ctx, itemID, alice.ID, true); err != nil {
			t.Fatalf("first claim failed: %v", err)
		}

		_, err := store.CreateClaim(ctx, itemID, bob.ID, true)
		if !storage.IsConflict(err) {
			t.Errorf("expected ErrConflict for second claimant, got %v", err)
		}

		// Re-claim by the holder is idempotent.
		claim, err := store.CreateClaim(ctx, itemID, alice.ID, true)
		if err != nil {
			t.Fatalf("re-claim failed: %v", err)
		}
		if claim.MemberID != alice.ID {
			t.Errorf("re-claim member = %s, want %s", claim.MemberID, alice.ID)
		}

		claimants, err := store.ListClaimants(ctx, itemID)
		if err != nil {
			t.Fatalf("ListClaimants failed: %v", err)
		}
		if len(claimants) != 1 || claimants[0] != alice.ID {
			t.Errorf("claimants = %v, want [%s]", claimants, alice.ID)
		}
	})

	t.Run("shared mode admits many claimants once each", func(t *testing.T) {
		session := createTestSession(t, store, models.StatusOpen)
		itemID := session.Items[0].ID
		alice := joinTestMember(t, store, session.ID, "d1", "Alice")
		bob := joinTestMember(t, store, session.ID, "d2", "Bob")

		for _, memberID := range []string{alice.ID, bob.ID, alice.ID} {
			if _, err := store.CreateClaim(ctx, itemID, memberID, false); err != nil {
				t.Fatalf("shared claim failed: %v", err)
			}
		}

		claimants, err := store.ListClaimants(ctx, itemID)
		if err != nil {
			t.Fatalf("ListClaimants failed: %v", err)
		}
		if len(claimants) != 2 {
			t.Errorf("claimants = %v, want exactly 2 distinct", claimants)
		}
	})

	t.Run("concurrent exclusive claims resolve to one winner", func(t *testing.T) {
		session := createTestSession(t, store, models.StatusOpen)
		itemID := session.Items[1].ID
		alice := joinTestMember(t, store, session.ID, "d1", "Alice")
		bob := joinTestMember(t, store, session.ID, "d2", "Bob")

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i, memberID := range []string{alice.ID, bob.ID} {
			wg.Add(1)
			go func(i int, memberID string) {
				defer wg.Done()
				_, errs[i] = store.CreateClaim(ctx, itemID, memberID, true)
			}(i, memberID)
		}
		wg.Wait()

		var wins, conflicts int
		for _, err := range errs {
			switch {
			case err == nil:
				wins++
			case storage.IsConflict(err):
				conflicts++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if wins != 1 || conflicts != 1 {
			t.Errorf("wins=%d conflicts=%d, want exactly one of each", wins, conflicts)
		}

		claimants, err := store.ListClaimants(ctx, itemID)
		if err != nil {
			t.Fatalf("ListClaimants failed: %v", err)
		}
		if len(claimants) != 1 {
			t.Errorf("claimants = %v, want exactly 1", claimants)
		}
	})

	t.Run("DeleteClaim is idempotent", func(t *testing.T) {
		session := createTestSession(t, store, models.StatusOpen)
		itemID := session.Items[0].ID
		alice := joinTestMember(t, store, session.ID, "d1", "Alice")

		if _, err := store.CreateClaim(ctx, itemID, alice.ID, true); err != nil {
			t.Fatalf("claim failed: %v", err)
		}
		if err := store.DeleteClaim(ctx, itemID, alice.ID); err != nil {
			t.Fatalf("first delete failed: %v", err)
		}
		if err := store.DeleteClaim(ctx, itemID, alice.ID); err != nil {
			t.Fatalf("second delete should be a no-op: %v", err)
		}
	})
}

func TestItemCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	session := createTestSession(t, store, models.StatusDraft)

	item := &models.Item{
		SessionID: session.ID,
		Name:      "Shake",
		Price:     decimal.RequireFromString("5.25"),
		Quantity:  1,
	}
	if err := store.AddItem(ctx, item); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	item.Price = decimal.RequireFromString("5.75")
	if err := store.UpdateItem(ctx, item); err != nil {
		t.Fatalf("UpdateItem failed: %v", err)
	}

	got, err := store.GetItem(ctx, session.ID, item.ID)
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if !got.Price.Equal(decimal.RequireFromString("5.75")) {
		t.Errorf("price = %s, want 5.75", got.Price)
	}

	if err := store.RemoveItem(ctx, session.ID, item.ID); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	if err := store.RemoveItem(ctx, session.ID, item.ID); !storage.IsNotFound(err) {
		t.Errorf("expected ErrNotFound on double remove, got %v", err)
	}
}
