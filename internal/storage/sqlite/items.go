package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/tabshare/tabshare/internal/models"
	"github.com/tabshare/tabshare/internal/storage"
)

// AddItem appends one item to a session.
func (s *SQLiteStore) AddItem(ctx context.Context, item *models.Item) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO items (id, session_id, name, price_cents, quantity) VALUES (?, ?, ?, ?, ?)",
		item.ID, item.SessionID, item.Name, cents(item.Price), item.Quantity,
	)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return nil
}

// UpdateItem rewrites an item's name, price, and quantity.
func (s *SQLiteStore) UpdateItem(ctx context.Context, item *models.Item) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE items SET name = ?, price_cents = ?, quantity = ? WHERE id = ? AND session_id = ?",
		item.Name, cents(item.Price), item.Quantity, item.ID, item.SessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("item %s: %w", item.ID, storage.ErrNotFound)
	}
	return nil
}

// RemoveItem deletes an item; claims cascade with it.
func (s *SQLiteStore) RemoveItem(ctx context.Context, sessionID, itemID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM items WHERE id = ? AND session_id = ?",
		itemID, sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("item %s: %w", itemID, storage.ErrNotFound)
	}
	return nil
}

// GetItem retrieves one item with its claimant list.
func (s *SQLiteStore) GetItem(ctx context.Context, sessionID, itemID string) (*models.Item, error) {
	item := &models.Item{}
	var priceCents int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, session_id, name, price_cents, quantity FROM items WHERE id = ? AND session_id = ?",
		itemID, sessionID,
	).Scan(&item.ID, &item.SessionID, &item.Name, &priceCents, &item.Quantity)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("item %s: %w", itemID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	item.Price = amount(priceCents)

	claimants, err := s.ListClaimants(ctx, itemID)
	if err != nil {
		return nil, err
	}
	item.Claimants = claimants

	return item, nil
}

// listItems loads all items of a session with their claimant lists.
func (s *SQLiteStore) listItems(ctx context.Context, sessionID string) ([]models.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, session_id, name, price_cents, quantity FROM items WHERE session_id = ? ORDER BY rowid",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var item models.Item
		var priceCents int64
		if err := rows.Scan(&item.ID, &item.SessionID, &item.Name, &priceCents, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item.Price = amount(priceCents)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	for i := range items {
		claimants, err := s.ListClaimants(ctx, items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].Claimants = claimants
	}

	return items, nil
}
