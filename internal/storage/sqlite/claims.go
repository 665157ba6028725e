package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tabshare/tabshare/internal/models"
	"github.com/tabshare/tabshare/internal/storage"
)

// CreateClaim inserts a claim as a single conditional statement.
//
// Exclusive mode: the INSERT..SELECT only produces a row when the item has
// no claim at all, so of two concurrent claims exactly one inserts and the
// other falls through to the read-back below. There is no window between
// checking and writing; the condition is evaluated inside the statement.
//
// Shared mode: the (item_id, member_id) primary key alone guards the
// insert, and a duplicate from the same member degrades to a no-op.
func (s *SQLiteStore) CreateClaim(ctx context.Context, itemID, memberID string, exclusive bool) (*models.Claim, error) {
	now := time.Now().Unix()

	var res sql.Result
	var err error
	if exclusive {
		res, err = s.db.ExecContext(ctx,
			`INSERT INTO claims (item_id, member_id, created_at)
			 SELECT ?, ?, ?
			 WHERE NOT EXISTS (SELECT 1 FROM claims WHERE item_id = ?)`,
			itemID, memberID, now, itemID,
		)
	} else {
		res, err = s.db.ExecContext(ctx,
			`INSERT INTO claims (item_id, member_id, created_at)
			 VALUES (?, ?, ?)
			 ON CONFLICT (item_id, member_id) DO NOTHING`,
			itemID, memberID, now,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert claim: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 1 {
		return &models.Claim{ItemID: itemID, MemberID: memberID, CreatedAt: now}, nil
	}

	// Nothing inserted: either this member already holds the claim
	// (idempotent re-claim) or, in exclusive mode, someone else does.
	claim := &models.Claim{}
	err = s.db.QueryRowContext(ctx,
		"SELECT item_id, member_id, created_at FROM claims WHERE item_id = ? AND member_id = ?",
		itemID, memberID,
	).Scan(&claim.ItemID, &claim.MemberID, &claim.CreatedAt)
	if err == nil {
		return claim, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to read back claim: %w", err)
	}
	return nil, fmt.Errorf("item %s already claimed: %w", itemID, storage.ErrConflict)
}

// DeleteClaim removes a claim; removing an absent claim is a no-op.
func (s *SQLiteStore) DeleteClaim(ctx context.Context, itemID, memberID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM claims WHERE item_id = ? AND member_id = ?",
		itemID, memberID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete claim: %w", err)
	}
	return nil
}

// ListClaimants returns the member IDs claiming an item in claim order.
func (s *SQLiteStore) ListClaimants(ctx context.Context, itemID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT member_id FROM claims WHERE item_id = ? ORDER BY created_at, member_id",
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get claimants: %w", err)
	}
	defer rows.Close()

	var claimants []string
	for rows.Next() {
		var memberID string
		if err := rows.Scan(&memberID); err != nil {
			return nil, fmt.Errorf("failed to scan claimant: %w", err)
		}
		claimants = append(claimants, memberID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate claimants: %w", err)
	}
	return claimants, nil
}
