package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tabshare/tabshare/internal/models"
	"github.com/tabshare/tabshare/internal/storage"
)

// UpsertMember inserts the member unless the (session_id, fingerprint)
// constraint already holds a row, in which case that row is returned
// untouched. The insert and the constraint check are one statement, so
// two devices joining with the same fingerprint at the same instant
// cannot both create a member.
func (s *SQLiteStore) UpsertMember(ctx context.Context, member *models.Member) (*models.Member, bool, error) {
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	if member.CreatedAt == 0 {
		member.CreatedAt = time.Now().Unix()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO members (id, session_id, fingerprint, name, avatar_seed, is_paid, created_at)
		 VALUES (?, ?, ?, ?, ?, 0, ?)
		 ON CONFLICT (session_id, fingerprint) DO NOTHING`,
		member.ID, member.SessionID, member.Fingerprint, member.Name, member.AvatarSeed, member.CreatedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert member: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	// Read back through the unique key: on conflict this returns the
	// pre-existing member, including its original name and IsPaid flag.
	existing := &models.Member{}
	err = s.db.QueryRowContext(ctx,
		"SELECT id, session_id, fingerprint, name, avatar_seed, is_paid, created_at FROM members WHERE session_id = ? AND fingerprint = ?",
		member.SessionID, member.Fingerprint,
	).Scan(&existing.ID, &existing.SessionID, &existing.Fingerprint, &existing.Name, &existing.AvatarSeed, &existing.IsPaid, &existing.CreatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read back member: %w", err)
	}

	return existing, n == 1, nil
}

// GetMember retrieves a member by id within a session.
func (s *SQLiteStore) GetMember(ctx context.Context, sessionID, memberID string) (*models.Member, error) {
	member := &models.Member{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, session_id, fingerprint, name, avatar_seed, is_paid, created_at FROM members WHERE id = ? AND session_id = ?",
		memberID, sessionID,
	).Scan(&member.ID, &member.SessionID, &member.Fingerprint, &member.Name, &member.AvatarSeed, &member.IsPaid, &member.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("member %s: %w", memberID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return member, nil
}

// SetMemberPaid flips a member's settled-up flag.
func (s *SQLiteStore) SetMemberPaid(ctx context.Context, sessionID, memberID string, paid bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE members SET is_paid = ? WHERE id = ? AND session_id = ?",
		paid, memberID, sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("member %s: %w", memberID, storage.ErrNotFound)
	}
	return nil
}

// listMembers loads all members of a session in join order.
func (s *SQLiteStore) listMembers(ctx context.Context, sessionID string) ([]models.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, session_id, fingerprint, name, avatar_seed, is_paid, created_at FROM members WHERE session_id = ? ORDER BY created_at, id",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Fingerprint, &m.Name, &m.AvatarSeed, &m.IsPaid, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}
