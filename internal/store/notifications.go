package store

import (
	"context"
	"fmt"
	"time"

	"github.com/marlowe/talenttrack/internal/apperr"
	"github.com/marlowe/talenttrack/internal/models"
)

// InsertNotifications creates one unread notification per recipient for a
// note, in one transaction. A nil or empty recipient list is a no-op.
func (s *Store) InsertNotifications(ctx context.Context, noteID, candidateID int64, recipients []int64) error {
	if len(recipients) == 0 {
		return nil
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	stmt, err := tx.Prepare(
		`INSERT INTO notifications (user_id, note_id, candidate_id, is_read, created_at) VALUES (?, ?, ?, FALSE, ?)`)
	if err != nil {
		return fmt.Errorf("store: prepare notification insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, userID := range recipients {
		if _, err := stmt.Exec(userID, noteID, candidateID, now); err != nil {
			return fmt.Errorf("store: insert notification: %w", err)
		}
	}
	return tx.Commit()
}

// ListNotificationsForUser returns a user's full notification history joined
// with candidate name, note message, and tagging author, newest first.
func (s *Store) ListNotificationsForUser(ctx context.Context, userID int64) ([]models.NotificationDetail, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT n.id, n.user_id, n.note_id, n.candidate_id, n.is_read, n.created_at,
		       c.name, nt.message, nt.user_id, u.name, nt.created_at
		FROM notifications n
		JOIN candidates c ON n.candidate_id = c.id
		JOIN notes nt ON n.note_id = nt.id
		JOIN users u ON nt.user_id = u.id
		WHERE n.user_id = ?
		ORDER BY n.created_at DESC, n.id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("store: list notifications: %w", err)
	}
	defer rows.Close()

	var out []models.NotificationDetail
	for rows.Next() {
		var d models.NotificationDetail
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.NoteID, &d.CandidateID, &d.IsRead, &d.CreatedAt,
			&d.CandidateName, &d.NoteMessage, &d.TaggedByID, &d.TaggedByName, &d.NoteCreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// MarkNotificationRead transitions one notification to read, scoped to its
// owner. Marking an already-read notification again succeeds silently;
// apperr.ErrNotFound means no such notification exists for this owner.
func (s *Store) MarkNotificationRead(ctx context.Context, id, userID int64) error {
	res, err := s.conn.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("store: mark read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: mark read rows: %w", err)
	}
	if affected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// MarkAllNotificationsRead transitions every notification owned by userID to
// read. Zero affected rows is success.
func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID int64) error {
	if _, err := s.conn.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("store: mark all read: %w", err)
	}
	return nil
}
