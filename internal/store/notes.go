package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/marlowe/talenttrack/internal/models"
)

// InsertNote persists a note with its resolved tag snapshot. Tags are stored
// as a JSON array of user ids; nil is stored as [].
func (s *Store) InsertNote(ctx context.Context, candidateID, authorID int64, message string, tags []int64) (models.Note, error) {
	if tags == nil {
		tags = []int64{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return models.Note{}, fmt.Errorf("store: marshal tags: %w", err)
	}

	now := time.Now().UTC()
	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO notes (candidate_id, user_id, message, tags, created_at) VALUES (?, ?, ?, ?, ?)`,
		candidateID, authorID, message, string(tagsJSON), now)
	if err != nil {
		return models.Note{}, fmt.Errorf("store: insert note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Note{}, fmt.Errorf("store: note id: %w", err)
	}
	return models.Note{
		ID:          id,
		CandidateID: candidateID,
		AuthorID:    authorID,
		Message:     message,
		Tags:        tags,
		CreatedAt:   now,
	}, nil
}

// ListNotes returns a candidate's notes joined with author names, oldest
// first (thread order).
func (s *Store) ListNotes(ctx context.Context, candidateID int64) ([]models.Note, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT n.id, n.candidate_id, n.user_id, u.name, n.message, n.tags, n.created_at
		FROM notes n
		JOIN users u ON n.user_id = u.id
		WHERE n.candidate_id = ?
		ORDER BY n.created_at ASC, n.id ASC
	`, candidateID)
	if err != nil {
		return nil, fmt.Errorf("store: list notes: %w", err)
	}
	defer rows.Close()

	var out []models.Note
	for rows.Next() {
		var n models.Note
		var tagsJSON string
		if err := rows.Scan(&n.ID, &n.CandidateID, &n.AuthorID, &n.AuthorName, &n.Message, &tagsJSON, &n.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(tagsJSON), &n.Tags); err != nil {
			return nil, fmt.Errorf("store: unmarshal tags: %w", err)
		}
		if n.Tags == nil {
			n.Tags = []int64{}
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
