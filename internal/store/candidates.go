package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/marlowe/talenttrack/internal/apperr"
	"github.com/marlowe/talenttrack/internal/models"
)

// CreateCandidate inserts a new candidate record.
func (s *Store) CreateCandidate(ctx context.Context, name, email string, createdBy int64) (models.Candidate, error) {
	now := time.Now().UTC()
	res, err := s.conn.ExecContext(ctx,
		`INSERT INTO candidates (name, email, created_by, created_at) VALUES (?, ?, ?, ?)`,
		name, email, createdBy, now)
	if err != nil {
		return models.Candidate{}, fmt.Errorf("store: insert candidate: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Candidate{}, fmt.Errorf("store: candidate id: %w", err)
	}
	return models.Candidate{ID: id, Name: name, Email: email, CreatedBy: createdBy, CreatedAt: now}, nil
}

// GetCandidate returns one candidate or apperr.ErrNotFound.
func (s *Store) GetCandidate(ctx context.Context, id int64) (models.Candidate, error) {
	var c models.Candidate
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, name, email, created_by, created_at FROM candidates WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Email, &c.CreatedBy, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Candidate{}, apperr.ErrNotFound
	}
	if err != nil {
		return models.Candidate{}, fmt.Errorf("store: get candidate: %w", err)
	}
	return c, nil
}

// ListCandidates returns all candidates, newest first.
func (s *Store) ListCandidates(ctx context.Context) ([]models.Candidate, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, name, email, created_by, created_at FROM candidates ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: list candidates: %w", err)
	}
	defer rows.Close()

	var out []models.Candidate
	for rows.Next() {
		var c models.Candidate
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.CreatedBy, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
