// Package noteflow implements the note ingestion pipeline: persist a note,
// resolve its mentions, record notifications, and emit live events.
package noteflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/marlowe/talenttrack/internal/apperr"
	"github.com/marlowe/talenttrack/internal/live"
	"github.com/marlowe/talenttrack/internal/mention"
	"github.com/marlowe/talenttrack/internal/models"
	"github.com/marlowe/talenttrack/internal/store"
)

// excerpt length for user-tagged live events, in runes.
const excerptLen = 200

// Service orchestrates note submission end to end.
type Service struct {
	store  *store.Store
	broker *live.Broker
}

// NewService creates a note ingestion service.
func NewService(st *store.Store, broker *live.Broker) *Service {
	return &Service{store: st, broker: broker}
}

// SubmitNoteInput carries one note submission.
type SubmitNoteInput struct {
	CandidateID int64
	Author      models.User
	Message     string
	// SessionID optionally names the submitter's live session so it is
	// excluded from the note-added fan-out (it renders locally already).
	SessionID string
}

// NoteResult is the persisted note plus a warning when notification fan-out
// partially failed after the note was committed.
type NoteResult struct {
	models.Note
	NotificationWarning string `json:"notification_warning,omitempty"`
}

// NoteAddedEvent is the payload published to candidate:<id>.
type NoteAddedEvent struct {
	NoteID      int64     `json:"noteId"`
	CandidateID int64     `json:"candidateId"`
	AuthorID    int64     `json:"authorId"`
	AuthorName  string    `json:"authorName"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"createdAt"`
}

// UserTaggedEvent is the payload published to each recipient's user:<id>.
type UserTaggedEvent struct {
	NoteID        int64  `json:"noteId"`
	CandidateID   int64  `json:"candidateId"`
	CandidateName string `json:"candidateName"`
	Message       string `json:"message"`
	TaggedBy      int64  `json:"taggedBy"`
}

// SubmitNote validates the submission, persists the note with its resolved
// mention snapshot, records one notification per recipient, and emits live
// events. The note insert is strictly ordered before notification inserts,
// which are ordered before event emission.
//
// A notification failure after the note is committed does not roll the note
// back: it is logged and reported on the result so the caller knows the note
// succeeded but notifications may be missing.
func (s *Service) SubmitNote(ctx context.Context, in SubmitNoteInput) (*NoteResult, error) {
	message := in.Message
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: message is required", apperr.ErrInvalidInput)
	}

	// Persistence survives the originating connection: a client disconnect
	// mid-submission must not cancel in-flight inserts.
	dctx := context.WithoutCancel(ctx)

	candidate, err := s.store.GetCandidate(dctx, in.CandidateID)
	if err != nil {
		return nil, err
	}

	users, err := s.store.ListUsers(dctx)
	if err != nil {
		return nil, err
	}
	tags := mention.ResolveAll(message, users, in.Author.ID)

	note, err := s.store.InsertNote(dctx, candidate.ID, in.Author.ID, message, tags)
	if err != nil {
		return nil, err
	}
	note.AuthorName = in.Author.Name

	result := &NoteResult{Note: note}
	if err := s.store.InsertNotifications(dctx, note.ID, candidate.ID, tags); err != nil {
		slog.Error("notification fan-out failed after note commit",
			slog.Int64("note_id", note.ID),
			slog.Int64("candidate_id", candidate.ID),
			slog.String("error", err.Error()))
		result.NotificationWarning = "note saved, but some notifications could not be created"
	}

	s.broker.Publish(live.CandidateTopic(candidate.ID), live.Event{
		Type: "note-added",
		Data: NoteAddedEvent{
			NoteID:      note.ID,
			CandidateID: candidate.ID,
			AuthorID:    in.Author.ID,
			AuthorName:  in.Author.Name,
			Message:     note.Message,
			CreatedAt:   note.CreatedAt,
		},
	}, in.SessionID)

	for _, recipient := range tags {
		s.broker.Publish(live.UserTopic(recipient), live.Event{
			Type: "user-tagged",
			Data: UserTaggedEvent{
				NoteID:        note.ID,
				CandidateID:   candidate.ID,
				CandidateName: candidate.Name,
				Message:       excerpt(note.Message),
				TaggedBy:      in.Author.ID,
			},
		}, "")
	}

	return result, nil
}

func excerpt(s string) string {
	runes := []rune(s)
	if len(runes) <= excerptLen {
		return s
	}
	return string(runes[:excerptLen]) + "…"
}
