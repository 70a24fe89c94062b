// Package models defines the domain types for TalentTrack.
package models

import "time"

// User is a registered teammate. PasswordHash never leaves the store layer.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Candidate is a tracked applicant. Any authenticated user may view and
// annotate a candidate; ownership ends at creation.
type Candidate struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Note is an immutable comment on a candidate's thread. Tags is the
// deduplicated snapshot of resolved mention recipients at creation time;
// it does not follow later renames.
type Note struct {
	ID          int64     `json:"id"`
	CandidateID int64     `json:"candidate_id"`
	AuthorID    int64     `json:"user_id"`
	AuthorName  string    `json:"user_name,omitempty"`
	Message     string    `json:"message"`
	Tags        []int64   `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
}

// Notification is the durable record that a user was mentioned in a note.
// One row per (note, recipient); read state only ever moves unread -> read.
type Notification struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	NoteID      int64     `json:"note_id"`
	CandidateID int64     `json:"candidate_id"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

// NotificationDetail is a notification joined with the context a client
// needs to render it without further lookups.
type NotificationDetail struct {
	Notification
	CandidateName string    `json:"candidate_name"`
	NoteMessage   string    `json:"note_message"`
	TaggedByID    int64     `json:"tagged_by_id"`
	TaggedByName  string    `json:"tagged_by_name"`
	NoteCreatedAt time.Time `json:"note_created_at"`
}
