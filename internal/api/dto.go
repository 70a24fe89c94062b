package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/marlowe/talenttrack/internal/models"
)

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate validates the registration request.
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 0)),
	)
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate validates the login request.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// AuthResponse carries a fresh access token and the public user.
type AuthResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// CreateCandidateRequest is the body for POST /candidates.
type CreateCandidateRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Validate validates the candidate creation request.
func (r CreateCandidateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// AddNoteRequest is the body for POST /candidates/{id}/notes. SessionID
// optionally names the submitter's live session so the note-added event is
// not echoed back to it.
type AddNoteRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// TopicRequest is the body for the join/leave live-channel control calls.
type TopicRequest struct {
	Topic string `json:"topic"`
}
