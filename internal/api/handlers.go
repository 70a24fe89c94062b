package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/marlowe/talenttrack/internal/apperr"
	"github.com/marlowe/talenttrack/internal/auth"
	"github.com/marlowe/talenttrack/internal/noteflow"
	"github.com/marlowe/talenttrack/internal/store"
)

// Handler holds API route handlers.
type Handler struct {
	store  *store.Store
	flow   *noteflow.Service
	tokens *auth.Manager
}

// NewHandler creates a new Handler.
func NewHandler(st *store.Store, flow *noteflow.Service, tokens *auth.Manager) *Handler {
	return &Handler{store: st, flow: flow, tokens: tokens}
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

// Register handles POST /auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<10)
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("password hash failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	user, err := h.store.CreateUser(r.Context(), req.Name, req.Email, hash)
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			writeJSON(w, http.StatusConflict, errorBody("user already exists with this email"))
		} else {
			slog.Error("create user failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		slog.Error("token issue failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusCreated, AuthResponse{Token: token, User: user})
}

// Login handles POST /auth/login. Unknown email and wrong password are
// indistinguishable to the caller.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<10)
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeJSON(w, http.StatusUnauthorized, errorBody("invalid credentials"))
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		slog.Error("token issue failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	user.PasswordHash = ""
	writeJSON(w, http.StatusOK, AuthResponse{Token: token, User: user})
}

// ListUsers handles GET /users. The ascending-id ordering feeds mention
// resolution on the client as well as the server.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		slog.Error("list users failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

// ListCandidates handles GET /candidates.
func (h *Handler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.store.ListCandidates(r.Context())
	if err != nil {
		slog.Error("list candidates failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"candidates": candidates})
}

// CreateCandidate handles POST /candidates.
func (h *Handler) CreateCandidate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<10)
	identity, _ := Identity(r)

	var req CreateCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	candidate, err := h.store.CreateCandidate(r.Context(), req.Name, req.Email, identity.ID)
	if err != nil {
		slog.Error("create candidate failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusCreated, candidate)
}

// GetCandidate handles GET /candidates/{id}.
func (h *Handler) GetCandidate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid candidate id"))
		return
	}
	candidate, err := h.store.GetCandidate(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("candidate not found"))
		} else {
			slog.Error("get candidate failed", slog.Int64("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, candidate)
}

// ListNotes handles GET /candidates/{id}/notes.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid candidate id"))
		return
	}
	notes, err := h.store.ListNotes(r.Context(), id)
	if err != nil {
		slog.Error("list notes failed", slog.Int64("candidate_id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notes": notes})
}

// AddNote handles POST /candidates/{id}/notes — the note ingestion pipeline.
func (h *Handler) AddNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<10)
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid candidate id"))
		return
	}
	identity, _ := Identity(r)

	var req AddNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	result, err := h.flow.SubmitNote(r.Context(), noteflow.SubmitNoteInput{
		CandidateID: id,
		Author:      identity,
		Message:     req.Message,
		SessionID:   req.SessionID,
	})
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrInvalidInput):
			writeJSON(w, http.StatusBadRequest, errorBody("message is required"))
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("candidate not found"))
		default:
			slog.Error("submit note failed", slog.Int64("candidate_id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// ListNotifications handles GET /notifications.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	identity, _ := Identity(r)
	list, err := h.store.ListNotificationsForUser(r.Context(), identity.ID)
	if err != nil {
		slog.Error("list notifications failed", slog.Int64("user_id", identity.ID), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": list})
}

// MarkNotificationRead handles PATCH /notifications/{id}/read.
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid notification id"))
		return
	}
	identity, _ := Identity(r)

	if err := h.store.MarkNotificationRead(r.Context(), id, identity.ID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("notification not found"))
		} else {
			slog.Error("mark read failed", slog.Int64("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "notification marked as read"})
}

// MarkAllNotificationsRead handles POST /notifications/mark-all-read.
func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	identity, _ := Identity(r)
	if err := h.store.MarkAllNotificationsRead(r.Context(), identity.ID); err != nil {
		slog.Error("mark all read failed", slog.Int64("user_id", identity.ID), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "all notifications marked as read"})
}
