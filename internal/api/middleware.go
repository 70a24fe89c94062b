// Package api implements the TalentTrack REST and live-event API using chi.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/marlowe/talenttrack/internal/auth"
	"github.com/marlowe/talenttrack/internal/models"
	"github.com/marlowe/talenttrack/internal/store"
)

type identityKey struct{}

// Identity returns the authenticated user attached to the request, if any.
func Identity(r *http.Request) (models.User, bool) {
	u, ok := r.Context().Value(identityKey{}).(models.User)
	return u, ok
}

// RequireAuth returns middleware that validates a Bearer access token and
// attaches the authenticated user to the request context. Requests with a
// missing, invalid, or orphaned token are rejected.
func RequireAuth(tokens *auth.Manager, st *store.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeJSON(w, http.StatusUnauthorized, errorBody("access token required"))
				return
			}
			userID, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorBody("invalid or expired token"))
				return
			}
			user, err := st.GetUser(r.Context(), userID)
			if err != nil {
				// Token is valid but the user no longer exists.
				writeJSON(w, http.StatusUnauthorized, errorBody("invalid or expired token"))
				return
			}
			ctx := context.WithValue(r.Context(), identityKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
