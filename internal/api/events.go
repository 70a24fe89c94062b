package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marlowe/talenttrack/internal/live"
)

// EventsHandler serves the live channel: the SSE stream plus the join/leave
// topic control endpoints.
type EventsHandler struct {
	broker *live.Broker
}

// NewEventsHandler creates the live-channel handler.
func NewEventsHandler(broker *live.Broker) *EventsHandler {
	return &EventsHandler{broker: broker}
}

// Stream handles GET /events. The connection is registered as a session
// implicitly subscribed to the caller's personal topic; the first frame
// announces the session id used by the Join/Leave control calls. Events
// missed while disconnected are gone — clients reconcile against the
// notification store.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	identity, _ := Identity(r)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	session := h.broker.Subscribe(identity.ID)
	defer h.broker.Unsubscribe(session.ID)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-session.C:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}

// Join handles POST /events/{session}/join. Sessions may only join candidate
// topics; personal topics are joined implicitly at connect and never by hand.
// The session must belong to the authenticated caller.
func (h *EventsHandler) Join(w http.ResponseWriter, r *http.Request) {
	h.control(w, r, h.broker.Join)
}

// Leave handles POST /events/{session}/leave.
func (h *EventsHandler) Leave(w http.ResponseWriter, r *http.Request) {
	h.control(w, r, h.broker.Leave)
}

func (h *EventsHandler) control(w http.ResponseWriter, r *http.Request, op func(sessionID string, userID int64, topic string) bool) {
	identity, _ := Identity(r)
	sessionID := chi.URLParam(r, "session")
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("session id is required"))
		return
	}

	var req TopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if !live.IsCandidateTopic(req.Topic) {
		writeJSON(w, http.StatusBadRequest, errorBody("only candidate topics can be joined or left"))
		return
	}

	// A foreign session id is indistinguishable from an unknown one.
	if !op(sessionID, identity.ID, req.Topic) {
		writeJSON(w, http.StatusNotFound, errorBody("session not found"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"topic": req.Topic})
}
