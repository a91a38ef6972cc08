package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/scrypster/lector/internal/study"
)

// SessionHandlers contains the HTTP handlers for the reading-session API.
// All handlers operate on a single study session; the session serializes
// concurrent requests internally.
type SessionHandlers struct {
	session *study.Session
	hub     *WebSocketHub // optional, nil disables push
}

// NewSessionHandlers creates handlers around a study session. The hub may be
// nil when no WebSocket push is wanted.
func NewSessionHandlers(session *study.Session, hub *WebSocketHub) *SessionHandlers {
	return &SessionHandlers{
		session: session,
		hub:     hub,
	}
}

// Observe handles POST /api/observe - feed one reader observation through
// the decision pipeline. The response body always arrives; an intervened
// flag tells the client whether the assistant chose to speak.
func (h *SessionHandlers) Observe(w http.ResponseWriter, r *http.Request) {
	var req ObserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}
	if req.Observation == "" {
		respondError(w, http.StatusBadRequest, "observation is required", nil)
		return
	}

	resp := h.session.ProcessObservation(r.Context(), req.Observation)

	if resp.Intervened() && h.hub != nil {
		h.hub.Broadcast(InterventionEvent{
			Type:        "intervention",
			Response:    resp.Response,
			DisplayType: resp.DisplayType,
		})
	}

	respondJSON(w, http.StatusOK, ObserveResponse{
		Intervened:  resp.Intervened(),
		Response:    resp.Response,
		DisplayType: resp.DisplayType,
	})
}

// Feedback handles POST /api/feedback - record the participant's verdict on
// the most recent intervention.
func (h *SessionHandlers) Feedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse request body", err)
		return
	}

	h.session.RecordFeedback(r.Context(), req.Accepted)
	respondJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

// State handles GET /api/state - return the full externally visible session
// state plus study metrics.
func (h *SessionHandlers) State(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, StateResponse{
		SessionID:     h.session.ID,
		ParticipantID: h.session.ParticipantID,
		Mode:          h.session.Mode,
		Session:       h.session.Assistant().Snapshot(),
		Metrics:       h.session.Metrics(),
	})
}

// Reset handles POST /api/reset - discard the session memory and start the
// reading session over. Study metrics persist across resets.
func (h *SessionHandlers) Reset(w http.ResponseWriter, r *http.Request) {
	h.session.Assistant().Reset()
	respondJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// Report handles GET /api/report - render the session evaluation report as
// markdown.
func (h *SessionHandlers) Report(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, h.session.Report())
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers already sent, nothing more to do.
		fmt.Printf("failed to encode JSON response: %v\n", err)
	}
}

// respondError writes an error response with the given status code.
func respondError(w http.ResponseWriter, statusCode int, message string, err error) {
	errResp := ErrorResponse{
		Error: message,
		Code:  http.StatusText(statusCode),
	}
	if err != nil {
		errResp.Details = map[string]interface{}{
			"error": err.Error(),
		}
	}
	respondJSON(w, statusCode, errResp)
}
