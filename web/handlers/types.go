package handlers

import (
	"github.com/scrypster/lector/internal/study"
	"github.com/scrypster/lector/pkg/types"
)

// ErrorResponse is the standard error response format for the API.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ObserveRequest is the request body for POST /api/observe.
type ObserveRequest struct {
	Observation string `json:"observation"`
}

// ObserveResponse is the response format for POST /api/observe.
type ObserveResponse struct {
	Intervened  bool   `json:"intervened"`
	Response    string `json:"response,omitempty"`
	DisplayType string `json:"display_type,omitempty"`
}

// FeedbackRequest is the request body for POST /api/feedback.
type FeedbackRequest struct {
	Accepted bool `json:"accepted"`
}

// StateResponse is the response format for GET /api/state.
type StateResponse struct {
	SessionID     string                `json:"session_id"`
	ParticipantID string                `json:"participant_id"`
	Mode          string                `json:"mode"`
	Session       types.SessionSnapshot `json:"session"`
	Metrics       study.Metrics         `json:"metrics"`
}

// InterventionEvent is broadcast over the WebSocket when the assistant
// decides to surface help.
type InterventionEvent struct {
	Type        string `json:"type"` // always "intervention"
	Response    string `json:"response"`
	DisplayType string `json:"display_type"`
}
