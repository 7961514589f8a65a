package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tgrbin/relay/internal/errs"
	"github.com/tgrbin/relay/internal/service"
	"github.com/tgrbin/relay/internal/transport/http/middleware"
)

type PresenceHandler struct {
	presenceService *service.PresenceService
	log             zerolog.Logger
}

func NewPresenceHandler(presenceService *service.PresenceService, log zerolog.Logger) *PresenceHandler {
	return &PresenceHandler{presenceService: presenceService, log: log}
}

type heartbeatInput struct {
	At *time.Time `json:"at,omitempty"`
}

// Heartbeat records an activity signal for the requesting user. A client
// timestamp from the future never reaches the presence component.
func (h *PresenceHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input heartbeatInput
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
			return
		}
	}

	now := time.Now()
	at := now
	if input.At != nil {
		if input.At.After(now) {
			writeServiceError(w, h.log, errs.InvalidTimestamp("activity timestamp is in the future"))
			return
		}
		at = *input.At
	}

	if err := h.presenceService.Touch(r.Context(), userID, at); err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Status reports another user's derived online state.
func (h *PresenceHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	p, online, err := h.presenceService.Status(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":        p.UserID,
		"last_active_at": p.LastActiveAt,
		"online":         online,
	})
}
