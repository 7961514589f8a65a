package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tgrbin/relay/internal/service"
	"github.com/tgrbin/relay/internal/transport/http/middleware"
	"github.com/tgrbin/relay/pkg/validator"
)

type MembershipHandler struct {
	membershipService *service.MembershipService
	log               zerolog.Logger
}

func NewMembershipHandler(membershipService *service.MembershipService, log zerolog.Logger) *MembershipHandler {
	return &MembershipHandler{membershipService: membershipService, log: log}
}

type createMembershipInput struct {
	UserID    uuid.UUID `json:"user_id"`
	ChannelID uuid.UUID `json:"channel_id"`
}

func (h *MembershipHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input createMembershipInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	m, err := h.membershipService.Create(r.Context(), input.UserID, input.ChannelID, time.Now())
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, m)
}

type markReadInput struct {
	ReadAt *time.Time `json:"read_at,omitempty"`
}

// MarkRead bumps the requesting user's read marker for a channel.
func (h *MembershipHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	channelID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid channel ID")
		return
	}

	var input markReadInput
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
			return
		}
	}

	now := time.Now()
	readAt := now
	if input.ReadAt != nil {
		if errs := validator.ValidateTimestamp("read_at", *input.ReadAt, now); errs.HasErrors() {
			writeValidationErrors(w, errs)
			return
		}
		readAt = *input.ReadAt
	}

	m, err := h.membershipService.Get(r.Context(), userID, channelID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	if err := h.membershipService.MarkRead(r.Context(), m.ID, readAt); err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
