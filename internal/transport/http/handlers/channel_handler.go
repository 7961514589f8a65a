package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tgrbin/relay/internal/service"
	"github.com/tgrbin/relay/internal/transport/http/middleware"
	"github.com/tgrbin/relay/pkg/validator"
)

type ChannelHandler struct {
	channelService *service.ChannelService
	log            zerolog.Logger
}

func NewChannelHandler(channelService *service.ChannelService, log zerolog.Logger) *ChannelHandler {
	return &ChannelHandler{channelService: channelService, log: log}
}

// ListVisible returns the channel set the requesting user may see.
func (h *ChannelHandler) ListVisible(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	channels, err := h.channelService.ListVisible(r.Context(), userID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"channels": channels})
}

func (h *ChannelHandler) CreatePublic(w http.ResponseWriter, r *http.Request) {
	var input service.CreatePublicChannelInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidatePublicChannel(input.Name); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	ch, err := h.channelService.CreatePublic(r.Context(), input)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, ch)
}

func (h *ChannelHandler) CreatePrivate(w http.ResponseWriter, r *http.Request) {
	var input service.CreatePrivateChannelInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidatePrivateChannel(len(input.ParticipantIDs)); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	ch, err := h.channelService.CreatePrivate(r.Context(), input)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, ch)
}

func (h *ChannelHandler) Update(w http.ResponseWriter, r *http.Request) {
	channelID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid channel ID")
		return
	}

	var input service.UpdateChannelInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if input.Name != nil {
		if errs := validator.ValidatePublicChannel(*input.Name); errs.HasErrors() {
			writeValidationErrors(w, errs)
			return
		}
	}

	ch, err := h.channelService.Update(r.Context(), channelID, input)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, ch)
}

func (h *ChannelHandler) Delete(w http.ResponseWriter, r *http.Request) {
	channelID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid channel ID")
		return
	}

	if err := h.channelService.Delete(r.Context(), channelID); err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Participants lists the user ids holding a membership row for the channel.
func (h *ChannelHandler) Participants(w http.ResponseWriter, r *http.Request) {
	channelID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid channel ID")
		return
	}

	ids, err := h.channelService.Participants(r.Context(), channelID)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"participant_ids": ids})
}
