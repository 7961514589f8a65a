package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tgrbin/relay/internal/service"
)

// maxUploadBytes caps a single attachment upload.
const maxUploadBytes = 25 << 20

type AttachmentHandler struct {
	attachmentService *service.AttachmentService
	log               zerolog.Logger
}

func NewAttachmentHandler(attachmentService *service.AttachmentService, log zerolog.Logger) *AttachmentHandler {
	return &AttachmentHandler{attachmentService: attachmentService, log: log}
}

// Upload accepts a multipart form with a single "file" part.
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_UPLOAD", "Expected a multipart form with a file part")
		return
	}
	defer file.Close()

	att, err := h.attachmentService.Upload(
		r.Context(),
		header.Filename,
		header.Header.Get("Content-Type"),
		file,
		header.Size,
	)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, att)
}

func (h *AttachmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid attachment ID")
		return
	}

	att, err := h.attachmentService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, att)
}

// Download delivers bytes through the active storage backend: a direct
// stream or a presigned redirect, transparently to the client.
func (h *AttachmentHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid attachment ID")
		return
	}

	if err := h.attachmentService.ServeDownload(w, r, id); err != nil {
		writeServiceError(w, h.log, err)
	}
}

func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid attachment ID")
		return
	}

	if err := h.attachmentService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
