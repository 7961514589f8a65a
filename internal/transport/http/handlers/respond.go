package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/tgrbin/relay/internal/errs"
	"github.com/tgrbin/relay/pkg/validator"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func writeValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error": map[string]any{
			"code":   "VALIDATION_ERROR",
			"fields": errs,
		},
	})
}

// writeServiceError maps tagged error kinds onto stable statuses so clients
// can tell retries from corrections. Untagged errors are logged and hidden.
func writeServiceError(w http.ResponseWriter, log zerolog.Logger, err error) {
	switch errs.KindOf(err) {
	case errs.KindNotFound:
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errs.KindAlreadyExists:
		writeError(w, http.StatusConflict, "ALREADY_EXISTS", err.Error())
	case errs.KindForbidden:
		writeError(w, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errs.KindInvalidTimestamp:
		writeError(w, http.StatusBadRequest, "INVALID_TIMESTAMP", err.Error())
	case errs.KindStorageConflict:
		writeError(w, http.StatusConflict, "STORAGE_CONFLICT", err.Error())
	case errs.KindStorageUnavailable:
		log.Error().Err(err).Msg("storage unavailable")
		writeError(w, http.StatusInternalServerError, "STORAGE_UNAVAILABLE", "Attachment storage is unavailable")
	default:
		log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
	}
}
