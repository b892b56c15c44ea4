package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/examprep/backend/internal/apperr"
	"github.com/examprep/backend/internal/service"
)

// Handler holds all dependencies needed by HTTP handlers.
// Instead of relying on package-level globals, every handler method
// receives its dependencies through this struct.
type Handler struct {
	sessions *service.SessionService
	library  *service.LibraryService
	logger   *slog.Logger
}

// NewHandler creates a Handler with the given dependencies.
func NewHandler(sessions *service.SessionService, library *service.LibraryService, logger *slog.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		library:  library,
		logger:   logger,
	}
}

// validator is implemented by every request body the API decodes.
type validator interface {
	Validate() error
}

// maxBodyBytes bounds request bodies; dataset imports are the largest.
const maxBodyBytes = 16 << 20

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError writes {"error": msg} with the given status code.
func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// decodeAndValidate decodes the JSON body into v and runs its Validate
// method. Returns false if a response has already been written.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v validator) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := v.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, apperr.Message(err))
		return false
	}
	return true
}

// statusFor maps an error kind to its HTTP status code.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindInvalidTransition, apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindPreconditionFailed:
		return http.StatusUnprocessableEntity
	case apperr.KindDependency:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// handleServiceError writes the HTTP response matching err's kind.
// Returns true if an error was handled (caller should return).
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) bool {
	if err == nil {
		return false
	}
	kind := apperr.KindOf(err)
	status := statusFor(kind)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"kind", kind,
			"error", err,
		)
	}

	msg := apperr.Message(err)
	if kind == "" {
		msg = "internal error"
	}
	var ae *apperr.Error
	if errors.As(err, &ae) && kind == apperr.KindDependency {
		msg = "upstream dependency failed: " + ae.Message
	}
	respondError(w, status, msg)
	return true
}
