package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vncsmyrnk/clubvote/internal/core/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func uuidParam(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	return id, err == nil
}

// writeServiceError maps domain errors to status codes. ErrInvalidOption is
// checked before ErrOptionNotFound because an unknown option is reported as
// both.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidOption),
		errors.Is(err, domain.ErrInvalidBallotInput),
		errors.Is(err, domain.ErrInvalidSessionInput),
		errors.Is(err, domain.ErrInvalidUserInput),
		errors.Is(err, domain.ErrWeakPassword):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrAttendanceRequired),
		errors.Is(err, domain.ErrPasswordChangeRequired):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrBallotNotFound),
		errors.Is(err, domain.ErrOptionNotFound),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrBallotClosed),
		errors.Is(err, domain.ErrAlreadyVoted),
		errors.Is(err, domain.ErrUsernameTaken),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrNoActiveSession):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrSignInUnavailable):
		status = http.StatusNotImplemented
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, status, domain.ErrInternal.Error())
		return
	}
	writeError(w, status, err.Error())
}
