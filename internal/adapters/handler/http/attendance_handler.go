package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/clubvote/internal/core/domain"
	"github.com/vncsmyrnk/clubvote/internal/core/ports"
)

type AttendanceHandler struct {
	service ports.AttendanceService
}

func NewAttendanceHandler(service ports.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{
		service: service,
	}
}

type startSessionRequest struct {
	Title string `json:"title"`
	// Date is YYYY-MM-DD; empty means today.
	Date string `json:"session_date"`
}

// StartSession godoc
// @Summary      Opens an attendance session
// @Tags         attendance
// @Accept       json
// @Produce      json
// @Success      201  {object}  domain.Session
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/attendance/sessions [post]
func (h *AttendanceHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	var req startSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var date time.Time
	if req.Date != "" {
		parsed, err := time.Parse(time.DateOnly, req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "session_date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	session, err := h.service.StartSession(r.Context(), ports.StartSessionInput{
		Title:       req.Title,
		SessionDate: date,
		CreatedBy:   principal.UserID,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

// CloseSession godoc
// @Summary      Closes the active attendance session
// @Tags         attendance
// @Produce      json
// @Success      200  {object}  domain.Session
// @Failure      403  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/attendance/sessions/close [post]
func (h *AttendanceHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.CloseSession(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// ListSessions godoc
// @Summary      Lists attendance sessions
// @Tags         attendance
// @Produce      json
// @Success      200  {array}   domain.Session
// @Security     BearerAuth
// @Router       /api/attendance/sessions [get]
func (h *AttendanceHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.service.ListSessions(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if sessions == nil {
		sessions = []*domain.Session{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

type attendanceResponse struct {
	UserID  uuid.UUID `json:"user_id"`
	Present bool      `json:"present"`
}

// ToggleAttendance godoc
// @Summary      Toggles a member's presence in the active session
// @Tags         attendance
// @Produce      json
// @Param        userID  path  string  true  "Member ID"
// @Success      200  {object}  attendanceResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/attendance/users/{userID}/toggle [post]
func (h *AttendanceHandler) ToggleAttendance(w http.ResponseWriter, r *http.Request) {
	userID, ok := uuidParam(r, "userID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	present, err := h.service.ToggleAttendance(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, attendanceResponse{UserID: userID, Present: present})
}

// MarkSelfPresent godoc
// @Summary      Marks the caller present in the active session
// @Tags         attendance
// @Produce      json
// @Success      200  {object}  attendanceResponse
// @Failure      409  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/attendance/me [post]
func (h *AttendanceHandler) MarkSelfPresent(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	if err := h.service.MarkSelfPresent(r.Context(), principal.UserID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, attendanceResponse{UserID: principal.UserID, Present: true})
}

// ListPresent godoc
// @Summary      Lists members present in a session
// @Tags         attendance
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {array}   domain.AttendanceRecord
// @Failure      404  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/attendance/sessions/{id}/present [get]
func (h *AttendanceHandler) ListPresent(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := uuidParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	records, err := h.service.ListPresent(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if records == nil {
		records = []domain.AttendanceRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}
