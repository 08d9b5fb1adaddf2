package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/clubvote/internal/core/domain"
	"github.com/vncsmyrnk/clubvote/internal/core/ports"
)

type BallotHandler struct {
	service ports.BallotService
	clock   ports.Clock
}

func NewBallotHandler(service ports.BallotService, clock ports.Clock) *BallotHandler {
	return &BallotHandler{
		service: service,
		clock:   clock,
	}
}

type createBallotRequest struct {
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	StartsAt           time.Time  `json:"starts_at"`
	EndsAt             time.Time  `json:"ends_at"`
	RequiresAttendance bool       `json:"requires_attendance"`
	Active             *bool      `json:"active"`
	SessionID          *uuid.UUID `json:"session_id"`
	Options            []string   `json:"options"`
}

// ballotView adds the status computed at request time.
type ballotView struct {
	*domain.Ballot
	Status domain.BallotStatus `json:"status"`
}

func (h *BallotHandler) view(b *domain.Ballot) ballotView {
	return ballotView{Ballot: b, Status: b.Status(h.clock.Now())}
}

// CreateBallot godoc
// @Summary      Creates a ballot with its options
// @Tags         ballots
// @Accept       json
// @Produce      json
// @Success      201  {object}  ballotView
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/ballots [post]
func (h *BallotHandler) CreateBallot(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	var req createBallotRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	ballot, err := h.service.Create(r.Context(), ports.CreateBallotInput{
		Title:              req.Title,
		Description:        req.Description,
		StartsAt:           req.StartsAt,
		EndsAt:             req.EndsAt,
		RequiresAttendance: req.RequiresAttendance,
		Active:             active,
		SessionID:          req.SessionID,
		OwnerID:            principal.UserID,
		Options:            req.Options,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.view(ballot))
}

// GetBallot godoc
// @Summary      Returns a ballot with its options
// @Tags         ballots
// @Produce      json
// @Param        id   path      string  true  "Ballot ID"
// @Success      200  {object}  ballotView
// @Failure      404  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/ballots/{id} [get]
func (h *BallotHandler) GetBallot(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid ballot id")
		return
	}

	ballot, err := h.service.GetBallot(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.view(ballot))
}

// ListBallots godoc
// @Summary      Lists ballots
// @Tags         ballots
// @Produce      json
// @Success      200  {array}   ballotView
// @Security     BearerAuth
// @Router       /api/ballots [get]
func (h *BallotHandler) ListBallots(w http.ResponseWriter, r *http.Request) {
	ballots, err := h.service.ListBallots(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	views := make([]ballotView, 0, len(ballots))
	for _, b := range ballots {
		views = append(views, h.view(b))
	}
	writeJSON(w, http.StatusOK, views)
}

// CloseBallot godoc
// @Summary      Closes a ballot ahead of its end time
// @Tags         ballots
// @Produce      json
// @Param        id   path      string  true  "Ballot ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/ballots/{id}/close [post]
func (h *BallotHandler) CloseBallot(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid ballot id")
		return
	}

	if err := h.service.CloseBallot(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
