package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/clubvote/internal/core/domain"
	"github.com/vncsmyrnk/clubvote/internal/core/ports"
)

type VoteHandler struct {
	service ports.VoteService
	clock   ports.Clock
}

func NewVoteHandler(service ports.VoteService, clock ports.Clock) *VoteHandler {
	return &VoteHandler{
		service: service,
		clock:   clock,
	}
}

type voteRequest struct {
	OptionID uuid.UUID `json:"option_id"`
}

// CastVote godoc
// @Summary      Casts the caller's vote on a ballot
// @Description  Each member votes at most once per ballot. Ballots that require attendance only accept votes from members marked present.
// @Tags         votes
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Ballot ID"
// @Success      201  {object}  domain.Vote
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/ballots/{id}/votes [post]
func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	ballotID, ok := uuidParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid ballot id")
		return
	}

	var req voteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	principal, ok := PrincipalFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	vote, err := h.service.CastVote(r.Context(), ports.CastVoteInput{
		BallotID: ballotID,
		OptionID: req.OptionID,
		VoterID:  principal.UserID,
		Now:      h.clock.Now(),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, vote)
}

type resultsResponse struct {
	BallotID   uuid.UUID            `json:"ballot_id"`
	TotalVotes int64                `json:"total_votes"`
	Results    []domain.OptionTally `json:"results"`
}

// Results godoc
// @Summary      Returns the tally of a ballot
// @Tags         votes
// @Produce      json
// @Param        id   path      string  true  "Ballot ID"
// @Success      200  {object}  resultsResponse
// @Failure      404  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/ballots/{id}/results [get]
func (h *VoteHandler) Results(w http.ResponseWriter, r *http.Request) {
	ballotID, ok := uuidParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid ballot id")
		return
	}

	tallies, err := h.service.TallyResults(r.Context(), ballotID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var total int64
	for _, t := range tallies {
		total += t.VoteCount
	}

	writeJSON(w, http.StatusOK, resultsResponse{BallotID: ballotID, TotalVotes: total, Results: tallies})
}

// MyStatus godoc
// @Summary      Reports whether the caller can still vote on a ballot
// @Tags         votes
// @Produce      json
// @Param        id   path      string  true  "Ballot ID"
// @Success      200  {object}  domain.VoterStatus
// @Failure      404  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/ballots/{id}/my-status [get]
func (h *VoteHandler) MyStatus(w http.ResponseWriter, r *http.Request) {
	ballotID, ok := uuidParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid ballot id")
		return
	}

	principal, ok := PrincipalFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	status, err := h.service.VoterStatus(r.Context(), ballotID, principal.UserID, h.clock.Now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}
