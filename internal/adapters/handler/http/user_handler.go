package http

import (
	"net/http"

	"github.com/vncsmyrnk/clubvote/internal/core/domain"
	"github.com/vncsmyrnk/clubvote/internal/core/ports"
)

type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

type meResponse struct {
	*domain.User
	MustChangePassword bool `json:"must_change_password"`
}

// GetMe godoc
// @Summary      Returns the authenticated member
// @Tags         users
// @Produce      json
// @Success      200  {object}  meResponse
// @Failure      401  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/me [get]
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	user, err := h.service.GetByID(r.Context(), principal.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, domain.ErrUserNotFound.Error())
		return
	}

	writeJSON(w, http.StatusOK, meResponse{User: user, MustChangePassword: principal.MustChangePassword})
}

type registerRequest struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	IsStaff  bool   `json:"is_staff"`
}

type registerResponse struct {
	User              *domain.User `json:"user"`
	TemporaryPassword string       `json:"temporary_password"`
}

// Register creates a member account. The temporary password is only ever
// shown in this response.
//
// @Summary      Registers a member account
// @Tags         users
// @Accept       json
// @Produce      json
// @Success      201  {object}  registerResponse
// @Failure      400  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/users [post]
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, password, err := h.service.Register(r.Context(), ports.RegisterUserInput{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		IsStaff:  req.IsStaff,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{User: user, TemporaryPassword: password})
}
