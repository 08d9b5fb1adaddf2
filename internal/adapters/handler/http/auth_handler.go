package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/vncsmyrnk/clubvote/internal/core/ports"
)

const (
	accessTokenCookie  = "access_token"
	refreshTokenCookie = "refresh_token"
)

type AuthHandler struct {
	authService     ports.AuthService
	cookieDomain    string
	cookieSameSite  http.SameSite
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration

	googleRedirectURL string
}

func NewAuthHandler(authService ports.AuthService, cookieDomain string, cookieSameSite http.SameSite, accessTokenTTL, refreshTokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		authService:     authService,
		cookieDomain:    cookieDomain,
		cookieSameSite:  cookieSameSite,
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
	}
}

// WithGoogleRedirect makes GoogleCallback redirect browsers to url once the
// session cookies are set instead of answering with JSON.
func (h *AuthHandler) WithGoogleRedirect(url string) *AuthHandler {
	h.googleRedirectURL = url
	return h
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
}

// Login exchanges credentials for an access token and a refresh token. Both
// are set as cookies and returned in the body for non-browser clients.
//
// @Summary      Signs a member in with username and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  tokenResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	accessToken, refreshToken, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.setAccessTokenCookie(w, accessToken)
	h.setRefreshTokenCookie(w, refreshToken)

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
	})
}

type googleCallbackRequest struct {
	Credential string `json:"credential"`
}

// GoogleCallback godoc
// @Summary      Signs a member in with a Google ID token
// @Description  Accepts the `credential` posted by Google Identity Services, as a form field or JSON. Only members whose email is already registered can sign in.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  tokenResponse
// @Success      303
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      501  {object}  errorResponse
// @Router       /auth/google [post]
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	var credential string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req googleCallbackRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		credential = req.Credential
	} else {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "failed to parse form")
			return
		}
		credential = r.FormValue("credential")
	}
	if credential == "" {
		writeError(w, http.StatusBadRequest, "missing credential")
		return
	}

	accessToken, refreshToken, err := h.authService.LoginWithGoogle(r.Context(), credential)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.setAccessTokenCookie(w, accessToken)
	h.setRefreshTokenCookie(w, refreshToken)

	if h.googleRedirectURL != "" {
		http.Redirect(w, r, h.googleRedirectURL, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh issues a new access token from the refresh_token cookie, or from
// the request body when no cookie is present.
//
// @Summary      Refreshes the access token
// @Description  Creates a new access token cookie based on the refresh token. This cookie is used as authentication for `/api` calls.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  tokenResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken := h.refreshTokenFrom(r)
	if refreshToken == "" {
		writeError(w, http.StatusUnauthorized, "missing refresh token")
		return
	}

	accessToken, err := h.authService.RefreshAccessToken(r.Context(), refreshToken)
	if err != nil {
		h.expireCookies(w)
		writeServiceError(w, r, err)
		return
	}

	h.setAccessTokenCookie(w, accessToken)
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: accessToken, TokenType: "Bearer"})
}

// Logout godoc
// @Summary      Logs the authenticated member out
// @Description  Revokes the refresh token and clears both cookies.
// @Tags         auth
// @Produce      json
// @Success      200
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if refreshToken := h.refreshTokenFrom(r); refreshToken != "" {
		_ = h.authService.Logout(r.Context(), refreshToken)
	}

	h.expireCookies(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangePassword godoc
// @Summary      Replaces the caller's password
// @Description  Required before any other `/api` call when the account still has its temporary password.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  tokenResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Security     BearerAuth
// @Router       /api/me/password [post]
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	accessToken, err := h.authService.ChangePassword(r.Context(), principal.UserID, req.OldPassword, req.NewPassword)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.setAccessTokenCookie(w, accessToken)
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: accessToken, TokenType: "Bearer"})
}

func (h *AuthHandler) refreshTokenFrom(r *http.Request) string {
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if r.Body == nil || r.ContentLength == 0 {
		return ""
	}
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		return ""
	}
	return req.RefreshToken
}

func (h *AuthHandler) setAccessTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    token,
		Path:     "/",
		Domain:   h.cookieDomain,
		HttpOnly: true,
		Secure:   true,
		SameSite: h.cookieSameSite,
		MaxAge:   int(h.accessTokenTTL.Seconds()),
	})
}

func (h *AuthHandler) setRefreshTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    token,
		Path:     "/auth",
		Domain:   h.cookieDomain,
		HttpOnly: true,
		Secure:   true,
		SameSite: h.cookieSameSite,
		MaxAge:   int(h.refreshTokenTTL.Seconds()),
	})
}

func (h *AuthHandler) expireCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: accessTokenCookie, MaxAge: -1, Path: "/", Domain: h.cookieDomain})
	http.SetCookie(w, &http.Cookie{Name: refreshTokenCookie, MaxAge: -1, Path: "/auth", Domain: h.cookieDomain})
}
