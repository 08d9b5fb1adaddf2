package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/clubvote/internal/core/ports"
)

type stubVerifier struct {
	emails map[string]string
}

func (v stubVerifier) Verify(_ context.Context, token string, _ string) (*ports.TokenPayload, error) {
	email, ok := v.emails[token]
	if !ok {
		return nil, errors.New("bad token")
	}
	return &ports.TokenPayload{Email: email}, nil
}

func TestGoogleCallbackUnconfigured(t *testing.T) {
	app := setupTestApp(t)
	resp := app.do(t, http.MethodPost, "/auth/google", "", map[string]string{"credential": "anything"})
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestGoogleCallback(t *testing.T) {
	app := setupTestApp(t)
	ctx := context.Background()

	_, _, err := app.users.Register(ctx, ports.RegisterUserInput{Username: "ana", Email: "ana@club.example"})
	require.NoError(t, err)
	app.auth.WithGoogleSignIn(stubVerifier{emails: map[string]string{
		"ana-token":      "ANA@club.example",
		"stranger-token": "stranger@elsewhere.example",
	}}, "client-id")

	t.Run("json credential", func(t *testing.T) {
		resp := app.do(t, http.MethodPost, "/auth/google", "", map[string]string{"credential": "ana-token"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode[tokenResponse](t, resp)
		assert.NotEmpty(t, body.AccessToken)
		assert.NotEmpty(t, body.RefreshToken)

		principal, err := app.auth.ParseAccessToken(body.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "ana", principal.Username)
		assert.True(t, principal.MustChangePassword)
	})

	t.Run("unregistered email", func(t *testing.T) {
		resp := app.do(t, http.MethodPost, "/auth/google", "", map[string]string{"credential": "stranger-token"})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("rejected token", func(t *testing.T) {
		resp := app.do(t, http.MethodPost, "/auth/google", "", map[string]string{"credential": "forged"})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("missing credential", func(t *testing.T) {
		resp := app.do(t, http.MethodPost, "/auth/google", "", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("form post redirects", func(t *testing.T) {
		handler := NewAuthHandler(app.auth, "", http.SameSiteLaxMode, 15*time.Minute, time.Hour).
			WithGoogleRedirect("https://club.example/app")

		form := url.Values{"credential": {"ana-token"}}
		req := httptest.NewRequest(http.MethodPost, "/auth/google", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		handler.GoogleCallback(rec, req)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "https://club.example/app", rec.Header().Get("Location"))

		names := map[string]bool{}
		for _, c := range rec.Result().Cookies() {
			names[c.Name] = true
		}
		assert.True(t, names[accessTokenCookie])
		assert.True(t, names[refreshTokenCookie])
	})
}
