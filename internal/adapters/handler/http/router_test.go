package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "github.com/vncsmyrnk/clubvote/docs"
	"github.com/vncsmyrnk/clubvote/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/clubvote/internal/core/domain"
	"github.com/vncsmyrnk/clubvote/internal/core/ports"
	"github.com/vncsmyrnk/clubvote/internal/core/services"
)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

type testApp struct {
	handler http.Handler
	server  *httptest.Server
	store   *memory.Store
	clock   *testClock
	users   ports.UserService
	auth    *services.AuthService
}

func setupTestApp(t *testing.T, corsOrigins ...string) *testApp {
	t.Helper()

	store := memory.NewStore()
	clock := &testClock{now: time.Date(2026, time.March, 10, 15, 0, 0, 0, time.UTC)}

	users := services.NewUserService(store.Users(), clock)
	auth := services.NewAuthService(store.Users(), store.Auth(), []byte("test-secret"), 15*time.Minute, time.Hour, clock)

	handler := NewHandler(RouterConfig{
		AuthService: auth,
		Auth:        NewAuthHandler(auth, "", http.SameSiteLaxMode, 15*time.Minute, time.Hour),
		Users:       NewUserHandler(users),
		Ballots:     NewBallotHandler(services.NewBallotService(store.Ballots(), store.Attendance(), clock), clock),
		Votes:       NewVoteHandler(services.NewVoteService(store.Ballots(), store.Votes(), store.Attendance(), nil, time.UTC), clock),
		Attendance:  NewAttendanceHandler(services.NewAttendanceService(store.Attendance(), store.Users(), clock, time.UTC)),
		Dashboard:   NewDashboardHandler(services.NewDashboardService(store.Stats(), nil, time.Minute, clock, time.UTC)),
		CORSOrigins: corsOrigins,
	})

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &testApp{handler: handler, server: server, store: store, clock: clock, users: users, auth: auth}
}

// member registers an account and rotates its temporary password, returning
// a usable access token.
func (a *testApp) member(t *testing.T, username string, staff bool) (*domain.User, string) {
	t.Helper()
	ctx := context.Background()

	user, temp, err := a.users.Register(ctx, ports.RegisterUserInput{Username: username, IsStaff: staff})
	require.NoError(t, err)
	token, err := a.auth.ChangePassword(ctx, user.ID, temp, "correct-horse-battery")
	require.NoError(t, err)
	return user, token
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (a *testApp) createBallot(t *testing.T, token string, requiresAttendance bool) ballotView {
	t.Helper()
	resp := a.do(t, http.MethodPost, "/api/ballots", token, map[string]any{
		"title":               "Adopt the new bylaws",
		"starts_at":           a.clock.now.Add(-time.Hour),
		"ends_at":             a.clock.now.Add(time.Hour),
		"requires_attendance": requiresAttendance,
		"options":             []string{"Yes", "No"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[ballotView](t, resp)
}

func TestHealthz(t *testing.T) {
	app := setupTestApp(t)
	resp := app.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSwaggerDoc(t *testing.T) {
	app := setupTestApp(t)
	resp := app.do(t, http.MethodGet, "/swagger/doc.json", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	doc := decode[map[string]any](t, resp)
	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, paths, "/api/ballots/{id}/votes")
}

func TestAuthenticationRequired(t *testing.T) {
	app := setupTestApp(t)

	resp := app.do(t, http.MethodGet, "/api/ballots", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = app.do(t, http.MethodGet, "/api/ballots", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, domain.ErrInvalidToken.Error(), decode[errorResponse](t, resp).Error)
}

func TestLoginRotationFlow(t *testing.T) {
	app := setupTestApp(t)
	ctx := context.Background()

	_, temp, err := app.users.Register(ctx, ports.RegisterUserInput{Username: "newbie"})
	require.NoError(t, err)

	resp := app.do(t, http.MethodPost, "/auth/login", "", map[string]string{"username": "newbie", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = app.do(t, http.MethodPost, "/auth/login", "", map[string]string{"username": "newbie", "password": temp})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tokens := decode[tokenResponse](t, resp)
	assert.NotEmpty(t, tokens.RefreshToken)

	cookieNames := map[string]bool{}
	for _, c := range resp.Cookies() {
		cookieNames[c.Name] = true
	}
	assert.True(t, cookieNames[accessTokenCookie])
	assert.True(t, cookieNames[refreshTokenCookie])

	// A temporary password only unlocks the password change.
	resp = app.do(t, http.MethodGet, "/api/me", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = app.do(t, http.MethodGet, "/api/ballots", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = app.do(t, http.MethodPost, "/api/me/password", tokens.AccessToken, map[string]string{"old_password": temp, "new_password": "short"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = app.do(t, http.MethodPost, "/api/me/password", tokens.AccessToken, map[string]string{"old_password": temp, "new_password": "a-long-new-password"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rotated := decode[tokenResponse](t, resp)

	resp = app.do(t, http.MethodGet, "/api/me", rotated.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decode[map[string]any](t, resp)
	assert.Equal(t, "newbie", me["username"])
	assert.Equal(t, false, me["must_change_password"])
	assert.NotContains(t, me, "password_hash")

	resp = app.do(t, http.MethodPost, "/auth/refresh", "", map[string]string{"refresh_token": tokens.RefreshToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	refreshed := decode[tokenResponse](t, resp)
	resp = app.do(t, http.MethodGet, "/api/me", refreshed.AccessToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = app.do(t, http.MethodPost, "/auth/logout", "", map[string]string{"refresh_token": tokens.RefreshToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = app.do(t, http.MethodPost, "/auth/refresh", "", map[string]string{"refresh_token": tokens.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestStaffOnlyRoutes(t *testing.T) {
	app := setupTestApp(t)
	_, memberToken := app.member(t, "member", false)
	_, staffToken := app.member(t, "staff", true)

	resp := app.do(t, http.MethodPost, "/api/ballots", memberToken, map[string]any{"title": "x"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = app.do(t, http.MethodPost, "/api/users", memberToken, map[string]any{"username": "x"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = app.do(t, http.MethodGet, "/api/dashboard", memberToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = app.do(t, http.MethodPost, "/api/users", staffToken, map[string]any{"username": "Recruit", "full_name": "New Recruit"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	registered := decode[registerResponse](t, resp)
	assert.Equal(t, "recruit", registered.User.Username)
	assert.NotEmpty(t, registered.TemporaryPassword)

	resp = app.do(t, http.MethodPost, "/api/users", staffToken, map[string]any{"username": "recruit"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = app.do(t, http.MethodPost, "/api/ballots", staffToken, map[string]any{
		"title":     "One option",
		"starts_at": app.clock.now,
		"ends_at":   app.clock.now.Add(time.Hour),
		"options":   []string{"Only"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = app.do(t, http.MethodGet, "/api/dashboard", staffToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode[domain.DashboardStats](t, resp)
	assert.Equal(t, int64(3), stats.TotalUsers)
}

func TestVotingFlow(t *testing.T) {
	app := setupTestApp(t)
	_, staffToken := app.member(t, "staff", true)
	voter, voterToken := app.member(t, "voter", false)

	ballot := app.createBallot(t, staffToken, false)
	assert.Equal(t, domain.BallotStatusOpen, ballot.Status)
	require.Len(t, ballot.Options, 2)
	votePath := "/api/ballots/" + ballot.ID.String() + "/votes"

	resp := app.do(t, http.MethodPost, votePath, voterToken, map[string]any{"option_id": ballot.Options[0].ID})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	vote := decode[domain.Vote](t, resp)
	assert.Equal(t, voter.ID, vote.VoterID)

	resp = app.do(t, http.MethodPost, votePath, voterToken, map[string]any{"option_id": ballot.Options[0].ID})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, domain.ErrAlreadyVoted.Error(), decode[errorResponse](t, resp).Error)

	resp = app.do(t, http.MethodGet, "/api/ballots/"+ballot.ID.String()+"/results", voterToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	results := decode[resultsResponse](t, resp)
	assert.Equal(t, int64(1), results.TotalVotes)
	require.Len(t, results.Results, 2)
	assert.Equal(t, 100.0, results.Results[0].Percentage)

	resp = app.do(t, http.MethodGet, "/api/ballots/"+ballot.ID.String()+"/my-status", voterToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	status := decode[domain.VoterStatus](t, resp)
	assert.True(t, status.HasVoted)
	assert.True(t, status.Open)

	resp = app.do(t, http.MethodPost, "/api/ballots/"+ballot.ID.String()+"/close", staffToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	_, lateToken := app.member(t, "late", false)
	resp = app.do(t, http.MethodPost, votePath, lateToken, map[string]any{"option_id": ballot.Options[1].ID})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, domain.ErrBallotClosed.Error(), decode[errorResponse](t, resp).Error)
}

func TestVoteErrorStatuses(t *testing.T) {
	app := setupTestApp(t)
	_, staffToken := app.member(t, "staff", true)
	_, voterToken := app.member(t, "voter", false)

	open := app.createBallot(t, staffToken, false)
	gated := app.createBallot(t, staffToken, true)

	tests := []struct {
		name   string
		path   string
		body   any
		status int
	}{
		{"malformed ballot id", "/api/ballots/nope/votes", map[string]any{"option_id": open.Options[0].ID}, http.StatusBadRequest},
		{"unknown ballot", "/api/ballots/" + unknownID() + "/votes", map[string]any{"option_id": open.Options[0].ID}, http.StatusNotFound},
		{"option of another ballot", "/api/ballots/" + open.ID.String() + "/votes", map[string]any{"option_id": gated.Options[0].ID}, http.StatusBadRequest},
		{"unknown option", "/api/ballots/" + open.ID.String() + "/votes", map[string]any{"option_id": unknownID()}, http.StatusBadRequest},
		{"attendance required", "/api/ballots/" + gated.ID.String() + "/votes", map[string]any{"option_id": gated.Options[0].ID}, http.StatusForbidden},
		{"malformed body", "/api/ballots/" + open.ID.String() + "/votes", "not an object", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := app.do(t, http.MethodPost, tt.path, voterToken, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func unknownID() string {
	return "7f1c2a3b-4d5e-4f60-8a9b-0c1d2e3f4a5b"
}

func TestAttendanceFlow(t *testing.T) {
	app := setupTestApp(t)
	_, staffToken := app.member(t, "staff", true)
	voter, voterToken := app.member(t, "voter", false)

	resp := app.do(t, http.MethodPost, "/api/attendance/me", voterToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = app.do(t, http.MethodPost, "/api/attendance/sessions", voterToken, map[string]any{"title": "Weekly"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = app.do(t, http.MethodPost, "/api/attendance/sessions", staffToken, map[string]any{"title": "Weekly", "session_date": "10/03/2026"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = app.do(t, http.MethodPost, "/api/attendance/sessions", staffToken, map[string]any{"title": "Weekly"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	session := decode[domain.Session](t, resp)

	gated := app.createBallot(t, staffToken, true)
	votePath := "/api/ballots/" + gated.ID.String() + "/votes"

	resp = app.do(t, http.MethodPost, votePath, voterToken, map[string]any{"option_id": gated.Options[0].ID})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = app.do(t, http.MethodPost, "/api/attendance/me", voterToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = app.do(t, http.MethodPost, votePath, voterToken, map[string]any{"option_id": gated.Options[0].ID})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = app.do(t, http.MethodGet, "/api/attendance/sessions/"+session.ID.String()+"/present", voterToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	records := decode[[]domain.AttendanceRecord](t, resp)
	require.Len(t, records, 1)
	assert.Equal(t, voter.ID, records[0].UserID)

	resp = app.do(t, http.MethodPost, "/api/attendance/users/"+voter.ID.String()+"/toggle", staffToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decode[attendanceResponse](t, resp).Present)

	resp = app.do(t, http.MethodPost, "/api/attendance/sessions/close", staffToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = app.do(t, http.MethodPost, "/api/attendance/sessions/close", staffToken, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = app.do(t, http.MethodGet, "/api/attendance/sessions", voterToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]domain.Session](t, resp), 1)
}

func TestCORSPreflight(t *testing.T) {
	handler := setupTestApp(t, "https://club.example").handler

	req := httptest.NewRequest(http.MethodOptions, "/api/ballots", nil)
	req.Header.Set("Origin", "https://club.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://club.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/ballots", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
