package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/vncsmyrnk/clubvote/internal/core/ports"
)

type RouterConfig struct {
	AuthService ports.AuthService

	Auth       *AuthHandler
	Users      *UserHandler
	Ballots    *BallotHandler
	Votes      *VoteHandler
	Attendance *AttendanceHandler
	Dashboard  *DashboardHandler

	CORSOrigins []string
	Health      func(context.Context) error
}

func NewHandler(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORS(cfg.CORSOrigins))

	r.Get("/healthz", HealthCheck(cfg.Health))
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", cfg.Auth.Login)
		r.Post("/google", cfg.Auth.GoogleCallback)
		r.Post("/refresh", cfg.Auth.Refresh)
		r.Post("/logout", cfg.Auth.Logout)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(Authenticate(cfg.AuthService))

		r.Post("/me/password", cfg.Auth.ChangePassword)

		r.Group(func(r chi.Router) {
			r.Use(RequirePasswordRotated)

			r.Get("/me", cfg.Users.GetMe)
			r.With(RequireStaff).Post("/users", cfg.Users.Register)
			r.With(RequireStaff).Get("/dashboard", cfg.Dashboard.Stats)

			r.Route("/ballots", func(r chi.Router) {
				r.Get("/", cfg.Ballots.ListBallots)
				r.With(RequireStaff).Post("/", cfg.Ballots.CreateBallot)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", cfg.Ballots.GetBallot)
					r.With(RequireStaff).Post("/close", cfg.Ballots.CloseBallot)
					r.Post("/votes", cfg.Votes.CastVote)
					r.Get("/results", cfg.Votes.Results)
					r.Get("/my-status", cfg.Votes.MyStatus)
				})
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/me", cfg.Attendance.MarkSelfPresent)
				r.Get("/sessions", cfg.Attendance.ListSessions)
				r.Get("/sessions/{id}/present", cfg.Attendance.ListPresent)

				r.Group(func(r chi.Router) {
					r.Use(RequireStaff)
					r.Post("/sessions", cfg.Attendance.StartSession)
					r.Post("/sessions/close", cfg.Attendance.CloseSession)
					r.Post("/users/{userID}/toggle", cfg.Attendance.ToggleAttendance)
				})
			})
		})
	})

	return r
}
