package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	_ "github.com/vncsmyrnk/clubvote/docs"
	rediscache "github.com/vncsmyrnk/clubvote/internal/adapters/cache/redis"
	"github.com/vncsmyrnk/clubvote/internal/adapters/handler/http"
	"github.com/vncsmyrnk/clubvote/internal/adapters/messaging/rabbitmq"
	"github.com/vncsmyrnk/clubvote/internal/adapters/oauth/google"
	"github.com/vncsmyrnk/clubvote/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/clubvote/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/clubvote/internal/config"
	"github.com/vncsmyrnk/clubvote/internal/core/ports"
	"github.com/vncsmyrnk/clubvote/internal/core/services"
)

type repositories struct {
	ballots    ports.BallotRepository
	votes      ports.VoteRepository
	attendance ports.AttendanceRepository
	users      ports.UserRepository
	auth       ports.AuthRepository
	stats      ports.StatsRepository
	health     func(context.Context) error
	close      func()
}

// @title                       Club Vote API
// @version                     1.0
// @description                 Ballots, attendance sessions and vote casting for club governance.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	var bootstrapAdmin string
	flag.StringVar(&cfg.HTTPAddr, "addr", cfg.HTTPAddr, "HTTP listen address")
	flag.StringVar(&bootstrapAdmin, "bootstrap-admin", "", "create a staff account with this username if it does not exist")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		slog.Error("failed to open storage", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}
	defer repos.close()

	var statsCache ports.StatsCache
	if cfg.RedisAddr != "" {
		client, err := rediscache.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			slog.Warn("dashboard cache disabled", "error", err)
		} else {
			defer client.Close()
			statsCache = rediscache.NewStatsCache(client)
		}
	}

	var publisher ports.VoteEventPublisher
	if cfg.RabbitMQURL != "" {
		conn, ch, p, err := openPublisher(cfg)
		if err != nil {
			slog.Warn("vote events disabled", "error", err)
		} else {
			defer conn.Close()
			defer ch.Close()
			publisher = p
		}
	}

	clock := services.SystemClock()
	userService := services.NewUserService(repos.users, clock)
	authService := services.NewAuthService(repos.users, repos.auth, []byte(cfg.JWTSecret), cfg.AccessTokenTTL, cfg.RefreshTokenTTL, clock)
	if cfg.GoogleClientID != "" {
		authService.WithGoogleSignIn(google.NewVerifier(), cfg.GoogleClientID)
	}
	ballotService := services.NewBallotService(repos.ballots, repos.attendance, clock)
	voteService := services.NewVoteService(repos.ballots, repos.votes, repos.attendance, publisher, cfg.SessionTimezone)
	attendanceService := services.NewAttendanceService(repos.attendance, repos.users, clock, cfg.SessionTimezone)
	dashboardService := services.NewDashboardService(repos.stats, statsCache, cfg.StatsCacheTTL, clock, cfg.SessionTimezone)

	if bootstrapAdmin != "" {
		if err := ensureAdmin(ctx, repos.users, userService, bootstrapAdmin); err != nil {
			slog.Error("failed to bootstrap admin", "username", bootstrapAdmin, "error", err)
			os.Exit(1)
		}
	}

	handler := http.NewHandler(http.RouterConfig{
		AuthService: authService,
		Auth:        http.NewAuthHandler(authService, cfg.CookieDomain, stdhttp.SameSiteLaxMode, cfg.AccessTokenTTL, cfg.RefreshTokenTTL).WithGoogleRedirect(cfg.GoogleRedirectURL),
		Users:       http.NewUserHandler(userService),
		Ballots:     http.NewBallotHandler(ballotService, clock),
		Votes:       http.NewVoteHandler(voteService, clock),
		Attendance:  http.NewAttendanceHandler(attendanceService),
		Dashboard:   http.NewDashboardHandler(dashboardService),
		CORSOrigins: cfg.CORSOrigins,
		Health:      repos.health,
	})
	server := &stdhttp.Server{Addr: cfg.HTTPAddr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		slog.Info("listening", "addr", cfg.HTTPAddr, "storage", cfg.StorageDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
}

func openRepositories(ctx context.Context, cfg config.Config) (*repositories, error) {
	if cfg.StorageDriver == config.StorageMemory {
		store := memory.NewStore()
		return &repositories{
			ballots:    store.Ballots(),
			votes:      store.Votes(),
			attendance: store.Attendance(),
			users:      store.Users(),
			auth:       store.Auth(),
			stats:      store.Stats(),
			close:      func() {},
		}, nil
	}

	db, err := postgres.Open(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &repositories{
		ballots:    postgres.NewBallotRepository(db),
		votes:      postgres.NewVoteRepository(db),
		attendance: postgres.NewAttendanceRepository(db),
		users:      postgres.NewUserRepository(db),
		auth:       postgres.NewAuthRepository(db),
		stats:      postgres.NewStatsRepository(db),
		health:     db.PingContext,
		close:      func() { _ = db.Close() },
	}, nil
}

func openPublisher(cfg config.Config) (*amqp.Connection, *amqp.Channel, *rabbitmq.VotePublisher, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, 5, 2*time.Second)
	if err != nil {
		return nil, nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, nil, err
	}
	publisher, err := rabbitmq.NewVotePublisher(ch, cfg.VoteEventsQueue)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, nil, err
	}
	return conn, ch, publisher, nil
}

// ensureAdmin registers a staff account on first start and prints its
// temporary password once.
func ensureAdmin(ctx context.Context, users ports.UserRepository, userService ports.UserService, username string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	existing, err := users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	user, password, err := userService.Register(ctx, ports.RegisterUserInput{Username: username, FullName: username, IsStaff: true})
	if err != nil {
		return err
	}
	slog.Info("bootstrap admin created", "username", user.Username)
	_, err = os.Stderr.WriteString("temporary password for " + user.Username + ": " + password + "\n")
	return err
}
