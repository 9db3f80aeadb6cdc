// Package httpapi exposes the GhostNote services as a JSON HTTP API on gin.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/ghostnote/internal/logging"
	"github.com/dmitrijs2005/ghostnote/internal/server/auth"
	"github.com/dmitrijs2005/ghostnote/internal/server/database"
	"github.com/dmitrijs2005/ghostnote/internal/server/metrics"
	"github.com/dmitrijs2005/ghostnote/internal/server/models"
	"github.com/dmitrijs2005/ghostnote/internal/server/services"
	"github.com/gin-gonic/gin"
)

type AccountService interface {
	SignUp(ctx context.Context, username, email, password string) (*models.Account, error)
	Verify(ctx context.Context, username, code string) error
	ResendCode(ctx context.Context, username string) error
	CheckUsernameUnique(ctx context.Context, username string) error
	UserStatus(ctx context.Context, username string) (*services.UserStatus, error)
	DevVerificationCode(ctx context.Context, username string) (*services.PendingCode, error)
}

type AuthService interface {
	Authenticate(ctx context.Context, identifier, password string) (*services.Session, error)
	Refresh(ctx context.Context, accountID string) (*services.Session, error)
	ParseSession(token string) (*auth.Identity, error)
}

type MessageService interface {
	Send(ctx context.Context, username, content, category string) (*services.SendResult, error)
	List(ctx context.Context, accountID string, f services.InboxFilter) (*services.Inbox, error)
	Delete(ctx context.Context, accountID, messageID string) error
	MarkRead(ctx context.Context, accountID, messageID string) error
	GetAccepting(ctx context.Context, accountID string) (bool, error)
	SetAccepting(ctx context.Context, accountID string, enabled bool) error
}

type StatsService interface {
	Stats(ctx context.Context) (*services.PublicStats, error)
}

type SuggestionService interface {
	Suggest(ctx context.Context, username, category string) *services.Suggestions
}

type HealthProber interface {
	Probe(ctx context.Context) database.Health
}

// Deps are the collaborators behind the HTTP handlers. Metrics may be nil.
type Deps struct {
	Accounts    AccountService
	Auth        AuthService
	Messages    MessageService
	Stats       StatsService
	Suggestions SuggestionService
	Health      HealthProber
	Metrics     *metrics.Metrics
}

type Options struct {
	Address         string
	DevMode         bool
	RateLimitRPS    float64
	RateLimitBurst  int
	ShutdownTimeout time.Duration
}

type Server struct {
	opts      Options
	deps      Deps
	logger    logging.Logger
	limiter   *RateLimiter
	engine    *gin.Engine
	startedAt time.Time
}

func NewServer(opts Options, deps Deps, logger logging.Logger) *Server {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		opts:      opts,
		deps:      deps,
		logger:    logger.With("module", "http_server"),
		limiter:   NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst),
		startedAt: time.Now(),
	}

	registerValidators()
	s.engine = s.routes()
	return s
}

// Handler returns the configured gin engine.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.limiter.RunCleanup(ctx, time.Minute, 10*time.Minute)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "http shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.opts.Address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
