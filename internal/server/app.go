// Package server wires the GhostNote components together: persistence
// gateway, migrations, mail delivery, services and the HTTP API, and runs
// them until the process receives a termination signal.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/ghostnote/internal/logging"
	"github.com/dmitrijs2005/ghostnote/internal/server/config"
	"github.com/dmitrijs2005/ghostnote/internal/server/database"
	"github.com/dmitrijs2005/ghostnote/internal/server/httpapi"
	"github.com/dmitrijs2005/ghostnote/internal/server/metrics"
	"github.com/dmitrijs2005/ghostnote/internal/server/notify"
	"github.com/dmitrijs2005/ghostnote/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/ghostnote/internal/server/services"
	"golang.org/x/sync/errgroup"
)

const smtpTimeout = 15 * time.Second

type App struct {
	config     *config.Config
	logger     logging.Logger
	gateway    *database.Gateway
	dispatcher *notify.Dispatcher
	http       *httpapi.Server
}

// NewApp connects to the database, applies migrations and builds the
// service graph. The returned App owns the database pool.
func NewApp(ctx context.Context, c *config.Config, out io.Writer) (*App, error) {
	logger := logging.NewJSONLogger(out, c.Environment)

	gw := database.New(database.Options{
		DSN:             c.DatabaseDSN,
		Attempts:        c.DBConnectAttempts,
		RetryDelay:      c.DBConnectRetryDelay,
		Timeout:         c.DBConnectTimeout,
		MaxOpenConns:    c.DBMaxOpenConns,
		MaxIdleConns:    c.DBMaxIdleConns,
		ConnMaxIdleTime: c.DBConnMaxIdleTime,
	}, logger)

	db, err := gw.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = gw.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	mailer, err := newMailer(c, logger)
	if err != nil {
		_ = gw.Close()
		return nil, err
	}

	m := metrics.New()
	dispatcher := notify.NewDispatcher(mailer, notify.DispatcherOptions{
		QueueSize:  c.NotifyQueueSize,
		MaxRetries: c.NotifyMaxRetries,
		RetryDelay: c.NotifyRetryDelay,
	}, logger, m)

	srv := httpapi.NewServer(httpapi.Options{
		Address:        c.HTTPAddr,
		DevMode:        c.IsDevelopment(),
		RateLimitRPS:   c.RateLimitRPS,
		RateLimitBurst: c.RateLimitBurst,
	}, buildDeps(db, rm, mailer, dispatcher, gw, m, c, logger), logger)

	return &App{config: c, logger: logger, gateway: gw, dispatcher: dispatcher, http: srv}, nil
}

func buildDeps(db *sql.DB, rm repomanager.RepositoryManager, mailer notify.Mailer, n services.Notifier,
	gw *database.Gateway, m *metrics.Metrics, c *config.Config, logger logging.Logger) httpapi.Deps {
	return httpapi.Deps{
		Accounts:    services.NewAccountService(db, rm, mailer, c, logger),
		Auth:        services.NewAuthService(db, rm, c, logger, m),
		Messages:    services.NewMessageService(db, rm, n, c, logger, m),
		Stats:       services.NewStatsService(db, rm, c),
		Suggestions: services.NewSuggestionService(services.NewOpenAIClient(c), c, logger, m),
		Health:      gw,
		Metrics:     m,
	}
}

func newMailer(c *config.Config, logger logging.Logger) (notify.Mailer, error) {
	if !c.SMTPConfigured() {
		logger.Warn(context.Background(), "SMTP is not configured, emails will be skipped")
		return notify.NewNopMailer(logger), nil
	}

	mailer, err := notify.NewSMTPMailer(notify.SMTPOptions{
		Host:     c.SMTPHost,
		Port:     c.SMTPPort,
		Username: c.SMTPUser,
		Password: c.SMTPPassword,
		From:     c.EmailFrom,
		FromName: c.EmailFromName,
		Timeout:  smtpTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("mailer init error: %w", err)
	}
	return mailer, nil
}

// Run serves HTTP and drains the notification queue until SIGINT/SIGTERM
// or until either component fails.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...", "env", app.config.Environment)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.http.Run(ctx) })
	g.Go(func() error { return app.dispatcher.Run(ctx) })

	err := g.Wait()

	if cerr := app.gateway.Close(); cerr != nil {
		app.logger.Error(context.Background(), "closing database", "error", cerr)
	}
	app.logger.Info(context.Background(), "App stopped")
	return err
}
