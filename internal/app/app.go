package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ladytrish-Devops/avaloniccornwell.com/internal/config"
	"github.com/ladytrish-Devops/avaloniccornwell.com/internal/mailer"
	"github.com/ladytrish-Devops/avaloniccornwell.com/internal/store"
)

type App struct {
	config  *config.Config
	logger  *slog.Logger
	leads   *store.LeadStore
	uploads *store.UploadStore
	queue   *mailer.Queue
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger := newLogger(cfg)

	if !cfg.AdminEnabled() {
		logger.Warn("no admin password configured, admin endpoints will refuse all requests")
	}

	var queue *mailer.Queue
	if cfg.MailEnabled() {
		m := mailer.New(mailer.Config{
			Host:        cfg.SMTPHost,
			Port:        cfg.SMTPPort,
			User:        cfg.SMTPUser,
			Pass:        cfg.SMTPPass,
			FromAddress: cfg.SMTPFromAddress,
			FromName:    cfg.SMTPFromName,
			To:          cfg.DestinationEmail,
		})
		queue = mailer.NewQueue(m, time.Second, 64, 3)
	} else {
		logger.Info("email notifications disabled, SMTP_HOST or DESTINATION_EMAIL not set")
	}

	return &App{
		config:  cfg,
		logger:  logger,
		leads:   store.NewLeadStore(cfg.LeadsFile),
		uploads: store.NewUploadStore(cfg.UploadDir),
		queue:   queue,
	}, nil
}

func (app *App) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", app.config.Port),
		Handler:      app.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelError),
	}

	if app.queue != nil {
		g.Go(func() error {
			app.queue.Start(gctx)
			return nil
		})
	}

	g.Go(func() error {
		app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done() // Wait for OS signal or another goroutine to fail

		app.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	app.logger.Info("stopped server")
	return nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	slog.SetDefault(logger)
	return logger
}
