// Package server initializes and runs the Linkup server. It opens the
// database, applies schema migrations, wires the services, handles graceful
// shutdown, and starts the HTTP server for the public API.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/linkup-social/linkup/internal/logging"
	"github.com/linkup-social/linkup/internal/server/accounts"
	"github.com/linkup-social/linkup/internal/server/auth"
	"github.com/linkup-social/linkup/internal/server/config"
	"github.com/linkup-social/linkup/internal/server/httpapi"
	"github.com/linkup-social/linkup/internal/server/notifier"
	"github.com/linkup-social/linkup/internal/server/services"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(c *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	if c.SecretKey == "" {
		return nil, errors.New("secret key is not configured")
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := accounts.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	repo := accounts.NewPostgresRepository(db)
	hasher := auth.NewHasher(auth.DefaultHashCost)
	issuer := auth.NewTokenIssuer([]byte(c.SecretKey), c.TokenValidityDuration)
	mailer := notifier.NewSMTPNotifier(c.SMTPHost, c.SMTPPort, c.SMTPUser, c.SMTPPassword, c.SMTPFrom)

	as := services.NewAuthService(repo, hasher, issuer, mailer, logger, c)
	cs := services.NewContactService(mailer, c.ContactAddr, logger)
	ms := services.NewMediaService(c)

	srv := httpapi.NewServer(c.BindAddr, logger, as, cs, ms, issuer)

	return &App{config: c, logger: logger, db: db, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
