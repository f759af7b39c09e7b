// Package app wires configuration, logging and the database together and
// brings the relation schema up to date.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/tablestore/internal/config"
	"github.com/dmitrijs2005/tablestore/logging"
	"github.com/dmitrijs2005/tablestore/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Seams for tests.
var (
	openDB        = sql.Open
	runMigrations = migrations.Up
	logOutput     = io.Writer(os.Stdout)
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
}

// NewApp builds the logger and the connection pool. It does not connect yet.
func NewApp(c *config.Config) (*App, error) {
	logger, err := logging.NewJSON(logOutput, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, err := openDB("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	db.SetMaxOpenConns(c.MaxOpenConns)

	return &App{config: c, logger: logger, db: db}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run checks the connection and applies pending migrations within the
// configured timeout. The pool is closed on return.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithTimeout(ctx, app.config.Timeout)
	defer cancelFunc()
	defer app.db.Close()

	app.initSignalHandler(cancelFunc)
	app.logger.Info(ctx, "Starting migrations...")

	if err := app.db.PingContext(ctx); err != nil {
		app.logger.Error(ctx, "database unreachable", "error", err)
		return fmt.Errorf("db ping error: %w", err)
	}
	if err := runMigrations(ctx, app.db); err != nil {
		app.logger.Error(ctx, "migrations failed", "error", err)
		return fmt.Errorf("migrations error: %w", err)
	}

	app.logger.Info(ctx, "Schema is up to date")
	return nil
}
