// Package main runs the account API server: user sign up, login and account
// management over HTTP, backed by PostgreSQL.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/account-api/internal/config"
	"github.com/phrazzld/account-api/internal/platform/logger"
	"github.com/phrazzld/account-api/internal/platform/postgres"
	"github.com/phrazzld/account-api/internal/platform/tracing"
)

// flags holds the parsed command line.
type flags struct {
	configFile string
	migrate    string
}

func parseFlags(args []string, output io.Writer) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("account-api", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&f.configFile, "config", "", "path to a YAML config file (default ./config.yaml if present)")
	fs.StringVar(&f.migrate, "migrate", "", fmt.Sprintf("run a migration command and exit: %v", postgres.MigrationCommands))

	if err := fs.Parse(args); err != nil {
		return flags{}, err
	}
	return f, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		slog.Error("account-api exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run loads configuration, sets up logging, tracing and the database, then
// either executes a migration command or serves HTTP until ctx is done.
func run(ctx context.Context, args []string) error {
	f, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	cfg, err := config.LoadWithOptions(config.Options{ConfigFile: f.configFile})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(logger.Config{Level: cfg.Server.LogLevel})
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Bool("redis_enabled", cfg.Redis.Enabled()),
		slog.Bool("tracing_enabled", cfg.Tracing.Endpoint != ""))

	db, err := setupAppDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}

	if f.migrate != "" {
		defer func() { _ = db.Close() }()
		return postgres.Migrate(ctx, db, f.migrate, log)
	}

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	app, err := newApplication(ctx, cfg, log, db)
	if err != nil {
		_ = db.Close()
		_ = shutdownTracing(context.Background())
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	app.shutdownTracing = shutdownTracing

	return app.Run(ctx)
}
