package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/example/baby-pool/internal/application"
	"github.com/example/baby-pool/internal/config"
	"github.com/example/baby-pool/internal/logging"
	"github.com/example/baby-pool/internal/persistence/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(cli{
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		loadConfig: config.Load,
		now:        time.Now,
	})
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// cli carries what every subcommand needs from the process. Tests replace
// the config loader and the clock.
type cli struct {
	stdout     io.Writer
	stderr     io.Writer
	loadConfig func() (config.Config, error)
	now        func() time.Time
}

func newRootCmd(c cli) *cobra.Command {
	root := &cobra.Command{
		Use:          "babypool",
		Short:        "Baby pool prediction server",
		SilenceUsage: true,
	}
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)

	root.AddCommand(c.serveCmd())
	root.AddCommand(c.settingsCmd())
	root.AddCommand(c.guessesCmd())
	root.AddCommand(c.sessionsCmd())
	root.AddCommand(c.convertCmd())
	root.AddCommand(c.pickCmd())
	return root
}

// app is the wired set of services shared by the subcommands.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	storage *sqlite.Storage

	settings *application.SettingsService
	auth     *application.AuthService
	guesses  *application.GuessService
	calendar *application.CalendarService
}

func (c cli) openApp(ctx context.Context) (*app, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logger, err := logging.New(c.stderr, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}

	storage, err := sqlite.Open(cfg.SQLiteDSN(), sqlite.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	if err := storage.Migrate(ctx); err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	return newApp(cfg, logger, storage, c.now), nil
}

func newApp(cfg config.Config, logger *slog.Logger, storage *sqlite.Storage, now func() time.Time) *app {
	if now == nil {
		now = time.Now
	}
	loc := cfg.Location()

	settings := application.NewSettingsServiceWithLogger(newSettingsRepositoryAdapter(storage), now, logger)
	guessRepo := newGuessRepositoryAdapter(storage)
	tokenGenerator := func() string { return randomHex(32) }

	return &app{
		cfg:      cfg,
		logger:   logger,
		storage:  storage,
		settings: settings,
		auth:     application.NewAuthServiceWithLogger(settings, newSessionRepositoryAdapter(storage), nil, uuid.NewString, tokenGenerator, now, cfg.SessionTTL, logger),
		guesses:  application.NewGuessServiceWithLogger(guessRepo, settings, now, loc, logger),
		calendar: application.NewCalendarServiceWithLogger(guessRepo, loc, logger),
	}
}

// seed stores configured defaults for any setting not yet in the registry.
func (a *app) seed(ctx context.Context) error {
	added, err := a.settings.Seed(ctx, application.SeedDefaults{
		TimeBlockMinutes: a.cfg.TimeBlockMinutes,
		MaxBlockMinutes:  a.cfg.MaxBlockMinutes,
		DueDate:          a.cfg.DueDate,
		AllowSurprise:    a.cfg.AllowSurprise,
		SitePassword:     a.cfg.SitePassword,
	})
	if err != nil {
		return err
	}
	if added > 0 {
		a.logger.InfoContext(ctx, "settings registry initialised", "added", added)
	}
	return nil
}

func (a *app) Close() error {
	return a.storage.Close()
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
