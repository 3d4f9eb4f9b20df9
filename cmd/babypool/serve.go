package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	httptransport "github.com/example/baby-pool/internal/http"
	"github.com/example/baby-pool/internal/metrics"
)

func (c cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := c.openApp(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := a.Close(); cerr != nil {
					a.logger.Error("failed to close storage", "error", cerr)
				}
			}()

			if err := a.seed(ctx); err != nil {
				return err
			}
			return a.serve(ctx)
		},
	}
}

func (a *app) handler(rec *metrics.Recorder) http.Handler {
	var limiter *httptransport.RateLimiter
	if a.cfg.LoginRatePerMinute > 0 {
		limiter = httptransport.NewRateLimiter(a.cfg.LoginRatePerMinute, a.cfg.LoginBurst)
	}

	return httptransport.NewRouter(httptransport.RouterConfig{
		Auth:           httptransport.NewAuthHandler(a.auth, rec, a.logger),
		Settings:       httptransport.NewSettingsHandler(a.settings, a.logger),
		Guesses:        httptransport.NewGuessHandler(a.guesses, rec, a.logger),
		Calendar:       httptransport.NewCalendarHandler(a.calendar, a.logger),
		Weight:         httptransport.NewWeightHandler(a.logger),
		Sessions:       a.auth,
		LoginLimiter:   limiter,
		Health:         a.storage,
		Metrics:        rec,
		MetricsEnabled: a.cfg.MetricsEnabled,
		StaticDir:      a.cfg.StaticDir,
		Logger:         a.logger,
	})
}

func (a *app) serve(ctx context.Context) error {
	var rec *metrics.Recorder
	if a.cfg.MetricsEnabled {
		rec = metrics.New()
	}

	server := &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           a.handler(rec),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	if a.cfg.SessionSweepInterval > 0 {
		go runSessionSweeper(ctx, a.auth, a.cfg.SessionSweepInterval, a.logger)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	a.logger.Info("baby pool API listening", "addr", server.Addr, "time_zone", a.cfg.Location().String())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve http: %w", err)
	}
	return nil
}

type sessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// runSessionSweeper deletes expired sessions every interval until ctx ends.
func runSessionSweeper(ctx context.Context, purger sessionPurger, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := purger.PurgeExpired(ctx); err != nil && ctx.Err() == nil {
				logger.WarnContext(ctx, "session sweep failed", "error", err)
			}
		}
	}
}
