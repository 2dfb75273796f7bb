package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"userswitch/auth"
	"userswitch/config"
	"userswitch/db"
	"userswitch/fields"
	"userswitch/nonce"
	"userswitch/session"
	"userswitch/switcher"
	"userswitch/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the account area HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func newLogger(w io.Writer, cfg config.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(os.Stderr, cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("bootstrap database pool: %w", err)
	}
	defer pool.Close()

	repo := auth.NewRepository(pool)
	sessions := session.NewManager(session.NewStore(pool), cfg.SessionSecret, cfg.SessionTTL)
	handler := newHandler(ctx, cfg, repo, sessions, logger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("account area listening", "addr", cfg.HTTPAddr, "account_path", cfg.AccountPath)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()
	logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newHandler wires the account area on top of an account repository and a
// session manager.
func newHandler(ctx context.Context, cfg config.Config, repo auth.Repository, sessions *session.Manager, logger *slog.Logger) http.Handler {
	accounts := auth.NewService(repo)
	tokens := nonce.NewIssuer(cfg.NonceSecret, cfg.NonceTTL)

	flow := switcher.NewFlow(repo, sessions, tokens, switcher.Config{
		AccountURL: cfg.AccountPath,
		AdminURL:   cfg.AdminURL,
		PageSize:   cfg.PageSize,
	}, logger)

	registry := fields.NewRegistry()
	flow.RegisterFields(registry)

	limit := web.DefaultRateLimitConfig()
	if cfg.RateLimit > 0 {
		limit.Rate = rate.Limit(cfg.RateLimit)
	}
	if cfg.RateBurst > 0 {
		limit.Burst = cfg.RateBurst
	}

	return web.NewServer(flow, accounts, sessions, registry, limit, logger).Handler(ctx)
}
