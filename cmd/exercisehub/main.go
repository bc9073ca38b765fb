package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"exercisehub/internal/config"
	"exercisehub/internal/logging"
	"exercisehub/internal/ratelimit"
	"exercisehub/internal/session"
	"exercisehub/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stdout,
	})
	logging.SetGlobalLogger(logger)

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.Migrate(cfg.Database.URL); err != nil {
		return err
	}
	log.Info().Msg("database migrations applied")

	dataStore := store.New(db)

	if purged, err := dataStore.PurgeExpiredSessions(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to purge expired sessions")
	} else if purged > 0 {
		log.Info().Int64("count", purged).Msg("purged expired sessions")
	}

	if cfg.SeedDemoData {
		if err := bootstrapDemoData(ctx, dataStore); err != nil {
			return err
		}
	}

	sessionStore, closeSessions, err := newSessionStore(ctx, cfg, dataStore)
	if err != nil {
		return err
	}
	defer closeSessions()

	secret := []byte(cfg.Security.JWTSecret)
	resolver := session.NewResolver(
		session.NewTokenManager(secret),
		sessionStore,
		session.NewCookieStore(secret, cfg.Session.TTL, cfg.Session.CookieSecure),
		cfg.Session.TTL,
	)

	authLimiter := ratelimit.PerMinute(cfg.Security.AuthRateLimit)
	defer authLimiter.Stop()

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           newHTTPHandler(cfg, dataStore, resolver, authLimiter),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("session_backend", cfg.Session.Backend).
			Msg("API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("server exited")
	return nil
}
