package main

import (
	"context"
	"net/http"

	"exercisehub/internal/app/exercises"
	"exercisehub/internal/app/interactions"
	"exercisehub/internal/app/ratings"
	"exercisehub/internal/app/users"
	"exercisehub/internal/config"
	"exercisehub/internal/http/middleware"
	"exercisehub/internal/httpapi"
	"exercisehub/internal/ratelimit"
	"exercisehub/internal/session"
	"exercisehub/internal/store"
)

func newHTTPHandler(cfg *config.Config, dataStore *store.Store, resolver *session.Resolver, authLimiter *ratelimit.KeyedRateLimiter) http.Handler {
	userSvc := users.New(dataStore)
	exerciseSvc := exercises.New(dataStore)
	interactionSvc := interactions.New(dataStore)
	ratingSvc := ratings.New(dataStore)

	api := httpapi.New(userSvc, exerciseSvc, interactionSvc, ratingSvc, resolver, authLimiter)
	return middleware.CORS(cfg.CORS.AllowedOrigins)(api.Routes())
}

// newSessionStore picks the session backend named in the configuration.
func newSessionStore(ctx context.Context, cfg *config.Config, dataStore *store.Store) (session.Store, func() error, error) {
	if cfg.Session.Backend != config.SessionBackendRedis {
		return dataStore, func() error { return nil }, nil
	}

	rdb, err := session.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password)
	if err != nil {
		return nil, nil, err
	}
	return session.NewRedisStore(rdb), rdb.Close, nil
}
