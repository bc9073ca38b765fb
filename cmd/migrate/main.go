package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"exercisehub/internal/logging"
	"exercisehub/internal/store"
)

func main() {
	logging.SetGlobalLogger(logging.New(logging.Config{Format: "text", Output: os.Stderr}))

	if len(os.Args) != 2 || (os.Args[1] != "up" && os.Args[1] != "down") {
		log.Fatal().Msg("usage: migrate [up|down]")
	}

	_ = godotenv.Load("config/local.env")

	dsn, err := databaseURL()
	if err != nil {
		log.Fatal().Err(err).Msg("missing database configuration")
	}

	if os.Args[1] == "up" {
		if err := store.Migrate(dsn); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		log.Info().Msg("migrations applied successfully")
		return
	}

	if err := store.MigrateDown(dsn); err != nil {
		log.Fatal().Err(err).Msg("failed to roll back migrations")
	}
	log.Info().Msg("migrations rolled back successfully")
}

// databaseURL prefers DATABASE_URL and falls back to the DB_* variables.
func databaseURL() (string, error) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn, nil
	}

	user, name := os.Getenv("DB_USER"), os.Getenv("DB_NAME")
	if user == "" || name == "" {
		return "", fmt.Errorf("DATABASE_URL or DB_USER and DB_NAME must be set")
	}

	host := envOrDefault("DB_HOST", "localhost")
	port := envOrDefault("DB_PORT", "5432")
	sslMode := envOrDefault("DB_SSLMODE", "disable")
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		user, os.Getenv("DB_PASSWORD"), host, port, name, sslMode), nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
