package main

import (
	"context"
	"flag"
	"os"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/logging"
	"storefront/internal/seed"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	var opts seed.Options
	flag.StringVar(&opts.AdminEmail, "admin-email", os.Getenv(config.EnvPrefix+"_SEED_ADMIN_EMAIL"), "Email of the admin account to create or promote")
	flag.StringVar(&opts.AdminPassword, "admin-password", os.Getenv(config.EnvPrefix+"_SEED_ADMIN_PASSWORD"), "Password for the admin account")
	flag.Parse()

	logger := logging.New(logging.Options{Service: "seed"})
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	logger = logging.New(logging.Options{Service: "seed", Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect db")
	}
	defer pool.Close()

	if err := seed.Apply(ctx, pool, opts, logger); err != nil {
		logger.Fatal().Err(err).Msg("seed apply")
	}

	logger.Info().Msg("seed applied")
}
