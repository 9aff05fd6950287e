package main

import (
	"context"
	"flag"
	"time"

	"github.com/stemsi/candidate-assessment/internal/bootstrap"
	"github.com/stemsi/candidate-assessment/internal/config"
	"github.com/stemsi/candidate-assessment/internal/logger"
	"github.com/stemsi/candidate-assessment/internal/seed"
)

func main() {
	force := flag.Bool("force", false, "Upsert the fixture even if it is already present")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, closeStore, err := bootstrap.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("Failed to open store")
	}
	defer closeStore()

	loaded, err := seed.Load(ctx, store, *force, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Seeding failed")
	}
	if !loaded {
		log.Info().Msg("Fixture already present. Use -force to overwrite")
	}
}
