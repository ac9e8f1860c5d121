package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"askly/internal/pkg/logger"
	"askly/internal/platform/config"
	"askly/internal/platform/database"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	flag.Parse()

	if *direction != "up" && *direction != "down" {
		fmt.Fprintln(os.Stderr, "invalid direction: must be 'up' or 'down'")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	closer := logger.Init(cfg.Logging)
	defer closer.Close()

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := database.Migrate(db, *direction); err != nil {
		log.Fatal().Err(err).Str("direction", *direction).Msg("Migration failed")
	}

	log.Info().Str("direction", *direction).Msg("Migration completed successfully")
}
