package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Isaias789672/chef-ai-recipes/internal/config"
	"github.com/Isaias789672/chef-ai-recipes/internal/database"
	"github.com/Isaias789672/chef-ai-recipes/internal/logging"
	"github.com/rs/zerolog/log"
)

func main() {
	down := flag.Bool("down", false, "roll back the most recent migration instead of migrating up")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(&cfg.Logging, cfg.Server.Env)

	if *down {
		if err := database.RollbackMigration(cfg.Database.URL); err != nil {
			log.Fatal().Err(err).Msg("Rollback failed")
		}
		return
	}

	if err := database.RunMigrations(cfg.Database.URL); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}
