// cmd/migrate applies or reverts the SQL migrations in MIGRATIONS_PATH.
//
//	migrate up
//	migrate down [steps]
package main

import (
	"os"
	"strconv"
	"time"

	"github.com/crisgp1/orodetamar-sub000/internal/config"
	"github.com/crisgp1/orodetamar-sub000/internal/infra"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "up":
		if err := infra.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("migrate up failed")
		}
	case "down":
		steps := 1
		if len(os.Args) > 2 {
			if steps, err = strconv.Atoi(os.Args[2]); err != nil || steps <= 0 {
				log.Fatal().Str("steps", os.Args[2]).Msg("steps must be a positive integer")
			}
		}
		if err := infra.RollbackMigrations(cfg.DatabaseURL, cfg.MigrationsPath, steps); err != nil {
			log.Fatal().Err(err).Msg("migrate down failed")
		}
		log.Info().Int("steps", steps).Msg("migrations reverted")
	default:
		log.Fatal().Str("command", cmd).Msg("usage: migrate up | migrate down [steps]")
	}
}
