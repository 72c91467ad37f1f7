// Command seeder loads the default car catalog into an empty database.
package main

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"dealership_api/internal/adapters/observability"
	"dealership_api/internal/app"
	"dealership_api/internal/shared"
	mysqlrepo "dealership_api/internal/storage/mysql"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	seeded, err := app.NewCatalogService(mysqlrepo.New(db)).EnsureSeeded(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("catalog seeding failed")
	}
	if !seeded {
		log.Info().Msg("catalog already present, nothing to do")
		return
	}
	log.Info().Msg("seeding completed")
}
