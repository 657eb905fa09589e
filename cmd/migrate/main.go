package main

import (
	"context"
	"flag"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/segyhp/installment-service/internal/config"
	"github.com/segyhp/installment-service/internal/migrate"
	"github.com/segyhp/installment-service/pkg/logger"
)

func main() {
	ctx := context.Background()
	log := logger.New(logger.Options{ServiceName: "installment-migrate"})

	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|redo|reset|to")
	version := flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=to")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Error(ctx, "failed to load configuration", err)
		os.Exit(1)
	}

	log = logger.New(logger.Options{
		ServiceName: "installment-migrate",
		Level:       logger.ParseLevel(cfg.Logging.Level),
		Format:      cfg.Logging.Format,
	})
	ctx = log.WithField(ctx, "cmd", *cmd)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Error(ctx, "failed to connect to database", err)
		os.Exit(1)
	}
	defer db.Close()

	if *cmd == "to" {
		err = migrate.MigrateToVersion(ctx, db.DB, *version)
	} else {
		err = migrate.Run(ctx, db.DB, *cmd)
	}
	if err != nil {
		log.Error(ctx, "migration failed", err)
		db.Close()
		os.Exit(1)
	}

	log.Info(ctx, "migration finished")
}
