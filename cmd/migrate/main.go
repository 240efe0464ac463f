package main

import (
	"context"
	"fmt"
	"os"

	"beststore/internal/config"
	"beststore/internal/database"
	"beststore/internal/logger"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const usage = `usage: migrate [--config path] <up|down|status>

  up      apply all pending migrations
  down    roll back the most recent migration
  status  list migrations and whether they are applied
`

func main() {
	configPath := pflag.StringP("config", "c", "", "optional config file (env vars and .env are always read)")
	pflag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(2)
	}

	cfg := config.Load(*configPath)

	log, err := logger.New(cfg.Server.Env, cfg.Server.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	if err := run(pflag.Arg(0), cfg, log); err != nil {
		log.Error("Migration command failed", zap.String("command", pflag.Arg(0)), zap.Error(err))
		os.Exit(1)
	}
}

func run(command string, cfg *config.Config, log *zap.Logger) error {
	dbService, err := database.New(context.Background(), cfg.Database)
	if err != nil {
		return err
	}
	defer dbService.Close()

	db := dbService.DB()

	switch command {
	case "up":
		return database.RunMigrations(db, log)
	case "down":
		if err := database.RollbackMigration(db, log); err != nil {
			return err
		}
		log.Info("Rolled back one migration")
		return nil
	case "status":
		return database.MigrationStatus(db, log)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}
