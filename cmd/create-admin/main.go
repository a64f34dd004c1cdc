// Command create-admin provisions an administrator account and, with -seed,
// the demo ideas shown on a fresh installation.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"eco_city/internal/domain/repository"
	"eco_city/internal/platform/config"
	"eco_city/internal/platform/database"
	"eco_city/internal/platform/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, "text")

	opts := options{City: cfg.DefaultCity}
	flag.StringVar(&opts.Username, "username", cfg.AdminUsername, "administrator username")
	flag.StringVar(&opts.Email, "email", cfg.AdminEmail, "administrator email")
	flag.StringVar(&opts.Password, "password", cfg.AdminPassword, "administrator password")
	flag.BoolVar(&opts.Seed, "seed", false, "insert demo ideas when the ledger is empty")
	flag.Parse()

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		logger.Error("database unavailable", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		logger.Error("migration failed", "err", err)
		os.Exit(1)
	}

	var res *result
	err = repository.WithTx(ctx, db, func(tx repository.DBTX) error {
		var err error
		res, err = provision(ctx, repository.NewPgAccountRepository(tx), repository.NewPgIdeaRepository(tx), opts)
		return err
	})
	if err != nil {
		logger.Error("provisioning failed", "err", err)
		os.Exit(1)
	}

	logger.Info("administrator ready",
		"username", res.Admin.Username,
		"account_id", res.Admin.ID,
		"created", res.CreatedAdmin,
		"seeded_ideas", res.SeededIdeas,
	)
}
