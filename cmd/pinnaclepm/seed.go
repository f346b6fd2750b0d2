package main

import (
	"context"
	"fmt"

	"pinnaclepm/internal/db"
	"pinnaclepm/internal/seed"
	"pinnaclepm/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the default settings and the admin user",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logrus.Info("Connected to database")

		logrus.Info("Seeding default settings...")
		if err := seed.SeedDefaultSettings(ctx, store.NewSettingsRepository(pool)); err != nil {
			return fmt.Errorf("failed to seed settings: %w", err)
		}

		logrus.Info("Seeding admin user...")
		if err := seed.SeedAdminUser(ctx, store.NewAdminRepository(pool), cfg.AdminSeedEmail, cfg.AdminSeedPassword); err != nil {
			return fmt.Errorf("failed to seed admin user: %w", err)
		}

		return nil
	},
}
