package seed

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/helpdesk-inc/helpdesk/internal/infrastructure/config"
	"github.com/helpdesk-inc/helpdesk/internal/infrastructure/database"
	"github.com/helpdesk-inc/helpdesk/internal/infrastructure/persistence/seeds"
	"github.com/helpdesk-inc/helpdesk/internal/shared/constants"
	"github.com/helpdesk-inc/helpdesk/internal/shared/logger"
)

var env string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the user directory with development accounts",
		Long:  `Insert one admin, one incharge and one regular user into the user directory. Existing emails are skipped.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", constants.EnvDevelopment, "Environment (development, test, production)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if env == constants.EnvProduction {
		return fmt.Errorf("seeding is disabled in production")
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(cfg.Logger, false); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	created, err := seeds.SeedUsers(database.Get(), seeds.DevelopmentUsers())
	if err != nil {
		log.Errorw("seeding failed", "error", err)
		return err
	}

	log.Infow("user directory seeded", "created", created)
	return nil
}
