package cmd

import (
	"fmt"

	"fieldstock/internal/config"
	"fieldstock/internal/core/logger"
	"fieldstock/internal/database/migration"

	"github.com/spf13/cobra"
)

var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run migrations manually.",
	Long:  `Applies every pending migration from --dir against DATABASE_URL.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.Database.URL == "" {
			return fmt.Errorf("missing required configuration: DATABASE_URL")
		}

		log := logger.NewLoggerWithLevel(cfg.Log.Level)
		defer func() { _ = log.Sync() }()

		migrationDir, _ := cmd.Flags().GetString("dir")
		source, err := migration.SourceURL(migrationDir)
		if err != nil {
			return err
		}

		if err := migration.Migrate(cfg.Database.URL, source, true, log); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}

		return nil
	},
}
