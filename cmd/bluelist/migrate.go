package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sagarc03/bluelist/config"
	"github.com/sagarc03/bluelist/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the document store tables",
	Long: `Create the items table (sqlite, postgres) or the DynamoDB table
if missing, then validate its schema.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	if err := database.Migrate(cmd.Context(), cfg.Database); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	slog.Info("database migration complete", "type", cfg.Database.Type)
	return nil
}
