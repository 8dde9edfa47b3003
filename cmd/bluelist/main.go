package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/bluelist/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "bluelist",
	Short:   "REST gateway for items with signed S3 upload policies",
	Long: `bluelist serves CRUD routes over an Item resource backed by a
document store (sqlite, postgres or dynamodb) and issues short-lived,
HMAC-signed S3 POST policies for browser uploads.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFiles, _ := cmd.Flags().GetStringSlice("config")

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg.Env, cfg.Log.Level)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSlice("config", nil, "config file path(s), merged left to right (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("db-type", "", "database type: sqlite, postgres, dynamodb (env: BLUELIST_DATABASE_TYPE)")
	rootCmd.PersistentFlags().String("db-dsn", "", "database connection string (env: BLUELIST_DATABASE_DSN)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: BLUELIST_LOG_LEVEL)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
