package cmd

import (
	"log/slog"

	"Gin_postgres_redis_library/app"
	"Gin_postgres_redis_library/db"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := app.Open(app.LoadConfig())
		if err != nil {
			return err
		}
		if sqlDB, err := conn.DB(); err == nil {
			defer sqlDB.Close()
		}
		if err := db.Migrate(conn); err != nil {
			return err
		}
		slog.Info("schema up to date")
		return nil
	},
}
