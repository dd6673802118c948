package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"Gin_postgres_redis_library/app"
	"Gin_postgres_redis_library/db"

	"github.com/spf13/cobra"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Import books from a JSON file; existing titles get their copies increased",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(seedFile)
		if err != nil {
			return fmt.Errorf("open seed file: %w", err)
		}
		defer f.Close()

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

		ok, failed, err := app.SeedCatalog(cmd.Context(), db.NewRepo(conn), f)
		if err != nil {
			return err
		}
		slog.Info("seed finished", "imported", ok, "failed", failed)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "books.json", "JSON array of books")
}
