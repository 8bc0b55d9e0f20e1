package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tailor-backend/internal/backup"
	"tailor-backend/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.close()
		if a.pool == nil {
			return errors.New("migrate needs the postgres store driver")
		}
		return database.NewMigrator(a.pool, database.Migrations()).RunMigrations(ctx)
	},
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export collections to the configured bucket",
	Long: `Export every collection as JSON to an S3-compatible bucket.

Available subcommands:
  run  - Export all collections now
  list - List stored backup files`,
}

var backupRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Export all collections now",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withExporter(cmd, func(ctx context.Context, e *backup.Exporter) error {
			keys, err := e.Run(ctx)
			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return err
		})
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored backup files",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withExporter(cmd, func(ctx context.Context, e *backup.Exporter) error {
			objects, err := e.List(ctx)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(objects)
		})
	},
}

func withExporter(cmd *cobra.Command, fn func(context.Context, *backup.Exporter) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
	defer cancel()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	client, err := backup.NewS3Client(ctx, a.cfg.Backup)
	if err != nil {
		return err
	}
	if err := fn(ctx, backup.NewExporter(a.store, client, a.cfg.Backup)); err != nil {
		a.log.Error("backup command failed", zap.Error(err))
		return err
	}
	return nil
}
