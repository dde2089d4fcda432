package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/sharebook/internal/cli"
	"github.com/Veraticus/sharebook/internal/storage"
	"github.com/spf13/cobra"
)

func (a *app) migrateCmd() *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

Every other command migrates automatically; this one is useful to check the
schema version or to upgrade a database ahead of time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			dbPath := a.cfg.DatabasePath

			if err := a.requireUser(ctx); err != nil {
				return err
			}
			store, err := storage.NewSQLiteStorage(dbPath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = store.Close() }()

			out := cmd.OutOrStdout()
			current, err := store.SchemaVersion(ctx)
			if err != nil {
				return err
			}

			if status {
				fmt.Fprintln(out, cli.FormatTitle("Database Migration Status"))
				fmt.Fprintf(out, "Database:        %s\n", dbPath)
				fmt.Fprintf(out, "Current version: %d\n", current)
				fmt.Fprintf(out, "Latest version:  %d\n", storage.ExpectedSchemaVersion)
				if current < storage.ExpectedSchemaVersion {
					fmt.Fprintln(out, cli.FormatWarning("Run 'sharebook migrate' to upgrade."))
				}
				return nil
			}

			slog.Info("Running database migrations", "database", dbPath, "from_version", current)
			if err := store.Migrate(ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Database is at schema version %d", storage.ExpectedSchemaVersion)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "Show current migration status without applying changes")
	return cmd
}
