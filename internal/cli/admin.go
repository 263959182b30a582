package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taibuivan/fichas/internal/bootstrap"
	"github.com/taibuivan/fichas/internal/catalog"
	"github.com/taibuivan/fichas/internal/platform/config"
	"github.com/taibuivan/fichas/internal/platform/constants"
	"github.com/taibuivan/fichas/internal/platform/migration"
)

func newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <seed.yaml>",
		Short: "Load a YAML seed into the SQL record store",
		Long: `Upsert the records and dependency map rows of a YAML seed into the
postgres or sqlite store. Records with an existing id are overwritten; link
rows already present are kept. The memory store reads its seed at startup
and cannot be imported into.

Set REDIS_URL (or --redis-url) to the server's Redis so the cached facet
options are retired once the import commits.`,
		Example: `  fichasctl --driver sqlite --sqlite ./data/catalog.db import ./data/seed.yaml`,
		Args:    cobra.ExactArgs(1),
		RunE: run(func(cmd *cobra.Command, a *app, args []string) error {
			if a.cfg.StoreDriver == config.DriverMemory {
				return errors.New("the memory store cannot be imported into; point SEED_PATH at the file instead")
			}

			stores, err := bootstrap.Open(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}
			a.stores = stores

			records, rows, err := catalog.LoadSeedFile(args[0], stores.Schema)
			if err != nil {
				return err
			}

			if err := stores.Importer.Import(cmd.Context(), records, rows); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records and %d link rows into %s\n", len(records), len(rows), a.cfg.StoreDriver)
			return nil
		}),
	}
}

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL catalog schema",
		Long: `Apply or inspect the PostgreSQL migrations in MIGRATION_PATH.
The sqlite store creates its tables when it is opened and needs no migration.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			if err := requirePostgres(a.cfg); err != nil {
				return err
			}
			if err := migration.RunUp(a.cfg.DatabaseURL, a.cfg.MigrationPath, a.logger); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show the applied schema version",
		Args:  cobra.NoArgs,
		RunE: run(func(cmd *cobra.Command, a *app, _ []string) error {
			if err := requirePostgres(a.cfg); err != nil {
				return err
			}

			status, err := migration.CurrentVersion(a.cfg.DatabaseURL, a.cfg.MigrationPath, a.logger)
			if err != nil {
				return err
			}

			if a.output == OutputJSON {
				return a.renderer(cmd.OutOrStdout()).json(status)
			}

			switch {
			case status.Pristine:
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No migration applied")
			case status.Dirty:
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Version %d (dirty)\n", status.Version)
			default:
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Version %d\n", status.Version)
			}
			return nil
		}),
	})

	return cmd
}

func requirePostgres(cfg *config.Config) error {
	if cfg.StoreDriver != config.DriverPostgres {
		return fmt.Errorf("migrations only apply to the postgres store, not %q", cfg.StoreDriver)
	}
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "fichasctl v%s\n", constants.AppVersion)
		},
	}
}
