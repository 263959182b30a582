// Package cli provides fichasctl, the command-line client for the catalog.
//
// It opens the same stores as the API server (same environment variables,
// overridable with flags) and runs catalog queries directly against them.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/taibuivan/fichas/internal/bootstrap"
	"github.com/taibuivan/fichas/internal/catalog"
	"github.com/taibuivan/fichas/internal/platform/config"
	"github.com/taibuivan/fichas/internal/platform/constants"
)

// Output formats accepted by --output.
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

// appKey is used to store the app in the command context.
type appKey struct{}

// app is the state shared by every subcommand of one invocation.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	output string

	stores  *bootstrap.Stores
	catalog *catalog.Service
}

// flags holds the persistent overrides of environment configuration.
type flags struct {
	driver      string
	databaseURL string
	sqlitePath  string
	seedPath    string
	redisURL    string
	imageDir    string
	migrations  string
	crossFilter bool
	output      string
	debug       bool
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	opts := &flags{}

	rootCmd := &cobra.Command{
		Use:   "fichasctl",
		Short: "Browse the technical-sheet catalog from the terminal",
		Long: `fichasctl queries the catalog stores directly: facet options, filtered
record pages, single records and their technical-sheet images.

Store settings come from the same environment variables as the API server
(STORE_DRIVER, DATABASE_URL, SQLITE_PATH, SEED_PATH, REDIS_URL, IMAGE_DIR).
Flags override them.`,
		Version: constants.AppVersion,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch {
			case cmd.Name() == "help", cmd.Name() == "completion", cmd.Name() == "__complete":
				return nil
			case cmd.Name() == "version" && cmd.Parent() == cmd.Root():
				return nil
			}

			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			if opts.output != OutputTable && opts.output != OutputJSON {
				return fmt.Errorf("unknown output format %q (use %s or %s)", opts.output, OutputTable, OutputJSON)
			}

			level := slog.LevelWarn
			if opts.debug {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			state := &app{cfg: cfg, logger: logger, output: opts.output}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, state))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	persistent := rootCmd.PersistentFlags()
	persistent.StringVar(&opts.driver, "driver", "", "Record store: postgres, sqlite or memory (env STORE_DRIVER)")
	persistent.StringVar(&opts.databaseURL, "database-url", "", "PostgreSQL URL (env DATABASE_URL)")
	persistent.StringVar(&opts.sqlitePath, "sqlite", "", "SQLite database file (env SQLITE_PATH)")
	persistent.StringVar(&opts.seedPath, "seed", "", "YAML seed for the memory store (env SEED_PATH)")
	persistent.StringVar(&opts.redisURL, "redis-url", "", "Redis URL for the facet cache (env REDIS_URL)")
	persistent.StringVar(&opts.imageDir, "images", "", "Technical-sheet image directory (env IMAGE_DIR)")
	persistent.StringVar(&opts.migrations, "migrations", "", "Migrations directory (env MIGRATION_PATH)")
	persistent.BoolVar(&opts.crossFilter, "cross-filter", false, "Compute facet options under the other facets (env FACET_CROSS_FILTER)")
	persistent.StringVarP(&opts.output, "output", "o", OutputTable, "Output format (table|json)")
	persistent.BoolVar(&opts.debug, "debug", false, "Log store activity to stderr")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{OutputTable, OutputJSON}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("driver", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.DriverPostgres, config.DriverSQLite, config.DriverMemory}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newFacetsCommand())
	rootCmd.AddCommand(newListCommand())
	rootCmd.AddCommand(newShowCommand())
	rootCmd.AddCommand(newImagesCommand())
	rootCmd.AddCommand(newImageCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newMigrateCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// loadConfig reads the environment, then applies the flags the user set.
func loadConfig(cmd *cobra.Command, opts *flags) (*config.Config, error) {
	cfg, err := config.Parse()
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("driver") {
		cfg.StoreDriver = opts.driver
	}
	if changed("database-url") {
		cfg.DatabaseURL = opts.databaseURL
	}
	if changed("sqlite") {
		cfg.SQLitePath = opts.sqlitePath
	}
	if changed("seed") {
		cfg.SeedPath = opts.seedPath
	}
	if changed("redis-url") {
		cfg.RedisURL = opts.redisURL
	}
	if changed("images") {
		cfg.ImageDir = opts.imageDir
	}
	if changed("migrations") {
		cfg.MigrationPath = opts.migrations
	}
	if changed("cross-filter") {
		cfg.FacetCrossFilter = opts.crossFilter
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// run adapts a subcommand body to cobra, handing it the app set up by the
// root command and closing the stores it opened.
func run(body func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a := cmd.Context().Value(appKey{}).(*app)
		defer a.close()
		return body(cmd, a, args)
	}
}

// service opens the stores on first use and returns the catalog service.
func (a *app) service(ctx context.Context) (*catalog.Service, error) {
	if a.catalog != nil {
		return a.catalog, nil
	}

	stores, err := bootstrap.Open(ctx, a.cfg, a.logger)
	if err != nil {
		return nil, err
	}

	a.stores = stores
	a.catalog = stores.CatalogService(a.cfg, a.logger)
	return a.catalog, nil
}

func (a *app) close() {
	if a.stores != nil {
		a.stores.Close()
		a.stores, a.catalog = nil, nil
	}
}
