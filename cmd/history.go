package cmd

import (
	"errors"
	"fmt"

	"github.com/huangsam/solaredge/internal/contract"
	"github.com/huangsam/solaredge/internal/iocache"
	"github.com/huangsam/solaredge/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var errHistoryDisabled = errors.New("history is disabled. Set --history-backend to record requests")

// historyConfig returns the configured history backend, failing when unset.
func historyConfig(cmd *cobra.Command) (*app, schema.DatabaseBackend, error) {
	a, err := appFromContext(cmd.Context())
	if err != nil {
		return nil, "", err
	}
	if a.cfg.HistoryBackend == "" {
		return nil, "", errHistoryDisabled
	}
	return a, a.cfg.HistoryBackend, nil
}

// withHistoryStore opens the history store for the duration of fn.
func withHistoryStore(cmd *cobra.Command, fn func(a *app, store contract.HistoryStore) error) error {
	a, backend, err := historyConfig(cmd)
	if err != nil {
		return err
	}
	store, err := iocache.NewHistoryStore(backend, a.cfg.HistoryDBConnect)
	if err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}
	defer func() { _ = store.Close() }()
	return fn(a, store)
}

// historyCmd focused on request history management.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the request history and exports",
	Long: `Manage the optional history of API requests made by this client.

When --history-backend is set, every request is recorded with its endpoint,
site, redacted URL, status code, elapsed time and outcome.

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show request history statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all recorded requests
  migrate - Run database schema migrations

Examples:
  # Check history status
  solaredge history status --history-backend sqlite

  # Export for analysis in pandas/DuckDB
  solaredge history export --history-backend sqlite --output-file requests.parquet`,
}

// historyClearCmd clears the request history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded requests",
	Long: `Delete all recorded requests.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  solaredge history export --output-file backup.parquet
  solaredge history clear`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, backend, err := historyConfig(cmd)
		if err != nil {
			return err
		}
		dbFile := sqlitePath(a.cfg.HistoryDBConnect, contract.GetHistoryDBFilePath())
		if err := iocache.ClearHistory(backend, dbFile, a.cfg.HistoryDBConnect); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		cmd.Println("Request history cleared successfully.")
		return nil
	},
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display request history statistics and connection details",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withHistoryStore(cmd, func(a *app, store contract.HistoryStore) error {
			status, err := store.GetStatus()
			if err != nil {
				return fmt.Errorf("failed to get history status: %w", err)
			}
			iocache.PrintHistoryStatus(cmd.OutOrStdout(), status, a.cfg.UseColors)
			return nil
		})
	},
}

// historyExportCmd exports the request history to Parquet.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export request history to Parquet",
	Long: `Export every recorded request to a Parquet file.

Requires: --output-file parameter

Examples:
  solaredge history export --output-file requests.parquet
  duckdb -c "SELECT endpoint, avg(elapsed_ms) FROM read_parquet('requests.parquet') GROUP BY 1"`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withHistoryStore(cmd, func(a *app, store contract.HistoryStore) error {
			if err := iocache.ExecuteHistoryExport(store, a.cfg.OutputFile); err != nil {
				return fmt.Errorf("failed to export history: %w", err)
			}
			return nil
		})
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the request history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  solaredge history migrate

  # Rollback to initial state
  solaredge history migrate --target-version 0`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, backend, err := historyConfig(cmd)
		if err != nil {
			return err
		}
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateHistory(backend, a.cfg.HistoryDBConnect, targetVersion); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		cmd.Println("Migrations applied successfully.")
		return nil
	},
}
