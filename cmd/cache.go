package cmd

import (
	"fmt"

	"github.com/huangsam/solaredge/internal/contract"
	"github.com/huangsam/solaredge/internal/iocache"
	"github.com/spf13/cobra"
)

// cacheCmd focused on the persistent site timezone cache.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the site timezone cache",
	Long: `Manage the persistent cache of site time zones.

Every response carrying naive local times needs the site's time zone, which
would otherwise cost an extra site details request per run. Looked-up zones
are kept under "<siteId>.timezone".

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached data

Examples:
  # Check cache status
  solaredge cache status

  # Clear the cache after moving a site to another zone
  solaredge cache clear`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached site time zones",
	Long: `Delete all cached time zones from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table

Examples:
  # Clear SQLite cache (default)
  solaredge cache clear

  # Clear MySQL cache (set connection string via env variable)
  SOLAREDGE_CACHE_BACKEND=mysql SOLAREDGE_CACHE_DB_CONNECT="..." solaredge cache clear`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := appFromContext(cmd.Context())
		if err != nil {
			return err
		}
		dbFile := sqlitePath(a.cfg.CacheDBConnect, contract.GetCacheDBFilePath())
		if err := iocache.ClearCache(a.cfg.CacheBackend, dbFile, a.cfg.CacheDBConnect); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		cmd.Println("Cache cleared successfully.")
		return nil
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show the backend, entry count, newest and oldest entries and the
table size of the site timezone cache.

Examples:
  solaredge cache status`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := appFromContext(cmd.Context())
		if err != nil {
			return err
		}
		mgr, err := iocache.NewManager(a.cfg.CacheBackend, a.cfg.CacheDBConnect, "", "")
		if err != nil {
			return err
		}
		defer mgr.Close()
		return iocache.WithCacheStore(mgr, func(store contract.CacheStore) error {
			status, err := store.GetStatus()
			if err != nil {
				return fmt.Errorf("failed to get cache status: %w", err)
			}
			iocache.PrintCacheStatus(cmd.OutOrStdout(), status)
			return nil
		})
	},
}

// sqlitePath resolves the file a SQLite backend uses.
func sqlitePath(connStr, fallback string) string {
	if connStr != "" {
		return connStr
	}
	return fallback
}
