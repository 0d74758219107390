// Package cmd defines the command-line interface for solaredge.
package cmd

import (
	"github.com/huangsam/solaredge/internal/contract"
	"github.com/huangsam/solaredge/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// One subcommand per monitoring endpoint
	for _, ep := range endpoints {
		rootCmd.AddCommand(newEndpointCmd(ep))
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(historyCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("api-key", "", "SolarEdge API key")
	rootCmd.PersistentFlags().String("site-id", "", "Default site ID when none is given as argument")
	rootCmd.PersistentFlags().String("base-url", contract.DefaultBaseURL, "Monitoring API base URL")
	rootCmd.PersistentFlags().String("timeout", contract.DefaultTimeout.String(), "HTTP request timeout")
	rootCmd.PersistentFlags().StringP("output", "f", string(schema.JSONOut), "Output format: json or table or pandas or csv or text or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose logging messages (debug level)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Quiet mode, only fatal messages are logged")
	rootCmd.PersistentFlags().String("datetime", "yes", "Convert date-time strings into time zone aware instants (yes/no)")
	rootCmd.PersistentFlags().String("tabular", "yes", "Build a table from the response for table/csv/text output (yes/no)")
	rootCmd.PersistentFlags().String("timezone-cache", "yes", "Keep site time zones in the persistent cache (yes/no)")
	rootCmd.PersistentFlags().Int("memo-size", contract.DefaultMemoSize, "Bound the in-process memo cache (0 = unbounded)")
	rootCmd.PersistentFlags().Float64("rate-limit", contract.DefaultRateLimit, "Maximum requests per second (0 = unlimited)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("history-backend", "", "Request history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for request history (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
