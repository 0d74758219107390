package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/huangsam/solaredge/internal/contract"
	"github.com/huangsam/solaredge/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:   "solaredge",
	Short: "Query the SolarEdge monitoring API from the command line.",
	Long: `SolarEdge calls the public monitoring API at https://monitoringapi.solaredge.com
and prints the responses as JSON, tables, CSV or Parquet.

Configuration can be supplied through flags, SOLAREDGE_* environment variables
or a .solaredge.yaml file in the current or home directory.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	PersistentPreRunE:  setupApp,
	PersistentPostRunE: teardownApp,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Set environment variable prefix
	viper.SetEnvPrefix("SOLAREDGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("base-url", contract.DefaultBaseURL)
	viper.SetDefault("timeout", contract.DefaultTimeout.String())
	viper.SetDefault("output", schema.JSONOut)
	viper.SetDefault("memo-size", contract.DefaultMemoSize)
	viper.SetDefault("rate-limit", contract.DefaultRateLimit)
	viper.SetDefault("cache-backend", schema.SQLiteBackend)
	viper.SetDefault("history-backend", "")
	viper.SetDefault("datetime", "yes")
	viper.SetDefault("tabular", "yes")
	viper.SetDefault("timezone-cache", "yes")
	viper.SetDefault("color", "yes")
}

// loadConfigFile handles config file loading logic common to all commands.
func loadConfigFile() error {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".solaredge")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}
	return nil
}

// loadConfig merges defaults, file, env and flags into a validated Config.
func loadConfig() (*contract.Config, error) {
	if err := loadConfigFile(); err != nil {
		return nil, err
	}

	input := &contract.ConfigRawInput{}
	if err := viper.Unmarshal(input); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}

	cfg := &contract.Config{}
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
