package contract

import (
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/solaredge/schema"
)

// Default values for configuration.
const (
	DefaultBaseURL   = "https://monitoringapi.solaredge.com"
	DefaultTimeout   = 10 * time.Second
	DefaultMemoSize  = 0
	DefaultRateLimit = 0.0
	DefaultLookback  = 7 // days
)

// Config holds the validated settings for a run.
type Config struct {
	APIKey     string
	SiteID     string
	BaseURL    string
	Timeout    time.Duration
	Output     schema.OutputMode
	OutputFile string
	UseColors  bool
	Verbose    bool
	Quiet      bool

	// Response post-processing toggles.
	Datetime      bool
	Tabular       bool
	TimezoneCache bool

	// MemoSize bounds the per-client memo cache. Zero keeps it unbounded.
	MemoSize int
	// RateLimit caps outgoing requests per second. Zero disables limiting.
	RateLimit float64

	CacheBackend     schema.DatabaseBackend
	CacheDBConnect   string
	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	APIKey     string `mapstructure:"api-key"`
	SiteID     string `mapstructure:"site-id"`
	BaseURL    string `mapstructure:"base-url"`
	Timeout    string `mapstructure:"timeout"`
	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Color      string `mapstructure:"color"`
	Verbose    bool   `mapstructure:"verbose"`
	Quiet      bool   `mapstructure:"quiet"`

	Datetime      string `mapstructure:"datetime"`
	Tabular       string `mapstructure:"tabular"`
	TimezoneCache string `mapstructure:"timezone-cache"`

	MemoSize  int     `mapstructure:"memo-size"`
	RateLimit float64 `mapstructure:"rate-limit"`

	CacheBackend     string `mapstructure:"cache-backend"`
	CacheDBConnect   string `mapstructure:"cache-db-connect"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`
}

// ProcessAndValidate reads input and populates cfg.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateToggles(cfg, input); err != nil {
		return err
	}
	return validateBackendConfigs(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates the scalar fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.APIKey = strings.TrimSpace(input.APIKey)
	cfg.SiteID = strings.TrimSpace(input.SiteID)
	cfg.OutputFile = input.OutputFile
	cfg.Verbose = input.Verbose
	cfg.Quiet = input.Quiet

	if input.Verbose && input.Quiet {
		return fmt.Errorf("--verbose and --quiet cannot be used together")
	}

	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(input.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if !strings.HasPrefix(cfg.BaseURL, "http://") && !strings.HasPrefix(cfg.BaseURL, "https://") {
		return fmt.Errorf("base-url must start with http:// or https:// (received %q)", input.BaseURL)
	}

	cfg.Timeout = DefaultTimeout
	if input.Timeout != "" {
		d, err := time.ParseDuration(input.Timeout)
		if err != nil {
			return fmt.Errorf("invalid --timeout value: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("timeout must be greater than 0 (received %s)", d)
		}
		cfg.Timeout = d
	}

	output := strings.ToLower(input.Output)
	if output == "" {
		output = string(schema.JSONOut)
	}
	cfg.Output = schema.OutputMode(output)
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be json, table, pandas, csv, text, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	colors, err := parseBoolDefault(input.Color, true)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.MemoSize < 0 {
		return fmt.Errorf("memo-size must be 0 or greater (received %d)", input.MemoSize)
	}
	cfg.MemoSize = input.MemoSize

	if input.RateLimit < 0 {
		return fmt.Errorf("rate-limit must be 0 or greater (received %g)", input.RateLimit)
	}
	cfg.RateLimit = input.RateLimit

	return nil
}

// validateToggles parses the response processing switches. All default to on.
func validateToggles(cfg *Config, input *ConfigRawInput) error {
	var err error
	if cfg.Datetime, err = parseBoolDefault(input.Datetime, true); err != nil {
		return fmt.Errorf("invalid --datetime value: %w", err)
	}
	if cfg.Tabular, err = parseBoolDefault(input.Tabular, true); err != nil {
		return fmt.Errorf("invalid --tabular value: %w", err)
	}
	if cfg.TimezoneCache, err = parseBoolDefault(input.TimezoneCache, true); err != nil {
		return fmt.Errorf("invalid --timezone-cache value: %w", err)
	}
	return nil
}

// validateBackendConfigs validates cache and history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cacheBackend := input.CacheBackend
	if cacheBackend == "" {
		cacheBackend = string(schema.SQLiteBackend)
	}
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(cacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- History Backend Validation ---
	cfg.HistoryBackend = schema.DatabaseBackend(strings.ToLower(input.HistoryBackend))
	if cfg.HistoryBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return fmt.Errorf("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return err
	}

	// Cache clearing removes the SQLite file, so the two stores must not share one.
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.HistoryBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		historyDBPath := cfg.HistoryDBConnect
		if historyDBPath == "" {
			historyDBPath = GetHistoryDBFilePath()
		}
		if cacheDBPath == historyDBPath {
			return fmt.Errorf("cache and history storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}

	return nil
}

func parseBoolDefault(s string, fallback bool) (bool, error) {
	if s == "" {
		return fallback, nil
	}
	return ParseBoolString(s)
}
