package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/huangsam/solaredge/internal/api"
	"github.com/huangsam/solaredge/internal/contract"
	"github.com/huangsam/solaredge/internal/iocache"
	"github.com/huangsam/solaredge/internal/outwriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries everything a command needs. It is built once per invocation
// and handed to handlers through the command context.
type app struct {
	cfg    *contract.Config
	logger *log.Logger
	out    *outwriter.OutWriter

	// Set by connect for commands that talk to the API.
	stores *iocache.CacheStoreManager
	client *api.Client
}

type ctxKey int

const (
	loggerKey ctxKey = iota
	appKey
)

// newLogger creates a logger with timestamp formatting.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// logLevel maps --verbose and --quiet to a level. Quiet wins.
func logLevel(cfg *contract.Config) log.Level {
	switch {
	case cfg.Quiet:
		return log.FatalLevel
	case cfg.Verbose:
		return log.DebugLevel
	default:
		return log.WarnLevel
	}
}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the attached logger, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

func withApp(ctx context.Context, a *app) context.Context {
	return context.WithValue(ctx, appKey, a)
}

func appFromContext(ctx context.Context) (*app, error) {
	if a, ok := ctx.Value(appKey).(*app); ok {
		return a, nil
	}
	return nil, errors.New("command context was not initialized")
}

// setupApp loads configuration and attaches the app to the command context.
func setupApp(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), logLevel(cfg))
	a := &app{
		cfg:    cfg,
		logger: logger,
		out:    outwriter.NewOutWriter(logger).WithWidth(viper.GetInt("width")),
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withApp(withLogger(ctx, logger), a))
	return nil
}

// teardownApp releases the stores opened by connect.
func teardownApp(cmd *cobra.Command, _ []string) error {
	if a, err := appFromContext(cmd.Context()); err == nil {
		a.close()
	}
	return nil
}

// connect opens the stores and builds the API client.
func (a *app) connect() error {
	if a.client != nil {
		return nil
	}
	if a.cfg.APIKey == "" {
		return api.ErrMissingAPIKey
	}

	stores, err := iocache.NewManager(a.cfg.CacheBackend, a.cfg.CacheDBConnect, a.cfg.HistoryBackend, a.cfg.HistoryDBConnect)
	if err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}

	client, err := api.NewClient(a.cfg.APIKey,
		api.WithBaseURL(a.cfg.BaseURL),
		api.WithTimeout(a.cfg.Timeout),
		api.WithLogger(a.logger),
		api.WithCacheManager(stores),
		api.WithMemoSize(a.cfg.MemoSize),
		api.WithRateLimit(a.cfg.RateLimit),
		api.WithDatetime(a.cfg.Datetime),
		api.WithTabular(a.cfg.Tabular),
		api.WithTimezoneCache(a.cfg.TimezoneCache),
		api.WithVersion(version),
	)
	if err != nil {
		stores.Close()
		return err
	}

	a.stores = stores
	a.client = client
	return nil
}

func (a *app) close() {
	if a.stores != nil {
		a.stores.Close()
	}
	if a.client != nil {
		hits, misses := a.client.MemoStats()
		a.logger.Debug("memo cache", "hits", hits, "misses", misses)
	}
}

// connectApp is the PreRunE of every command that calls the API.
func connectApp(cmd *cobra.Command, _ []string) error {
	a, err := appFromContext(cmd.Context())
	if err != nil {
		return err
	}
	return a.connect()
}
