// Package cmd provides the CLI commands for searchsync.
package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchsync/internal/config"
	logpkg "github.com/kailas-cloud/searchsync/internal/logger"
	"github.com/kailas-cloud/searchsync/internal/metrics"
	"github.com/kailas-cloud/searchsync/internal/transport/azsearch"
	"github.com/kailas-cloud/searchsync/internal/version"
)

// rootOptions holds the persistent flags shared by all subcommands.
type rootOptions struct {
	configPath string
	env        string
	verbose    bool
	logLevel   string
	strategy   string
}

// NewRootCmd creates the root command for the searchsync CLI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "searchsync",
		Short: "Push static site content into a hosted search index",
		Long: `searchsync rebuilds a hosted search index from the content graph of a
statically generated site.

A run applies the configured index definition, executes every query against
the site's GraphQL endpoint, shapes each result into flat documents and
uploads them in one batch per query.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("searchsync version {{.Version}}\n")

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML or TOML config file (default: config/<env>.yaml)")
	pf.StringVar(&opts.env, "env", "", "Environment: local, dev, ci, prod (default: $ENV or local)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Log request and response payloads")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&opts.strategy, "strategy", "", "Index strategy: recreate or upsert (overrides config)")

	cmd.AddCommand(newSyncCmd(opts))
	cmd.AddCommand(newApplyIndexCmd(opts))
	cmd.AddCommand(newValidateCmd(opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command, cancelling on SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}

func (o *rootOptions) environment() string {
	if o.env != "" {
		return o.env
	}
	return config.GetEnv()
}

// loadConfig resolves configuration and applies flag overrides.
func (o *rootOptions) loadConfig() (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath)
	} else {
		cfg, err = config.Load(o.environment())
	}
	if err != nil {
		return config.Config{}, err
	}

	if o.verbose {
		cfg.Verbose = true
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.strategy != "" {
		cfg.Strategy = o.strategy
		if err := cfg.Validate(); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

// app is the wiring shared by the commands that talk to the service.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	search *azsearch.Client
}

func (o *rootOptions) setup() (*app, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logpkg.NewLogger(o.environment(), cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	metrics.RegisterSyncMetrics()

	search, err := azsearch.NewClient(&azsearch.Config{
		Endpoint:   cfg.Endpoint,
		APIKey:     cfg.APIKey,
		APIVersion: cfg.APIVersion,
		HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout()},
		Verbose:    cfg.Verbose,
		Logger:     logger,
	})
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("create search client: %w", err)
	}

	if cfg.Verbose {
		logger.Info("Resolved configuration", zap.Any("config", cfg.Redacted()))
	}
	return &app{cfg: cfg, logger: logger, search: search}, nil
}

func (a *app) context(ctx context.Context) context.Context {
	return logpkg.ContextWithLogger(ctx, a.logger)
}

// close writes the metrics textfile, if configured, and flushes the logger.
func (a *app) close() {
	if path := a.cfg.Metrics.Textfile; path != "" {
		if err := metrics.WriteTextfile(path); err != nil {
			a.logger.Warn("Failed to write metrics textfile", zap.String("path", path), zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
