// Package cmd implements the catalog CLI commands.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiclient "github.com/donaldgifford/catalog-browser/internal/api/client"
	"github.com/donaldgifford/catalog-browser/internal/config"
	"github.com/donaldgifford/catalog-browser/internal/telemetry"
	"github.com/donaldgifford/catalog-browser/pkg/logger"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "catalog",
		Short: "Browse a product catalog from the terminal",
		Long: "catalog is a client for a product catalog API.\n" +
			"It lists, filters and searches products, and offers an\n" +
			"interactive browser that re-queries as filters change.",
		SilenceUsage: true,
	}
)

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default $HOME/.catalog.yaml)")
	flags.String("server", "http://localhost:8000", "catalog API base URL")
	flags.String("output", "table", "output format (table, json)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (text, json)")
	flags.Duration("debounce", 0, "delay before filter changes are sent")

	for _, name := range []string{"server", "output", "log-level", "log-format", "debounce"} {
		cobra.CheckErr(viper.BindPFlag(name, flags.Lookup(name)))
	}

	rootCmd.AddCommand(productsCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(categoriesCmd())
	rootCmd.AddCommand(overviewCmd())
	rootCmd.AddCommand(browseCmd())
	rootCmd.AddCommand(versionCmd())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".catalog")
	}

	viper.SetEnvPrefix("CATALOG")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig reads the config file in use, if any, then applies flag and
// environment overrides.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if path := viper.ConfigFileUsed(); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if viper.IsSet("server") {
		cfg.API.BaseURL = viper.GetString("server")
	}
	if viper.IsSet("log-level") {
		cfg.Logging.Level = viper.GetString("log-level")
	}
	if viper.IsSet("log-format") {
		cfg.Logging.Format = viper.GetString("log-format")
	}
	if viper.IsSet("debounce") {
		cfg.Browse.Debounce = viper.GetDuration("debounce")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// runtime bundles what every backend-facing command needs.
type runtime struct {
	cfg    *config.Config
	log    *slog.Logger
	client *apiclient.Client
	tp     *telemetry.Provider
}

// setup builds the logger, tracer provider and API client. logOut receives
// log records.
func setup(ctx context.Context, logOut io.Writer) (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log := logger.NewWithWriter(logOut, cfg.Logging.Level, cfg.Logging.Format)

	tp, err := telemetry.Setup(ctx, cfg.Telemetry, Version)
	if err != nil {
		return nil, fmt.Errorf("setting up tracing: %w", err)
	}

	return &runtime{
		cfg:    cfg,
		log:    log,
		client: newClient(cfg, tp, log),
		tp:     tp,
	}, nil
}

func (rt *runtime) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rt.tp.Shutdown(ctx); err != nil {
		rt.log.Warn("flushing traces", "error", err)
	}
}

func newClient(cfg *config.Config, tp *telemetry.Provider, log *slog.Logger) *apiclient.Client {
	p := apiclient.DefaultPaths()
	if v := cfg.API.Paths.Products; v != "" {
		p.Products = v
	}
	if v := cfg.API.Paths.Filter; v != "" {
		p.Filter = v
	}
	if v := cfg.API.Paths.Search; v != "" {
		p.Search = v
	}
	if v := cfg.API.Paths.Categories; v != "" {
		p.Categories = v
	}

	var rlOpts []apiclient.RateLimiterOption
	if cfg.RateLimit.Budget > 0 {
		rlOpts = append(rlOpts, apiclient.WithBudget(cfg.RateLimit.Budget, cfg.RateLimit.Window))
	}

	return apiclient.New(cfg.API.BaseURL,
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithPaths(p),
		apiclient.WithRateLimiter(apiclient.NewRateLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst, rlOpts...)),
		apiclient.WithLogger(log),
		apiclient.WithTracerProvider(tp),
	)
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}
