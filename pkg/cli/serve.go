package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/getmockd/songbook/pkg/catalog"
	"github.com/getmockd/songbook/pkg/config"
	"github.com/getmockd/songbook/pkg/logging"
	"github.com/getmockd/songbook/pkg/server"
)

type serveFlags struct {
	configFile      string
	port            int
	path            string
	seed            string
	corsOrigins     []string
	noCORS          bool
	noExplorer      bool
	noIntrospection bool
	noMetrics       bool
	metricsPath     string
	readTimeout     int
	writeTimeout    int
	logLevel        string
	logFormat       string
}

func (a *app) newServeCmd() *cobra.Command {
	f := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the GraphQL server (default command)",
		Example: `  # Start with defaults on :5000
  songbook serve

  # Custom port and seed file
  songbook serve --port 8080 --seed ./seed.yaml

  # Restrict CORS to one origin
  songbook serve --cors-origins https://app.example`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveServeConfig(cmd, f)
			if err != nil {
				return err
			}
			log := logging.FromStrings(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, cfg, log)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&f.configFile, "config", "c", "", "Path to config file (default: songbook.yaml in the current directory)")
	fs.IntVarP(&f.port, "port", "p", config.DefaultPort, "HTTP port")
	fs.StringVar(&f.path, "path", config.DefaultPath, "GraphQL endpoint path")
	fs.StringVar(&f.seed, "seed", "", "YAML seed file replacing the built-in catalog")
	fs.StringSliceVar(&f.corsOrigins, "cors-origins", nil, "Allowed CORS origins (comma-separated, default *)")
	fs.BoolVar(&f.noCORS, "no-cors", false, "Disable CORS headers")
	fs.BoolVar(&f.noExplorer, "no-explorer", false, "Disable the GraphiQL explorer")
	fs.BoolVar(&f.noIntrospection, "no-introspection", false, "Disable schema introspection")
	fs.BoolVar(&f.noMetrics, "no-metrics", false, "Disable the Prometheus endpoint")
	fs.StringVar(&f.metricsPath, "metrics-path", config.DefaultMetricsPath, "Prometheus endpoint path")
	fs.IntVar(&f.readTimeout, "read-timeout", config.DefaultReadTimeout, "Read timeout in seconds")
	fs.IntVar(&f.writeTimeout, "write-timeout", config.DefaultWriteTimeout, "Write timeout in seconds")
	fs.StringVar(&f.logLevel, "log-level", config.DefaultLogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&f.logFormat, "log-format", config.DefaultLogFormat, "Log format (text, json)")

	return cmd
}

// resolveServeConfig layers the changed flags over file, env and defaults.
func resolveServeConfig(cmd *cobra.Command, f *serveFlags) (*config.Config, error) {
	cfg, err := config.LoadAll(f.configFile)
	if err != nil {
		return nil, err
	}
	config.MergeConfig(cfg, flagConfig(cmd, f), config.SourceFlag)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// flagConfig returns a Config holding only the flags set on the command line.
func flagConfig(cmd *cobra.Command, f *serveFlags) *config.Config {
	fs := cmd.Flags()
	out := &config.Config{SetFields: make(map[string]bool)}

	if fs.Changed("port") {
		out.Port = f.port
		out.SetFields["port"] = true
	}
	if fs.Changed("path") {
		out.Path = f.path
	}
	if fs.Changed("seed") {
		out.Seed = f.seed
	}
	if fs.Changed("cors-origins") {
		out.CORS.AllowOrigins = f.corsOrigins
	}
	if fs.Changed("no-cors") {
		out.CORS.Enabled = !f.noCORS
		out.SetFields["cors.enabled"] = true
	}
	if fs.Changed("no-explorer") {
		out.Explorer = !f.noExplorer
		out.SetFields["explorer"] = true
	}
	if fs.Changed("no-introspection") {
		out.Introspection = !f.noIntrospection
		out.SetFields["introspection"] = true
	}
	if fs.Changed("no-metrics") {
		out.Metrics = !f.noMetrics
		out.SetFields["metrics"] = true
	}
	if fs.Changed("metrics-path") {
		out.MetricsPath = f.metricsPath
	}
	if fs.Changed("read-timeout") {
		out.ReadTimeout = f.readTimeout
		out.SetFields["readTimeout"] = true
	}
	if fs.Changed("write-timeout") {
		out.WriteTimeout = f.writeTimeout
		out.SetFields["writeTimeout"] = true
	}
	if fs.Changed("log-level") {
		out.LogLevel = f.logLevel
	}
	if fs.Changed("log-format") {
		out.LogFormat = f.logFormat
	}
	return out
}

// loadStore builds the catalog from the seed file, or the built-in seed when
// path is empty.
func loadStore(path string) (*catalog.MemoryStore, error) {
	if path == "" {
		return catalog.NewDefaultMemoryStore(), nil
	}
	seed, err := catalog.LoadSeedFile(path)
	if err != nil {
		return nil, err
	}
	return catalog.NewMemoryStore(seed)
}

func runServe(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	store, err := loadStore(cfg.Seed)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	authors, songs := store.Counts()
	log.Info("catalog loaded", "authors", authors, "songs", songs, "seed", cfg.Seed)

	srv, err := server.New(cfg, store, server.WithLogger(log))
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
