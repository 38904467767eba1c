package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/FreePeak/openapi-mcp-server/internal/builder"
	"github.com/FreePeak/openapi-mcp-server/internal/config"
	"github.com/FreePeak/openapi-mcp-server/internal/infrastructure/logging"
	"github.com/FreePeak/openapi-mcp-server/internal/infrastructure/openapi"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 10 * time.Second

type globalOptions struct {
	configPath string
	spec       string
	addr       string
	prefix     string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:          "openapi-mcp",
		Short:        "Expose an OpenAPI document to MCP clients",
		SilenceUsage: true,
	}
	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML configuration file")
	flags.StringVarP(&opts.spec, "spec", "s", "", "OpenAPI document file path or URL (overrides spec_source)")
	flags.StringVar(&opts.addr, "addr", "", "Listen address (overrides address)")
	flags.StringVar(&opts.prefix, "prefix", "", "Endpoint path (overrides prefix)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(
		newServeCommand(opts),
		newValidateCommand(opts),
		newVersionCommand(),
	)
	return root
}

// loadConfig reads the configuration file, or the defaults plus the
// environment without one, then applies command line overrides.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.Default()
		cfg.ApplyEnv(os.LookupEnv)
	}

	if o.spec != "" {
		cfg.SpecSource = o.spec
	}
	if o.addr != "" {
		cfg.Address = o.addr
	}
	if o.prefix != "" {
		cfg.Prefix = o.prefix
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newServeCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			logger, err := logging.New(cfg.LoggingConfig())
			if err != nil {
				return errors.Wrap(err, "failed to create logger")
			}
			logging.SetDefault(logger)
			defer func() { _ = logger.Sync() }()

			for _, warning := range cfg.Warnings() {
				logger.Warn("Configuration warning", logging.Fields{"warning": warning})
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *logging.Logger) error {
	server, err := builder.NewServerBuilder().
		WithConfig(cfg).
		WithLogger(logger).
		BuildMCPServer()
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		return errors.Wrap(err, "graceful shutdown failed")
	}
	return <-errCh
}

func newValidateCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration and load the OpenAPI document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			return validate(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}
}

func validate(ctx context.Context, out io.Writer, cfg *config.Config) error {
	for _, warning := range cfg.Warnings() {
		fmt.Fprintf(out, "warning: %s\n", warning)
	}
	if cfg.SpecSource == "" {
		return openapi.ErrNoSource
	}

	source := openapi.ParseSource(cfg.SpecSource)
	provider := openapi.NewProvider(source, openapi.WithCacheTTL(0))
	spec, err := provider.Spec(ctx)
	if err != nil {
		return err
	}

	info, _ := spec["info"].(map[string]interface{})
	fmt.Fprintf(out, "OpenAPI document %s is valid\n", source)
	fmt.Fprintf(out, "  title:      %v\n", info["title"])
	fmt.Fprintf(out, "  version:    %v\n", info["version"])
	fmt.Fprintf(out, "  operations: %d\n", len(openapi.Operations(spec)))
	fmt.Fprintf(out, "  schemas:    %d\n", len(openapi.Schemas(spec)))
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "openapi-mcp %s\n", version)
		},
	}
}
