// Command gridiron exports nflverse weekly stats as fantasy-ready JSON.
//
// Usage:
//
//	gridiron export --season 2024
//	gridiron export --layout static --dry-run
//	gridiron serve
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fortuna/gridiron/internal/config"
	"github.com/fortuna/gridiron/internal/logging"
)

const (
	serviceName    = "gridiron"
	serviceVersion = "1.0.0"
)

type rootOptions struct {
	logLevel  string
	logFormat string
}

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           serviceName,
		Short:         "NFL weekly stats exporter",
		Version:       serviceVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format: text or json (overrides LOG_FORMAT)")

	root.AddCommand(newExportCmd(opts))
	root.AddCommand(newServeCmd(opts))
	return root
}

// loadConfig reads env configuration and applies the root flags. Callers
// validate after applying their own flags.
func (o *rootOptions) loadConfig() (config.Config, *logrus.Logger) {
	cfg := config.Load()
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.logFormat != "" {
		cfg.LogFormat = o.logFormat
	}
	return cfg, logging.New(cfg.LogLevel, cfg.LogFormat)
}
