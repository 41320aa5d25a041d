// Package main provides the reshape command: it normalizes raw users, products and carts
// and projects them into star, snowflake and document layouts.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"reshape/internal/config"
	"reshape/internal/logger"
)

// errNotPassed makes the process exit 1 after the report has been printed.
var errNotPassed = errors.New("integrity checks did not pass")

var rootFlags struct {
	configPath string
	rawDir     string
	out        string
	logLevel   string
}

var rootCmd = &cobra.Command{
	Use:           "reshape",
	Short:         "Normalize e-commerce data and project it into analytical layouts",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootFlags.configPath, "config", "c", "", "Path to the YAML config (defaults are used when empty)")
	rootCmd.PersistentFlags().StringVar(&rootFlags.rawDir, "raw-dir", "", "Directory holding users.json, products.json and carts.json")
	rootCmd.PersistentFlags().StringVarP(&rootFlags.out, "out", "o", "", "Output base directory")
	rootCmd.PersistentFlags().StringVar(&rootFlags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errNotPassed) {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		}

		os.Exit(1)
	}
}

// loadConfig reads the config file, or the defaults plus environment, then applies
// the command-line overrides.
func loadConfig() (*config.Config, error) {
	var cfg *config.Config

	if rootFlags.configPath != "" {
		loaded, err := config.LoadConfig(rootFlags.configPath)
		if err != nil {
			return nil, err
		}

		cfg = loaded
	} else {
		cfg = config.Default()
		cfg.ApplyEnv(os.LookupEnv)
	}

	if rootFlags.rawDir != "" {
		cfg.Pipeline.Sources.RawDir = rootFlags.rawDir
	}

	if rootFlags.out != "" {
		cfg.Pipeline.Output.BasePath = rootFlags.out
	}

	if rootFlags.logLevel != "" {
		cfg.Pipeline.Logging.Level = rootFlags.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func newLogger(cfg *config.Config) *logger.Logger {
	return logger.New(logger.Options{
		Level:  cfg.Pipeline.Logging.Level,
		Format: cfg.Pipeline.Logging.Format,
	})
}
