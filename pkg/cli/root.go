package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/smolitux/fedlink/pkg/config"
	"github.com/smolitux/fedlink/pkg/logging"
)

var (
	// Persistent flags available to all subcommands
	configPath string
	jsonOutput bool
	logLevel   string
	logFormat  string
	logFile    string

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// DefaultConfigPath is used when --config is not given.
const DefaultConfigPath = "fedlink.yaml"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fedlink",
	Short: "fedlink connects to federated social protocols",
	Long: `fedlink keeps streaming connections open to federated protocols such as
ActivityPub, Matrix and XMPP, reconnecting on failure, and provides
helpers for fetching and searching ActivityPub resources.

Protocols, retry behaviour and credentials are read from a YAML, TOML or
JSON configuration file (default: ./fedlink.yaml).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", DefaultConfigPath, "Configuration file (YAML, TOML or JSON)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also append JSON logs to this file")
}

// newLogger builds the command logger. Flags override the configuration.
// The returned func closes the log file, if any.
func newLogger(cfg *config.Config, stderr io.Writer) (*slog.Logger, func(), error) {
	lc := logging.DefaultConfig()
	if cfg != nil {
		lc = cfg.Logging()
	}
	if logLevel != "" {
		lc.Level = logging.ParseLevel(logLevel)
	}
	if logFormat != "" {
		lc.Format = logging.ParseFormat(logFormat)
	}
	lc.Output = stderr

	closeFn := func() {}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		lc.Tee = f
		closeFn = func() { _ = f.Close() }
	}
	return logging.New(lc), closeFn, nil
}
