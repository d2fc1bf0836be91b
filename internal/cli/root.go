// Package cli contains all portalimg commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"portalimg/internal/config"
	"portalimg/internal/output"
)

var (
	cfgFile string
	verbose bool
	noColor bool
	cfg     *config.Config
	logger  *slog.Logger
	printer *output.Printer
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "portalimg",
	Short: "Prepare and upload staff portal images",
	Long: `portalimg validates, shrinks and uploads the photos attached to staff
portal records (knowledge base, menu, promotions, announcements, blacklist
and warnings).

Example usage:
  portalimg validate photo.jpg           # Check type and file name
  portalimg compress photos/ --out out/  # Shrink locally to the size budget
  portalimg upload burger.png -c menu    # Validate, compress and store in S3
  portalimg list -c menu                 # List stored menu images`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
}

// ExecuteContext runs the root command. Cancelling ctx stops in-flight uploads.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func SetVersion(v string) {
	version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .portalimg.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

func initConfig(cmd *cobra.Command) error {
	var err error

	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger = newLogger(cmd.ErrOrStderr(), cfg.Logging, verbose)
	printer = output.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ResolveColors(noColor))

	logger.Debug("configuration loaded",
		"bucket", cfg.Storage.Bucket,
		"max_size_mb", cfg.Compression.MaxSizeMB,
		"file_type", cfg.Compression.FileType,
	)
	return nil
}

func newLogger(w io.Writer, lc config.LoggingConfig, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(lc.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

