// Package cmd implements the CLI commands for ftracemux.
package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ftracemux/ftrace"
	"ftracemux/logging"
)

// Version information set at build time
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// Global flags
var (
	globalTracefsRoot string
	globalLog         string
	globalLogFormat   string
	globalDebug       bool
)

// rootCmd is the base command for ftracemux.
var rootCmd = &cobra.Command{
	Use:   "ftracemux",
	Short: "ftrace configuration multiplexer",
	Long: `ftracemux reconciles concurrent tracing configurations onto the single,
globally shared Linux ftrace facility under /sys/kernel/tracing.

It resolves event specifiers and atrace categories into concrete kernel
events, keeps the kernel's enabled set equal to the union over all live
configurations, and drives the atrace helper with the combined set of
apps and categories.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Setup logging
		setupLogging()
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetContext returns a context that cancels on SIGINT/SIGTERM.
func GetContext() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	return ctx
}

// OpenTracefs opens the tracing filesystem selected by --tracefs-root, or
// probes the well-known mount points.
func OpenTracefs() (*ftrace.Tracefs, error) {
	return ftrace.NewTracefs(globalTracefsRoot)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&globalTracefsRoot, "tracefs-root", "", "tracing filesystem root (default: probe /sys/kernel/tracing)")
	rootCmd.PersistentFlags().StringVar(&globalLog, "log", "", "set the log file path")
	rootCmd.PersistentFlags().StringVar(&globalLogFormat, "log-format", "text", "set the format for log output (text or json)")
	rootCmd.PersistentFlags().BoolVar(&globalDebug, "debug", false, "enable debug logging")
}

func setupLogging() {
	var logOutput io.Writer = os.Stderr
	if globalLog != "" {
		f, err := os.OpenFile(globalLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err == nil {
			logOutput = f
		}
	}

	logging.Setup(logging.Options{
		Debug:  globalDebug,
		JSON:   globalLogFormat == "json",
		Output: logOutput,
	})
}
