package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ftracemux/atrace"
	"ftracemux/config"
	"ftracemux/ftrace"
	"ftracemux/muxer"
)

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Run a tracing session",
	Long: `Set up and activate a tracing session, then keep it live until
interrupted or until the timeout elapses. The session is removed on exit,
returning the kernel facility to its idle state.`,
	Args: cobra.NoArgs,
	RunE: runTrace,
}

var (
	traceConfigPath string
	traceTimeout    time.Duration
	traceBufferKB   int
	traceEvents     []string
	traceCategories []string
	traceApps       []string
)

func init() {
	rootCmd.AddCommand(traceCmd)

	traceCmd.Flags().StringVarP(&traceConfigPath, "config", "c", "", "path to a trace config JSON file")
	traceCmd.Flags().DurationVarP(&traceTimeout, "timeout", "t", 0, "end the session after this duration (0 means until interrupted)")
	traceCmd.Flags().IntVar(&traceBufferKB, "buffer-kb", 0, "per-CPU ring buffer size in KiB")
	traceCmd.Flags().StringArrayVarP(&traceEvents, "event", "e", nil, "ftrace event specifier (group/name, group/* or bare name), repeatable")
	traceCmd.Flags().StringArrayVar(&traceCategories, "atrace", nil, "atrace category, repeatable")
	traceCmd.Flags().StringArrayVarP(&traceApps, "app", "a", nil, "atrace app name, repeatable")
}

func runTrace(cmd *cobra.Command, args []string) error {
	ctx := GetContext()

	cfg, err := buildTraceConfig()
	if err != nil {
		return err
	}
	if len(cfg.Events) == 0 && !cfg.RequiresAtrace() {
		return fmt.Errorf("nothing to trace: supply --config, --event or --atrace")
	}

	fs, err := OpenTracefs()
	if err != nil {
		return fmt.Errorf("open tracefs: %w", err)
	}

	table, err := ftrace.ScanTracefs(fs)
	if err != nil {
		return fmt.Errorf("scan events: %w", err)
	}

	m := muxer.New(fs, table, atrace.NewRunner())

	id, err := m.SetupConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("setup config: %w", err)
	}

	if err := m.ActivateConfig(id); err != nil {
		// Best effort: release what Setup grabbed before reporting.
		m.RemoveConfig(ctx, id)
		return fmt.Errorf("activate config: %w", err)
	}

	record, _ := m.Config(id)
	fmt.Printf("tracing with %d events on %s (clock %s), interrupt to stop\n",
		record.Filter().Size(), fs.Root(), m.GetClock())

	if traceTimeout > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(traceTimeout):
		}
	} else {
		<-ctx.Done()
	}

	if err := m.RemoveConfig(ctx, id); err != nil {
		return fmt.Errorf("remove config: %w", err)
	}

	fmt.Println("session removed, tracing off")
	return nil
}

// buildTraceConfig merges the config file with command-line overrides.
func buildTraceConfig() (*config.TraceConfig, error) {
	cfg := &config.TraceConfig{}
	if traceConfigPath != "" {
		loaded, err := config.Load(traceConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	cfg.Events = append(cfg.Events, traceEvents...)
	cfg.AtraceCategories = append(cfg.AtraceCategories, traceCategories...)
	cfg.AtraceApps = append(cfg.AtraceApps, traceApps...)
	if traceBufferKB != 0 {
		cfg.BufferSizeKB = traceBufferKB
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
