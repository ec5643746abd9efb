package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current state of the tracing facility",
	Long: `Read the live tracing control files and report whether tracing is on,
which clock is selected, and how large the per-CPU buffers are. Useful to
spot a non-cooperating party holding ftrace before starting a session.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	fs, err := OpenTracefs()
	if err != nil {
		return fmt.Errorf("open tracefs: %w", err)
	}

	clock, err := fs.GetClock()
	if err != nil {
		clock = "unknown"
	}
	bufferKB, err := fs.GetCpuBufferSizeInKb()
	if err != nil {
		bufferKB = 0
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintf(w, "root\t%s\n", fs.Root())
	fmt.Fprintf(w, "tracing_on\t%v\n", fs.IsTracingEnabled())
	fmt.Fprintf(w, "clock\t%s\n", clock)
	fmt.Fprintf(w, "buffer_size_kb\t%d\n", bufferKB)
	return w.Flush()
}
