// ftracemux multiplexes concurrent tracing configurations onto the single,
// globally shared Linux ftrace facility under /sys/kernel/tracing.
//
// Commands:
//
//	trace       - Set up and activate a tracing session until interrupted
//	categories  - Print the atrace category expansion table
//	events      - Enumerate ftrace events known to the kernel
//	status      - Show the current state of the tracing facility
//	spec        - Generate a default trace configuration
//	version     - Print version information
package main

import (
	"fmt"
	"os"

	"ftracemux/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
