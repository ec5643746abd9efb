package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events [group]",
	Short: "Enumerate ftrace events known to the kernel",
	Long: `List the event groups the running kernel advertises, or every event of
one group.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEvents,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, args []string) error {
	fs, err := OpenTracefs()
	if err != nil {
		return fmt.Errorf("open tracefs: %w", err)
	}

	if len(args) == 1 {
		group := args[0]
		names, err := fs.GetEventNamesForGroup(group)
		if err != nil {
			return fmt.Errorf("enumerate %s: %w", group, err)
		}
		for _, name := range names {
			fmt.Printf("%s/%s\n", group, name)
		}
		return nil
	}

	groups, err := fs.GetEventGroups()
	if err != nil {
		return fmt.Errorf("enumerate groups: %w", err)
	}
	for _, group := range groups {
		fmt.Println(group)
	}
	return nil
}
