package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"ftracemux/config"
)

var specCmd = &cobra.Command{
	Use:   "spec",
	Short: "Generate a default trace configuration",
	Long:  `Write a default trace config JSON document to stdout.`,
	Args:  cobra.NoArgs,
	RunE:  runSpec,
}

func init() {
	rootCmd.AddCommand(specCmd)
}

func runSpec(cmd *cobra.Command, args []string) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(config.Default())
}
