package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ftracemux/muxer"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Print the atrace category expansion table",
	Long: `Print every known atrace category together with the ftrace groups it
adds whole and the number of individual events it expands to.`,
	Args: cobra.NoArgs,
	RunE: runCategories,
}

var categoriesQuiet bool

func init() {
	rootCmd.AddCommand(categoriesCmd)

	categoriesCmd.Flags().BoolVarP(&categoriesQuiet, "quiet", "q", false, "display only category names")
}

func runCategories(cmd *cobra.Command, args []string) error {
	names := muxer.Categories()

	if categoriesQuiet || !term.IsTerminal(int(os.Stdout.Fd())) {
		for _, name := range names {
			if categoriesQuiet {
				fmt.Println(name)
				continue
			}
			fmt.Printf("%s groups=%s events=%d\n",
				name,
				strings.Join(muxer.CategoryGroups(name), ","),
				len(muxer.CategoryEvents(name)))
		}
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tGROUPS\tEVENTS")

	for _, name := range names {
		groups := strings.Join(muxer.CategoryGroups(name), ", ")
		if groups == "" {
			groups = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\n", name, groups, len(muxer.CategoryEvents(name)))
	}

	return w.Flush()
}
