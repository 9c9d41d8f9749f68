package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rogersnm/linkbook/internal/markdown"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "List objects whose name or description contains the query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		out := cmd.OutOrStdout()

		st.Filter(args[0])
		results := st.Filtered()
		if len(results) == 0 {
			fmt.Fprintln(out, "No results found.")
			return nil
		}
		if limit > 0 && len(results) > limit {
			results = results[:limit]
		}
		for _, o := range results {
			fmt.Fprintf(out, "%-18d %s\n", o.ID, markdown.Highlight(o.Name, args[0]))
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntP("limit", "n", 0, "show at most this many results (0 for all)")
	rootCmd.AddCommand(searchCmd)
}
