package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rogersnm/linkbook/internal/graph"
	"github.com/rogersnm/linkbook/internal/model"
)

var graphCmd = &cobra.Command{
	Use:   "graph [id|name]",
	Short: "Show linked objects as a tree per connected group",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		objects := st.Objects()
		if len(args) == 1 {
			o, err := resolveObject(args[0])
			if err != nil {
				return err
			}
			objects = component(objects, o.ID)
		}
		fmt.Fprintln(cmd.OutOrStdout(), graph.RenderASCII(graph.Build(objects)))
		return nil
	},
}

// component keeps the objects connected to id, in collection order.
func component(objects []model.ManagedObject, id int64) []model.ManagedObject {
	keep := map[int64]bool{id: true}
	for _, r := range graph.Build(objects).Reachable(id) {
		keep[r] = true
	}
	out := make([]model.ManagedObject, 0, len(keep))
	for _, o := range objects {
		if keep[o.ID] {
			out = append(out, o)
		}
	}
	return out
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that stored links are symmetric and point at existing objects",
	RunE: func(cmd *cobra.Command, args []string) error {
		repair, _ := cmd.Flags().GetBool("repair")
		out := cmd.OutOrStdout()

		stored, err := backend.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("reading stored objects: %w", err)
		}

		var problems []string
		seen := make(map[int64]bool, len(stored))
		for _, o := range stored {
			if seen[o.ID] {
				problems = append(problems, fmt.Sprintf("id %d is used by more than one object", o.ID))
			}
			seen[o.ID] = true
		}
		for _, v := range graph.Build(stored).Violations() {
			problems = append(problems, v.String())
		}

		if len(problems) == 0 {
			fmt.Fprintf(out, "OK: %d object(s), no problems\n", len(stored))
			return nil
		}
		for _, p := range problems {
			fmt.Fprintf(out, "  %s\n", p)
		}

		if repair {
			if err := st.Sync(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(out, "Repaired %d problem(s)\n", len(problems))
			return nil
		}
		return fmt.Errorf("found %d problem(s); run with --repair to fix", len(problems))
	},
}

func init() {
	checkCmd.Flags().Bool("repair", false, "write the repaired collection back to storage")
	rootCmd.AddCommand(graphCmd, checkCmd)
}
