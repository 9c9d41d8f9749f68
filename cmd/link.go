package cmd

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/rogersnm/linkbook/internal/model"
)

var linkCmd = &cobra.Command{
	Use:   "link <id|name> <id|name>...",
	Short: "Link an object to one or more others, both ways",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return relink(cmd, args, true)
	},
}

var unlinkCmd = &cobra.Command{
	Use:   "unlink <id|name> <id|name>...",
	Short: "Remove links between an object and one or more others",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return relink(cmd, args, false)
	},
}

// relink rewrites the first object's related ids and lets the store carry the
// change to the peers.
func relink(cmd *cobra.Command, args []string, add bool) error {
	o, err := resolveObject(args[0])
	if err != nil {
		return err
	}

	related := slices.Clone(o.RelatedObjectIDs)
	for _, ref := range args[1:] {
		peer, err := resolveObject(ref)
		if err != nil {
			return err
		}
		if peer.ID == o.ID {
			return fmt.Errorf("cannot link %s to itself", o.Name)
		}
		if add {
			if !slices.Contains(related, peer.ID) {
				related = append(related, peer.ID)
			}
		} else {
			related = slices.DeleteFunc(related, func(r int64) bool { return r == peer.ID })
		}
	}

	if err := st.Update(cmd.Context(), o.ID, model.ObjectUpdate{RelatedObjectIDs: &related}); err != nil {
		return err
	}

	verb := "Linked"
	if !add {
		verb = "Unlinked"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d): %d link(s)\n", verb, o.Name, o.ID, len(related))
	return nil
}

func init() {
	rootCmd.AddCommand(linkCmd, unlinkCmd)
}
