package cmd

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/rogersnm/linkbook/internal/markdown"
	"github.com/rogersnm/linkbook/internal/model"
	"github.com/rogersnm/linkbook/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export <dir>",
	Short: "Write every object to dir as a markdown file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := markdown.ExportDir(args[0], st.Objects())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d object(s) to %s\n", len(paths), args[0])
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Create objects from the markdown files in dir",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.ErrOrStderr()

		objects, readErr := markdown.ImportDir(args[0])
		if readErr != nil {
			fmt.Fprintf(out, "warning: %v\n", readErr)
		}

		// Create first, then link, so files may reference objects that
		// appear later in the directory.
		created := make([]model.ManagedObject, 0, len(objects))
		for _, o := range objects {
			related := o.RelatedObjectIDs
			o.RelatedObjectIDs = nil
			if err := o.Validate(); err != nil {
				fmt.Fprintf(out, "skipping %d: %v\n", o.ID, err)
				continue
			}
			err := st.Create(ctx, o)
			switch {
			case errors.Is(err, store.ErrDuplicateName), errors.Is(err, store.ErrDuplicateID):
				fmt.Fprintf(out, "skipping %d: %v\n", o.ID, err)
				continue
			case err != nil:
				return err
			}
			o.RelatedObjectIDs = related
			created = append(created, o)
		}

		for _, o := range created {
			if len(o.RelatedObjectIDs) == 0 {
				continue
			}
			current, err := st.Get(o.ID)
			if err != nil {
				return err
			}
			related := slices.Clone(current.RelatedObjectIDs)
			for _, r := range o.RelatedObjectIDs {
				if !slices.Contains(related, r) {
					related = append(related, r)
				}
			}
			if err := st.Update(ctx, o.ID, model.ObjectUpdate{RelatedObjectIDs: &related}); err != nil {
				return err
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d object(s)\n", len(created), len(objects))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)
}
