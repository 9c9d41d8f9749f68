package cmd

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/rogersnm/linkbook/internal/editor"
	"github.com/rogersnm/linkbook/internal/id"
	"github.com/rogersnm/linkbook/internal/markdown"
	"github.com/rogersnm/linkbook/internal/model"
	"github.com/rogersnm/linkbook/internal/store"
)

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a new object",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		desc, _ := cmd.Flags().GetString("description")
		typ, _ := cmd.Flags().GetString("type")
		relStr, _ := cmd.Flags().GetString("related")
		explicitID, _ := cmd.Flags().GetInt64("id")

		o := model.ManagedObject{
			ID:          explicitID,
			Name:        model.Sanitize(args[0]),
			Description: model.Sanitize(desc),
			Type:        model.Sanitize(typ),
		}
		if o.ID == 0 {
			n, err := id.New()
			if err != nil {
				return err
			}
			o.ID = n
		}

		related, err := resolveRefs(relStr)
		if err != nil {
			return err
		}
		o.RelatedObjectIDs = related

		if err := o.Validate(); err != nil {
			return err
		}
		if err := st.Create(cmd.Context(), o); err != nil {
			if errors.Is(err, store.ErrDuplicateName) {
				return fmt.Errorf("an object named %q already exists", o.Name)
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%d)\n", o.Name, o.ID)
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <id|name>",
	Short: "Update an object's fields or links",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := resolveObject(args[0])
		if err != nil {
			return err
		}

		upd := model.ObjectUpdate{}
		for flag, field := range map[string]**string{
			"name":        &upd.Name,
			"description": &upd.Description,
			"type":        &upd.Type,
		} {
			if !cmd.Flags().Changed(flag) {
				continue
			}
			v, _ := cmd.Flags().GetString(flag)
			v = model.Sanitize(v)
			if v == "" {
				return fmt.Errorf("--%s cannot be empty", flag)
			}
			*field = &v
		}
		if cmd.Flags().Changed("related") {
			relStr, _ := cmd.Flags().GetString("related")
			related, err := resolveRefs(relStr)
			if err != nil {
				return err
			}
			upd.RelatedObjectIDs = &related
		}
		if upd.IsEmpty() {
			return fmt.Errorf("nothing to update: pass --name, --description, --type or --related")
		}

		if err := st.Update(cmd.Context(), o.ID, upd); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %d\n", o.ID)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id|name>",
	Aliases: []string{"rm"},
	Short:   "Delete an object and every link to it",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		o, err := resolveObject(args[0])
		if err != nil {
			// Deleting an unknown numeric id is not an error.
			if _, perr := id.Parse(args[0]); perr == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "No object %s, nothing to delete\n", args[0])
				return nil
			}
			return err
		}

		if !force {
			msg := fmt.Sprintf("Delete %s (%d)?", o.Name, o.ID)
			if n := len(o.RelatedObjectIDs); n > 0 {
				msg = fmt.Sprintf("Delete %s (%d) and its %d link(s)?", o.Name, o.ID, n)
			}
			var confirm bool
			if err := huh.NewConfirm().Title(msg).Value(&confirm).Run(); err != nil || !confirm {
				return fmt.Errorf("deletion cancelled")
			}
		}

		if err := st.Delete(cmd.Context(), o.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%d)\n", o.Name, o.ID)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List objects, optionally filtered by a search query",
	RunE: func(cmd *cobra.Command, args []string) error {
		query, _ := cmd.Flags().GetString("query")
		typ, _ := cmd.Flags().GetString("type")

		st.Filter(query)
		objects := st.Filtered()
		if typ != "" {
			kept := objects[:0]
			for _, o := range objects {
				if strings.EqualFold(o.Type, typ) {
					kept = append(kept, o)
				}
			}
			objects = kept
		}
		fmt.Fprintln(cmd.OutOrStdout(), markdown.RenderObjectTable(objects))
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id|name>",
	Short: "Show an object and the objects linked to it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pretty, _ := cmd.Flags().GetBool("pretty")
		out := cmd.OutOrStdout()

		o, err := resolveObject(args[0])
		if err != nil {
			return err
		}

		if !pretty {
			data, err := markdown.MarshalObject(o)
			if err != nil {
				return err
			}
			fmt.Fprint(out, string(data))
			return nil
		}

		related, err := st.Related(o.ID)
		if err != nil {
			return err
		}
		fields := []string{
			markdown.RenderField("ID", strconv.FormatInt(o.ID, 10)),
			markdown.RenderField("Type", o.Type),
		}
		if len(related) > 0 {
			names := make([]string, len(related))
			for i, r := range related {
				names[i] = fmt.Sprintf("%s (%d)", r.Name, r.ID)
			}
			fields = append(fields, markdown.RenderField("Related", strings.Join(names, ", ")))
		} else {
			fields = append(fields, markdown.RenderField("Related", "none"))
		}

		fmt.Fprint(out, markdown.RenderEntityHeader(o.Name, fields))
		if o.Description != "" {
			rendered, err := markdown.RenderMarkdown(o.Description)
			if err != nil {
				return err
			}
			fmt.Fprint(out, rendered)
		}
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id|name>",
	Short: "Edit an object as markdown in $EDITOR",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := resolveObject(args[0])
		if err != nil {
			return err
		}
		data, err := markdown.MarshalObject(o)
		if err != nil {
			return err
		}
		edited, err := editor.Edit(data, fmt.Sprintf("linkbook-%d-*.md", o.ID))
		if err != nil {
			return err
		}
		n, err := markdown.ParseObject(strings.NewReader(string(edited)))
		if err != nil {
			return err
		}
		if n.ID != o.ID {
			return fmt.Errorf("id cannot be changed (was %d, got %d)", o.ID, n.ID)
		}
		n.Name = model.Sanitize(n.Name)
		n.Type = model.Sanitize(n.Type)
		if err := n.Validate(); err != nil {
			return err
		}

		upd := diffObject(o, n)
		if upd.IsEmpty() {
			fmt.Fprintln(cmd.OutOrStdout(), "No changes")
			return nil
		}
		if err := st.Update(cmd.Context(), o.ID, upd); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %d\n", o.ID)
		return nil
	},
}

// diffObject builds the update that turns before into after.
func diffObject(before, after model.ManagedObject) model.ObjectUpdate {
	var upd model.ObjectUpdate
	if after.Name != before.Name {
		v := after.Name
		upd.Name = &v
	}
	if after.Description != before.Description {
		v := after.Description
		upd.Description = &v
	}
	if after.Type != before.Type {
		v := after.Type
		upd.Type = &v
	}
	if !sameIDs(before.RelatedObjectIDs, after.RelatedObjectIDs) {
		v := after.RelatedObjectIDs
		upd.RelatedObjectIDs = &v
	}
	return upd
}

// sameIDs compares a and b as sets.
func sameIDs(a, b []int64) bool {
	return slices.Equal(idSet(a), idSet(b))
}

func idSet(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

func init() {
	addCmd.Flags().StringP("description", "d", "", "description (required)")
	addCmd.Flags().StringP("type", "t", "", "type tag (required)")
	addCmd.Flags().StringP("related", "r", "", "comma-separated ids or names to link to")
	addCmd.Flags().Int64("id", 0, "explicit id (default: random)")

	updateCmd.Flags().String("name", "", "new name")
	updateCmd.Flags().StringP("description", "d", "", "new description")
	updateCmd.Flags().StringP("type", "t", "", "new type tag")
	updateCmd.Flags().StringP("related", "r", "", "replace links with these comma-separated ids or names")

	deleteCmd.Flags().BoolP("force", "f", false, "skip confirmation")

	listCmd.Flags().StringP("query", "q", "", "case-insensitive substring of name or description")
	listCmd.Flags().StringP("type", "t", "", "only objects with this type")

	showCmd.Flags().Bool("pretty", false, "render fields and description for the terminal")

	rootCmd.AddCommand(addCmd, updateCmd, deleteCmd, listCmd, showCmd, editCmd)
}
