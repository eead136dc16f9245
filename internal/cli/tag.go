package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roomdir-dev/roomdir/internal/api"
	"github.com/roomdir-dev/roomdir/internal/directory"
	"github.com/roomdir-dev/roomdir/internal/models"
)

var tagInput models.TagInput

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage custom tags on rooms",
	Long: `Add, remove and list the custom tags of a room.

Rooms are identified by record number, room id or room number. Tag names
are unique per room, ignoring case. When collaboration is configured, tag
changes are shared with the project.`,
}

var tagAddCmd = &cobra.Command{
	Use:   "add <room> <name>",
	Short: "Add a custom tag to a room",
	Long: `Add a custom tag to a room.

Examples:
  rd tag add 204 "Bed"
  rd tag add 9001 "Crash cart" --color red --description "Checked weekly"`,
	Args: cobra.ExactArgs(2),
	RunE: runTagAdd,
}

var tagRmCmd = &cobra.Command{
	Use:     "rm <room> <tag>",
	Aliases: []string{"remove"},
	Short:   "Remove a custom tag by id or name",
	Args:    cobra.ExactArgs(2),
	RunE:    runTagRm,
}

var tagListCmd = &cobra.Command{
	Use:     "list <room>",
	Aliases: []string{"ls"},
	Short:   "List the tags of a room",
	Args:    cobra.ExactArgs(1),
	RunE:    runTagList,
}

var staffCmd = &cobra.Command{
	Use:   "staff",
	Short: "Manage staff assignments",
}

var staffAddCmd = &cobra.Command{
	Use:   "add <room> <name>",
	Short: "Assign a staff member to a room",
	Long: `Assign a staff member to a room. The room gets a "Staff: <name>" tag
and becomes searchable by the person's name.

Examples:
  rd staff add 204 "Jane Doe"`,
	Args: cobra.MinimumNArgs(2),
	RunE: runStaffAdd,
}

func init() {
	rootCmd.AddCommand(tagCmd)
	tagCmd.AddCommand(tagAddCmd, tagRmCmd, tagListCmd)

	f := tagAddCmd.Flags()
	f.StringVar(&tagInput.Type, "type", "", "Tag type (default: simple)")
	f.StringVar(&tagInput.Description, "description", "", "Longer description")
	f.StringVar(&tagInput.Link, "link", "", "Related URL")
	f.StringVar(&tagInput.Contact, "contact", "", "Contact person or number")
	f.StringVar(&tagInput.ImageURL, "image", "", "Image URL")
	f.StringVar(&tagInput.Color, "color", "", "Display color (default: blue)")

	rootCmd.AddCommand(staffCmd)
	staffCmd.AddCommand(staffAddCmd)
}

func runTagAdd(cmd *cobra.Command, args []string) error {
	return withWorkspace(cmd.Context(), func(ws *workspace) error {
		room, err := ws.resolveRoom(args[0])
		if err != nil {
			return err
		}
		in := tagInput
		in.Name = strings.TrimSpace(args[1])

		tag, err := ws.svc.AddCustomTag(cmd.Context(), room.ID, in)
		switch {
		case errors.Is(err, directory.ErrDuplicateTag):
			return WrapError(err, fmt.Sprintf("Room %s already has a tag named %q", room.Number, in.Name),
				"Tag names are unique per room, ignoring case")
		case errors.Is(err, directory.ErrInvalidTag):
			return WrapError(err, "Tag name cannot be empty", "Provide a name, e.g. 'rd tag add 204 Bed'")
		case err != nil:
			return fmt.Errorf("failed to add tag: %w", err)
		}
		ws.notifyDaemon()

		out := outputFor(cmd)
		if IsJSONOutput() {
			return out.JSON(tag)
		}
		out.Success("Tagged room %s with %q", room.Number, tag.Name)
		return nil
	})
}

func runTagRm(cmd *cobra.Command, args []string) error {
	return withWorkspace(cmd.Context(), func(ws *workspace) error {
		room, err := ws.resolveRoom(args[0])
		if err != nil {
			return err
		}
		tag, err := ws.svc.RemoveCustomTag(cmd.Context(), room.ID, args[1])
		if errors.Is(err, directory.ErrTagNotFound) {
			return WrapError(err, fmt.Sprintf("Room %s has no tag %q", room.Number, args[1]),
				fmt.Sprintf("List the room's tags with 'rd tag list %s'", args[0]))
		}
		if err != nil {
			return fmt.Errorf("failed to remove tag: %w", err)
		}
		ws.notifyDaemon()

		out := outputFor(cmd)
		if IsJSONOutput() {
			return out.JSON(tag)
		}
		out.Success("Removed %q from room %s", tag.Name, room.Number)
		return nil
	})
}

func runTagList(cmd *cobra.Command, args []string) error {
	return withWorkspace(cmd.Context(), func(ws *workspace) error {
		room, err := ws.resolveRoom(args[0])
		if err != nil {
			return err
		}
		detail, err := ws.svc.Room(room.ID)
		if err != nil {
			return err
		}

		out := outputFor(cmd)
		if IsJSONOutput() {
			return out.JSON(api.TagsResponse{RoomID: room.ID, CustomTags: detail.CustomTags, StaffTags: detail.StaffTags})
		}

		out.Info("Room %s", room.Label())
		if len(detail.CustomTags) == 0 && len(detail.StaffTags) == 0 {
			out.Info("No custom or staff tags")
		}
		rows := make([][]string, 0, len(detail.CustomTags)+len(detail.StaffTags))
		for _, t := range detail.CustomTags {
			source := "local"
			if t.Collaborative {
				source = "shared"
			}
			rows = append(rows, []string{t.Name, t.Type, source, t.ID})
		}
		for _, s := range detail.StaffTags {
			rows = append(rows, []string{s, "staff", "import", ""})
		}
		if len(rows) > 0 {
			out.Table([]string{"TAG", "TYPE", "SOURCE", "ID"}, rows)
		}
		if IsVerbose() {
			out.Info("All tags: %s", strings.Join(detail.UnifiedTags, ", "))
		}
		return nil
	})
}

func runStaffAdd(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(strings.Join(args[1:], " "))
	if name == "" {
		return NewCLIError("Staff name cannot be empty", "Provide a name, e.g. 'rd staff add 204 \"Jane Doe\"'")
	}
	return withWorkspace(cmd.Context(), func(ws *workspace) error {
		room, err := ws.resolveRoom(args[0])
		if err != nil {
			return err
		}
		added, err := ws.svc.AddStaff(cmd.Context(), room.ID, name)
		if err != nil {
			return fmt.Errorf("failed to add staff: %w", err)
		}
		if added {
			ws.notifyDaemon()
		}

		out := outputFor(cmd)
		if IsJSONOutput() {
			return out.JSON(map[string]interface{}{"room_id": room.ID, "staff": models.StaffTag(name), "added": added})
		}
		if !added {
			out.Warn("%s is already assigned to room %s", name, room.Number)
			return nil
		}
		out.Success("Assigned %s to room %s", name, room.Number)
		return nil
	})
}
