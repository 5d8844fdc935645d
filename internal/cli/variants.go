package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mindcanvas/pkg/editor"
	mcerrors "github.com/matzehuels/mindcanvas/pkg/errors"
	"github.com/matzehuels/mindcanvas/pkg/mindmap"
)

// variantNode returns node id, which must be of nodeType.
func variantNode(ed *editor.Editor, id, nodeType string) (*mindmap.Node, error) {
	n, ok := ed.Node(id)
	if !ok {
		return nil, mcerrors.New(mcerrors.ErrCodeNotFound, "node %q not found", id)
	}
	if n.Data.NodeType != nodeType {
		return nil, mcerrors.New(mcerrors.ErrCodeInvalidInput, "node %q is a %s node, not a %s node", id, n.Data.NodeType, nodeType)
	}
	return n, nil
}

// editVariant runs fn on node id of nodeType and stores the fields it
// returns.
func (c *CLI) editVariant(ctx context.Context, name, id, nodeType string, fn func(*mindmap.Node) (mindmap.Patch, error)) error {
	return c.edit(ctx, name, func(ed *editor.Editor) error {
		n, err := variantNode(ed, id, nodeType)
		if err != nil {
			return err
		}
		patch, err := fn(n)
		if err != nil {
			return err
		}
		return ed.UpdateNodeData(ctx, id, patch)
	})
}

// =============================================================================
// Checklist
// =============================================================================

// checklistCommand creates the "checklist" command group.
func (c *CLI) checklistCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checklist",
		Short: "Edit the items of a checklist node",
	}

	var priority string
	add := &cobra.Command{
		Use:   "add <map> <node-id> <text>",
		Short: "Append an unchecked item",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := mindmap.Priority(priority)
			switch p {
			case "", mindmap.PriorityLow, mindmap.PriorityMedium, mindmap.PriorityHigh:
			default:
				return mcerrors.New(mcerrors.ErrCodeInvalidInput, "priority must be low, medium or high")
			}
			return c.editVariant(cmd.Context(), args[0], args[1], mindmap.TypeChecklist, func(n *mindmap.Node) (mindmap.Patch, error) {
				items := mindmap.AddChecklistItem(n.Data.ChecklistItems, args[2], p)
				printSuccess("Added item %s", items[len(items)-1].ID)
				return mindmap.Patch{"checklistItems": items}, nil
			})
		},
	}
	add.Flags().StringVar(&priority, "priority", "", "low, medium or high (default medium)")

	toggle := &cobra.Command{
		Use:   "toggle <map> <node-id> <item-id>",
		Short: "Check or uncheck an item",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editVariant(cmd.Context(), args[0], args[1], mindmap.TypeChecklist, func(n *mindmap.Node) (mindmap.Patch, error) {
				items := mindmap.ToggleChecklistItem(n.Data.ChecklistItems, args[2])
				printSuccess("%d%% done", mindmap.ChecklistProgress(items))
				return mindmap.Patch{"checklistItems": items}, nil
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <map> <node-id> <item-id>",
		Short: "Remove an item",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editVariant(cmd.Context(), args[0], args[1], mindmap.TypeChecklist, func(n *mindmap.Node) (mindmap.Patch, error) {
				return mindmap.Patch{"checklistItems": mindmap.DeleteChecklistItem(n.Data.ChecklistItems, args[2])}, nil
			})
		},
	}

	var up bool
	move := &cobra.Command{
		Use:   "move <map> <node-id> <item-id>",
		Short: "Swap an item with the one below it (or above it with --up)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta := 1
			if up {
				delta = -1
			}
			return c.editVariant(cmd.Context(), args[0], args[1], mindmap.TypeChecklist, func(n *mindmap.Node) (mindmap.Patch, error) {
				return mindmap.Patch{"checklistItems": mindmap.MoveChecklistItem(n.Data.ChecklistItems, args[2], delta)}, nil
			})
		},
	}
	move.Flags().BoolVar(&up, "up", false, "move the item up instead of down")

	cmd.AddCommand(add, toggle, del, move)
	return cmd
}

// =============================================================================
// Timeline
// =============================================================================

// timelineCommand creates the "timeline" command group.
func (c *CLI) timelineCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Edit the events of a timeline node",
	}

	var (
		date        string
		milestone   bool
		color       string
		description string
	)
	add := &cobra.Command{
		Use:   "add <map> <node-id> <title>",
		Short: "Add a dated event",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			when := time.Now()
			if date != "" {
				t, err := parseDate(date)
				if err != nil {
					return mcerrors.Wrap(mcerrors.ErrCodeInvalidInput, err, "invalid --date %q", date)
				}
				when = t
			}
			return c.editVariant(cmd.Context(), args[0], args[1], mindmap.TypeTimeline, func(n *mindmap.Node) (mindmap.Patch, error) {
				events := mindmap.AddTimelineEvent(n.Data.TimelineEvents, mindmap.TimelineEvent{
					Title:       args[2],
					Date:        mindmap.FormatDate(when),
					IsMilestone: milestone,
					Color:       color,
					Description: description,
				})
				printSuccess("Added event %s", events[len(events)-1].ID)
				return mindmap.Patch{"timelineEvents": mindmap.SortedEvents(events)}, nil
			})
		},
	}
	add.Flags().StringVar(&date, "date", "", "event date, YYYY-MM-DD or RFC 3339 (default now)")
	add.Flags().BoolVar(&milestone, "milestone", false, "mark the event as a milestone")
	add.Flags().StringVar(&color, "color", "", "event color (default "+mindmap.DefaultEventColor+")")
	add.Flags().StringVar(&description, "description", "", "event description")

	toggle := &cobra.Command{
		Use:   "toggle <map> <node-id> <event-id>",
		Short: "Mark an event completed or not",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editVariant(cmd.Context(), args[0], args[1], mindmap.TypeTimeline, func(n *mindmap.Node) (mindmap.Patch, error) {
				return mindmap.Patch{"timelineEvents": mindmap.ToggleTimelineEvent(n.Data.TimelineEvents, args[2])}, nil
			})
		},
	}

	cmd.AddCommand(add, toggle)
	return cmd
}

// parseDate accepts a plain date or a full timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return mindmap.ParseDate(s)
}

// =============================================================================
// Resources
// =============================================================================

// resourceCommand creates the "resource" command group.
func (c *CLI) resourceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resource",
		Short: "Edit the entries of a resource node",
	}

	var (
		kind        string
		rating      int
		description string
	)
	add := &cobra.Command{
		Use:   "add <map> <node-id> <title> <url>",
		Short: "Add a study resource",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := mcerrors.ValidateURL(args[3]); err != nil {
				return err
			}
			if cmd.Flags().Changed("rating") {
				if err := mcerrors.ValidateRating(rating); err != nil {
					return err
				}
			}
			return c.editVariant(cmd.Context(), args[0], args[1], mindmap.TypeResource, func(n *mindmap.Node) (mindmap.Patch, error) {
				resources := mindmap.AddResource(n.Data.Resources, mindmap.Resource{
					Title:       args[2],
					URL:         args[3],
					Type:        mindmap.ResourceType(kind),
					Rating:      rating,
					Description: description,
				})
				printSuccess("Added resource %s", resources[len(resources)-1].ID)
				return mindmap.Patch{"resources": resources}, nil
			})
		},
	}
	add.Flags().StringVar(&kind, "type", "", "pdf, video, website or other (default website)")
	add.Flags().IntVar(&rating, "rating", 3, "rating from 1 to 5")
	add.Flags().StringVar(&description, "description", "", "resource description")

	var remove bool
	tag := &cobra.Command{
		Use:   "tag <map> <node-id> <resource-id> <tag>",
		Short: "Tag a resource (or untag it with --remove)",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.editVariant(cmd.Context(), args[0], args[1], mindmap.TypeResource, func(n *mindmap.Node) (mindmap.Patch, error) {
				if remove {
					return mindmap.Patch{"resources": mindmap.RemoveResourceTag(n.Data.Resources, args[2], args[3])}, nil
				}
				return mindmap.Patch{"resources": mindmap.AddResourceTag(n.Data.Resources, args[2], args[3])}, nil
			})
		},
	}
	tag.Flags().BoolVar(&remove, "remove", false, "remove the tag instead of adding it")

	cmd.AddCommand(add, tag)
	return cmd
}
