package cli

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mindcanvas/pkg/editor"
	mcerrors "github.com/matzehuels/mindcanvas/pkg/errors"
	"github.com/matzehuels/mindcanvas/pkg/mindmap"
)

// =============================================================================
// Shared Flags
// =============================================================================

// patchFlags collects node or edge data given on the command line.
type patchFlags struct {
	data  string
	label string
}

func (f *patchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.data, "data", "", `data fields as a JSON object, e.g. '{"backgroundColor":"#fff"}'`)
	cmd.Flags().StringVar(&f.label, "label", "", "label text")
}

// patch merges --data and --label. It returns nil when neither is set.
func (f *patchFlags) patch(cmd *cobra.Command) (mindmap.Patch, error) {
	var p mindmap.Patch
	if f.data != "" {
		if err := json.Unmarshal([]byte(f.data), &p); err != nil {
			return nil, mcerrors.Wrap(mcerrors.ErrCodeInvalidFormat, err, "--data must be a JSON object")
		}
	}
	if cmd.Flags().Changed("label") {
		if p == nil {
			p = mindmap.Patch{}
		}
		p["label"] = f.label
	}
	return p, nil
}

// positionFlags collects an optional canvas position.
type positionFlags struct {
	x, y float64
}

func (f *positionFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.x, "x", 0, "canvas x coordinate")
	cmd.Flags().Float64Var(&f.y, "y", 0, "canvas y coordinate")
}

// position returns nil unless --x or --y was given.
func (f *positionFlags) position(cmd *cobra.Command) *mindmap.Position {
	if !cmd.Flags().Changed("x") && !cmd.Flags().Changed("y") {
		return nil
	}
	return &mindmap.Position{X: f.x, Y: f.y}
}

// requireNode returns a NotFound error for an unknown id.
func requireNode(ed *editor.Editor, id string) error {
	if _, ok := ed.Node(id); !ok {
		return mcerrors.New(mcerrors.ErrCodeNotFound, "node %q not found", id)
	}
	return nil
}

// =============================================================================
// Node Commands
// =============================================================================

// nodeCommand creates the "node" command group.
func (c *CLI) nodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Add, change and remove nodes",
	}

	cmd.AddCommand(c.nodeAddCommand())
	cmd.AddCommand(c.nodeUpdateCommand())
	cmd.AddCommand(c.nodeSimpleCommand("delete <map> <id>", "Delete a node and its edges",
		func(ctx context.Context, ed *editor.Editor, id string) error {
			if !ed.DeleteNode(ctx, id) {
				return mcerrors.New(mcerrors.ErrCodeNotFound, "node %q not found", id)
			}
			return nil
		}))
	cmd.AddCommand(c.nodeSimpleCommand("copy <map> <id>", "Copy a node's data to the clipboard",
		func(ctx context.Context, ed *editor.Editor, id string) error {
			if err := requireNode(ed, id); err != nil {
				return err
			}
			if !ed.CopyNode(ctx, id) {
				return mcerrors.New(mcerrors.ErrCodeStorageUnavailable, "failed to copy node %q", id)
			}
			return nil
		}))
	cmd.AddCommand(c.nodeSimpleCommand("duplicate <map> <id>", "Duplicate a node next to the original",
		func(ctx context.Context, ed *editor.Editor, id string) error {
			n, err := ed.DuplicateNode(ctx, id)
			if err != nil {
				return err
			}
			if n == nil {
				return mcerrors.New(mcerrors.ErrCodeNotFound, "node %q not found", id)
			}
			printDetail("id %s", n.ID)
			return nil
		}))
	cmd.AddCommand(c.nodePasteCommand())

	return cmd
}

// nodeSimpleCommand builds a subcommand taking a map name and a node id.
func (c *CLI) nodeSimpleCommand(use, short string, fn func(context.Context, *editor.Editor, string) error) *cobra.Command {
	return &cobra.Command{
		Use:               use,
		Short:             short,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeMindMaps,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.edit(ctx, args[0], func(ed *editor.Editor) error {
				return fn(ctx, ed, args[1])
			})
		},
	}
}

// nodeAddCommand creates the "node add" subcommand.
func (c *CLI) nodeAddCommand() *cobra.Command {
	var (
		pf  patchFlags
		pos positionFlags
	)

	cmd := &cobra.Command{
		Use:   "add <map> <node-type>",
		Short: "Add a node",
		Long: `Add a node of the given type. Known types are title, topic, subtopic,
paragraph, section, checklist, timeline, resource, circle, rectangle, square
and triangle; any other type renders as a plain node. Without --x/--y the
node is placed at a random point on the canvas.`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeMindMaps,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			patch, err := pf.patch(cmd)
			if err != nil {
				return err
			}
			return c.edit(ctx, args[0], func(ed *editor.Editor) error {
				n, err := ed.AddNode(ctx, args[1], editor.Overrides{Data: patch, Position: pos.position(cmd)})
				if err != nil {
					return err
				}
				printDetail("id %s", n.ID)
				return nil
			})
		},
	}

	pf.register(cmd)
	pos.register(cmd)
	return cmd
}

// nodeUpdateCommand creates the "node update" subcommand.
func (c *CLI) nodeUpdateCommand() *cobra.Command {
	var (
		pf  patchFlags
		pos positionFlags
	)

	cmd := &cobra.Command{
		Use:   "update <map> <id>",
		Short: "Change a node's data or position",
		Long: `Merge --data and --label into a node's data and move it to --x/--y.
Top-level data fields are replaced wholesale; a JSON null removes a field.
The node type never changes.`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeMindMaps,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			patch, err := pf.patch(cmd)
			if err != nil {
				return err
			}
			p := pos.position(cmd)
			if patch == nil && p == nil {
				return mcerrors.New(mcerrors.ErrCodeMissingInput, "nothing to update: pass --data, --label, --x or --y")
			}
			return c.edit(ctx, args[0], func(ed *editor.Editor) error {
				id := args[1]
				if err := requireNode(ed, id); err != nil {
					return err
				}
				if patch != nil {
					if err := ed.UpdateNodeData(ctx, id, patch); err != nil {
						return err
					}
				}
				if p != nil {
					if err := ed.MoveNode(ctx, id, *p); err != nil {
						return err
					}
				}
				printSuccess("Updated node %s", id)
				return nil
			})
		},
	}

	pf.register(cmd)
	pos.register(cmd)
	return cmd
}

// nodePasteCommand creates the "node paste" subcommand.
func (c *CLI) nodePasteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "paste <map> [target-id]",
		Short: "Paste the clipboard into a node, or as a new node",
		Long: `Merge the copied node data into target-id, keeping the target's type.
Without a target, or when the target does not exist, the clipboard becomes
a new node.`,
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: c.completeMindMaps,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			target := ""
			if len(args) == 2 {
				target = args[1]
			}
			return c.edit(ctx, args[0], func(ed *editor.Editor) error {
				n, err := ed.PasteNode(ctx, target)
				if err != nil {
					return err
				}
				if n == nil {
					printInfo("Clipboard is empty")
				}
				return nil
			})
		},
	}
}

// =============================================================================
// Edge Commands
// =============================================================================

// edgeCommand creates the "edge" command group.
func (c *CLI) edgeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edge",
		Short: "Connect nodes and style connections",
	}
	cmd.AddCommand(c.edgeConnectCommand())
	cmd.AddCommand(c.edgeUpdateCommand())
	return cmd
}

// edgeConnectCommand creates the "edge connect" subcommand.
func (c *CLI) edgeConnectCommand() *cobra.Command {
	var sourceHandle, targetHandle string

	cmd := &cobra.Command{
		Use:               "connect <map> <source-id> <target-id>",
		Short:             "Connect two nodes",
		Args:              cobra.ExactArgs(3),
		ValidArgsFunction: c.completeMindMaps,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.edit(ctx, args[0], func(ed *editor.Editor) error {
				e, err := ed.Connect(ctx, editor.ConnectRequest{
					Source:       args[1],
					Target:       args[2],
					SourceHandle: sourceHandle,
					TargetHandle: targetHandle,
				})
				if err != nil {
					return err
				}
				printSuccess("Connected %s %s %s", args[1], iconArrow, args[2])
				printDetail("id %s", e.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&sourceHandle, "source-handle", "", "handle on the source node")
	cmd.Flags().StringVar(&targetHandle, "target-handle", "", "handle on the target node")
	return cmd
}

// edgeUpdateCommand creates the "edge update" subcommand.
func (c *CLI) edgeUpdateCommand() *cobra.Command {
	var (
		pf     patchFlags
		path   string
		stroke string
	)

	cmd := &cobra.Command{
		Use:   "update <map> <edge-id>",
		Short: "Change an edge's label, path or stroke",
		Long: `Merge data into an edge and recompute how it is drawn.

Path styles: straight, curved, step, smoothstep, loopback, zigzag, wavy.
Stroke styles: solid, dashed, dotted.`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeMindMaps,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			patch, err := pf.patch(cmd)
			if err != nil {
				return err
			}
			if path != "" || stroke != "" {
				if patch == nil {
					patch = mindmap.Patch{}
				}
				if path != "" {
					patch["pathStyle"] = path
				}
				if stroke != "" {
					patch["strokeStyle"] = stroke
				}
			}
			if patch == nil {
				return mcerrors.New(mcerrors.ErrCodeMissingInput, "nothing to update: pass --data, --label, --path or --stroke")
			}
			return c.edit(ctx, args[0], func(ed *editor.Editor) error {
				id := args[1]
				if _, e := mindmap.FindEdge(ed.Document().Edges, id); e == nil {
					return mcerrors.New(mcerrors.ErrCodeNotFound, "edge %q not found", id)
				}
				if err := ed.UpdateEdge(ctx, id, patch); err != nil {
					return err
				}
				printSuccess("Updated edge %s", id)
				return nil
			})
		},
	}

	pf.register(cmd)
	cmd.Flags().StringVar(&path, "path", "", "path style")
	cmd.Flags().StringVar(&stroke, "stroke", "", "stroke style")
	return cmd
}
