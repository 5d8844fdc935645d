package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	mcerrors "github.com/matzehuels/mindcanvas/pkg/errors"
	mcio "github.com/matzehuels/mindcanvas/pkg/io"
	"github.com/matzehuels/mindcanvas/pkg/notify"
)

// newCommand creates the "new" command.
func (c *CLI) newCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "new [name]",
		Short: "Create and save a new mind map",
		Long: `Create a mind map holding a single "Main Idea" title node and save it.
Without a name argument you are prompted for one.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.openSession(ctx, terminalPrompter)
			if err != nil {
				return err
			}
			defer s.Close()

			if len(args) == 1 {
				err = s.ws.Create(ctx, args[0])
			} else {
				err = s.ws.CreateNew(ctx)
			}
			if mcerrors.IsCancellation(err) {
				printInfo("Cancelled")
				return nil
			}
			if err != nil {
				return err
			}
			printNextStep("Add a node", fmt.Sprintf("%s node add %q topic", appName, s.ws.Current().Name))
			return nil
		},
	}
}

// listCommand creates the "list" command.
func (c *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored mind maps",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.openSession(ctx, nil)
			if err != nil {
				return err
			}
			defer s.Close()

			names := s.ws.List(ctx)
			if len(names) == 0 {
				printInfo("No mind maps saved yet")
				printNextStep("Create one", appName+" new")
				return nil
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

// showCommand creates the "show" command.
func (c *CLI) showCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:               "show <name>",
		Short:             "Print the nodes and edges of a mind map",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeMindMaps,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.openSession(ctx, nil, notify.KindLoaded)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.ws.Load(ctx, args[0]); err != nil {
				return err
			}
			doc := s.ws.Current()
			if asJSON {
				return mcio.WriteJSON(doc, cmd.OutOrStdout())
			}
			printDocument(doc)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the document as JSON")
	return cmd
}

// saveCommand creates the "save" command.
func (c *CLI) saveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "save <name> [file]",
		Short: "Store nodes and edges under a name",
		Long: `Store a JSON document {"nodes": [...], "edges": [...]} under name,
replacing any mind map of that name. The document is read from file, or
from stdin when file is omitted or "-".`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var r io.Reader = cmd.InOrStdin()
			if len(args) == 2 && args[1] != "-" {
				f, err := os.Open(args[1])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			doc, err := mcio.ReadJSON(r)
			if err != nil {
				return err
			}

			s, err := c.openSession(ctx, nil)
			if err != nil {
				return err
			}
			defer s.Close()
			return s.ws.Save(ctx, args[0], doc.Nodes, doc.Edges)
		},
	}
}

// deleteCommand creates the "delete" command.
func (c *CLI) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "delete <name>",
		Aliases:           []string{"rm"},
		Short:             "Delete a stored mind map",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeMindMaps,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.openSession(ctx, nil)
			if err != nil {
				return err
			}
			defer s.Close()
			return s.ws.Delete(ctx, args[0])
		},
	}
}
