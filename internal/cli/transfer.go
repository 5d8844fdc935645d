package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	mcerrors "github.com/matzehuels/mindcanvas/pkg/errors"
	"github.com/matzehuels/mindcanvas/pkg/export"
	"github.com/matzehuels/mindcanvas/pkg/fonts"
	mcio "github.com/matzehuels/mindcanvas/pkg/io"
	"github.com/matzehuels/mindcanvas/pkg/mindmap"
	"github.com/matzehuels/mindcanvas/pkg/notify"
)

// =============================================================================
// Export
// =============================================================================

// exportFlags holds the flags of the export command.
type exportFlags struct {
	formats string
	output  string
	pinned  bool
	scale   float64
	font    string
}

// parseFormats parses a comma-separated format list. Empty means svg.
func parseFormats(s string) ([]export.Format, error) {
	if strings.TrimSpace(s) == "" {
		return []export.Format{export.FormatSVG}, nil
	}
	var out []export.Format
	for _, part := range strings.Split(s, ",") {
		f, err := export.ParseFormat(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// exportPath returns the file for format f. A directory output (or an
// empty one) gets "<name>.<format>" inside it.
func exportPath(output, name string, f export.Format, multi bool) string {
	if output == "" {
		return name + "." + string(f)
	}
	if multi || strings.HasSuffix(output, string(os.PathSeparator)) {
		return filepath.Join(output, name+"."+string(f))
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		return filepath.Join(output, name+"."+string(f))
	}
	return output
}

// exportCommand creates the "export" command.
func (c *CLI) exportCommand() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export <map>",
		Short: "Export a mind map as SVG, PNG, DOT, JSON or YAML",
		Long: `Export a stored mind map. SVG is laid out by Graphviz; PNG keeps the
canvas positions. JSON and YAML write the document as stored.

With one format, -o names the output file ("-" writes to stdout). With
several formats, -o names a directory.`,
		Example: `  mindcanvas export "Exam Prep"
  mindcanvas export plan -f svg,png,json -o out/
  mindcanvas export plan -f dot -o - | dot -Tpdf > plan.pdf`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeMindMaps,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			formats, err := parseFormats(flags.formats)
			if err != nil {
				return err
			}
			font := fonts.Family(flags.font)
			if !fonts.Valid(font) {
				return mcerrors.New(mcerrors.ErrCodeInvalidInput, "unknown font %q", flags.font)
			}
			opts := export.Options{
				DOT: export.DOTOptions{Pinned: flags.pinned},
				PNG: export.PNGOptions{Scale: flags.scale, Font: font},
			}

			s, err := c.openSession(ctx, nil, notify.KindLoaded)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.ws.Load(ctx, args[0]); err != nil {
				return err
			}
			doc, err := s.ws.Export(ctx)
			if err != nil {
				return err
			}
			if dropped := export.NewView(doc).Dropped(); len(dropped) > 0 {
				printWarning("Skipping %d edges with missing endpoints", len(dropped))
				logger.Debug("dropped edges", "ids", dropped)
			}

			if flags.output == "-" {
				if len(formats) != 1 {
					return mcerrors.New(mcerrors.ErrCodeInvalidInput, "stdout output takes exactly one format")
				}
				return export.Write(ctx, cmd.OutOrStdout(), doc, formats[0], opts)
			}

			multi := len(formats) > 1
			if multi && flags.output != "" {
				if err := os.MkdirAll(flags.output, 0o755); err != nil {
					return err
				}
			}
			for _, f := range formats {
				prog := newProgress(logger)
				spin := newSpinner(ctx, fmt.Sprintf("Rendering %s...", f))
				spin.Start()

				var buf bytes.Buffer
				err := export.Write(ctx, &buf, doc, f, opts)
				spin.Stop()
				if err != nil {
					return err
				}
				path := exportPath(flags.output, doc.Name, f, multi)
				if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				prog.done("Exported " + string(f))
				printFile(path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.formats, "format", "f", "svg", "comma-separated formats: svg, png, dot, json, yaml")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", `output file or directory ("-" for stdout)`)
	cmd.Flags().BoolVar(&flags.pinned, "pinned", false, "keep canvas positions in DOT and SVG output")
	cmd.Flags().Float64Var(&flags.scale, "scale", 1, "PNG scale factor")
	cmd.Flags().StringVar(&flags.font, "font", string(fonts.Mono), "PNG font: mono, regular or bold")
	return cmd
}

// =============================================================================
// Import
// =============================================================================

// readDocument reads a JSON or YAML document, picking the codec from the
// file extension.
func readDocument(path string) (*mindmap.Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return mcio.ImportJSON(path)
	case ".yaml", ".yml":
		return mcio.ImportYAML(path)
	default:
		return nil, mcerrors.New(mcerrors.ErrCodeUnsupported, "cannot import %s: expected .json, .yaml or .yml", path)
	}
}

// importCommand creates the "import" command.
func (c *CLI) importCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Store a mind map read from a JSON or YAML file",
		Long: `Store a mind map read from a JSON or YAML file. The name comes from
--name, then the document's own name, then the file name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			if name == "" {
				name = doc.Name
			}
			if name == "" {
				base := filepath.Base(args[0])
				name = strings.TrimSuffix(base, filepath.Ext(base))
			}

			s, err := c.openSession(ctx, nil)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.ws.Save(ctx, name, doc.Nodes, doc.Edges); err != nil {
				return err
			}
			printDetail("%d nodes, %d edges", len(doc.Nodes), len(doc.Edges))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "store under this name")
	return cmd
}

// =============================================================================
// Inspect
// =============================================================================

// inspectCommand creates the "inspect" command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		style string
		width int
		raw   bool
	)

	cmd := &cobra.Command{
		Use:               "inspect <map> <node-id>",
		Short:             "Show the title, description and links of a node",
		Args:              cobra.ExactArgs(2),
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

			v := export.NewView(s.ws.Current())
			if _, ok := v.Node(args[1]); !ok {
				return mcerrors.New(mcerrors.ErrCodeNotFound, "node %q not found", args[1])
			}
			d, ok := v.Inspect(args[1])
			if !ok {
				printInfo("Node %s has no content", args[1])
				return nil
			}

			md := export.Markdown(d)
			if raw {
				fmt.Fprint(cmd.OutOrStdout(), md)
				return nil
			}
			out, err := export.RenderMarkdown(md, style, width)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&style, "style", "dark", "glamour style: dark, light, notty, ascii")
	cmd.Flags().IntVar(&width, "width", 80, "wrap width")
	cmd.Flags().BoolVar(&raw, "raw", false, "print Markdown source instead of rendering it")
	return cmd
}
