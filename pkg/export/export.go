package export

import (
	"context"
	"io"
	"slices"
	"strings"

	mcerrors "github.com/matzehuels/mindcanvas/pkg/errors"
	mcio "github.com/matzehuels/mindcanvas/pkg/io"
	"github.com/matzehuels/mindcanvas/pkg/mindmap"
)

// Format is an export output format.
type Format string

const (
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
	FormatDOT  Format = "dot"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists every supported format.
var Formats = []Format{FormatSVG, FormatPNG, FormatDOT, FormatJSON, FormatYAML}

// ParseFormat accepts a format name, case-insensitively. "yml" is YAML.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "yml" {
		f = FormatYAML
	}
	if !slices.Contains(Formats, f) {
		return "", mcerrors.New(mcerrors.ErrCodeUnsupported, "unsupported export format %q", s)
	}
	return f, nil
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatDOT:
		return "text/vnd.graphviz"
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	default:
		return "application/octet-stream"
	}
}

// Options configures [Write].
type Options struct {
	DOT DOTOptions
	PNG PNGOptions
}

// Write renders doc in format f to w. Image formats go through [NewView],
// so dangling edges are dropped; JSON and YAML write the document as
// stored.
func Write(ctx context.Context, w io.Writer, doc *mindmap.Document, f Format, opts Options) error {
	switch f {
	case FormatJSON:
		return mcio.WriteJSON(doc, w)
	case FormatYAML:
		return mcio.WriteYAML(doc, w)
	}

	v := NewView(doc)
	switch f {
	case FormatDOT:
		_, err := io.WriteString(w, DOT(v, opts.DOT))
		return err
	case FormatSVG:
		svg, err := RenderDOT(ctx, DOT(v, opts.DOT))
		if err != nil {
			return mcerrors.Wrap(mcerrors.ErrCodeInternal, err, "svg export")
		}
		_, err = w.Write(svg)
		return err
	case FormatPNG:
		return PNG(w, v, opts.PNG)
	default:
		return mcerrors.New(mcerrors.ErrCodeUnsupported, "unsupported export format %q", f)
	}
}
