package export

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// Markdown formats a node detail as a Markdown document: the title as a
// heading, the description as a paragraph, and links as a list.
func Markdown(d Detail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", d.Title)
	if d.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", d.Description)
	}
	if len(d.Links) > 0 {
		b.WriteString("\n## Links\n\n")
		for _, l := range d.Links {
			label := l.Label
			if label == "" {
				label = l.URL
			}
			fmt.Fprintf(&b, "- [%s](%s)\n", label, l.URL)
		}
	}
	return b.String()
}

var (
	rendererMu sync.Mutex
	// Renderers keyed by style and wrap width.
	renderers = map[string]*glamour.TermRenderer{}
)

// RenderMarkdown renders md for a terminal using a glamour standard style
// ("dark", "light", "notty", ...). Widths below 20 are raised to 20.
func RenderMarkdown(md, style string, width int) (string, error) {
	width = max(width, 20)
	key := fmt.Sprintf("%s:%d", style, width)

	rendererMu.Lock()
	defer rendererMu.Unlock()
	r := renderers[key]
	if r == nil {
		var err error
		r, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return "", fmt.Errorf("markdown renderer: %w", err)
		}
		renderers[key] = r
	}

	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return strings.TrimRight(out, "\n"), nil
}
