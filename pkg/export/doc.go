// Package export renders saved mind maps for reading.
//
// # Overview
//
// A [View] is a read-only copy of a document. Building one clears
// selection and leaves out edges whose endpoints no longer exist, so every
// renderer sees a consistent graph. [View.Inspect] returns the [Detail] of
// a node that has content (title, description and links); nodes without
// content have nothing to inspect.
//
// # Renderers
//
//   - [DOT] produces Graphviz source with one shape per node kind and
//     edge styles taken from edge data.
//   - [SVG] lays the DOT graph out with Graphviz in-process.
//   - [PNG] draws nodes at their canvas positions with gg.
//   - [Markdown] and [RenderMarkdown] format a node detail for terminals.
//
// [Write] dispatches on a [Format] and also covers the JSON and YAML
// document codecs.
//
// # Dependencies
//
// SVG rendering uses [github.com/goccy/go-graphviz], which embeds Graphviz
// as WebAssembly. PNG rendering uses [github.com/fogleman/gg] with the Go
// fonts from package fonts.
package export
