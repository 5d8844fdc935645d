// Package mindmap defines the document model for mindcanvas: documents,
// nodes, edges and the typed node-data schema.
//
// # Core Types
//
//   - [Document]: a named mind map, the unit of save/load/delete
//   - [Node]: a positioned, typed element with a [NodeData] payload
//   - [Edge]: a directed connection with [EdgeData] style metadata
//
// # Node Data
//
// [NodeData] is a closed schema: an embedded [Base] carries the fields every
// node has (label, colors, stroke, font, content, legend, shadow, glow) and
// a small set of variant fields carries type-specific payloads:
//
//	checklist  checklistItems
//	timeline   timelineEvents, startDate, endDate
//	resource   resources
//
// Variant fields are only decoded when the node's nodeType matches. Anything
// else, unknown keys included, lands in [NodeData.Extra] and is written back
// verbatim, so editors that only know part of the schema never drop data.
//
// The nodeType of a node is fixed at creation. [NodeData.Merge] applies a
// shallow [Patch] and never changes it.
//
// # Derivations
//
// [RenderKindOf], [DefaultLabelOf] and [DefaultVariantDataOf] are pure
// functions of the nodeType (and, for timelines, the supplied time).
// [InitialDocument] returns the canonical empty document.
//
// # Edges
//
// An edge's rendering hint is a pure function of its path style. Use
// [Edge.Apply] after changing [EdgeData] to recompute the hint, markers
// and dash pattern.
package mindmap
