// Package io provides JSON and YAML import and export for mind map
// documents.
//
// # Format
//
// The JSON form is the same one the store uses for each entry:
//
//	{
//	  "name": "Exam Prep",
//	  "nodes": [
//	    {"id": "1", "type": "base", "position": {"x": 400, "y": 200},
//	     "data": {"label": "Main Idea", "nodeType": "title", ...}}
//	  ],
//	  "edges": [
//	    {"id": "…", "source": "1", "target": "2", "type": "smoothstep",
//	     "data": {"pathStyle": "smoothstep", "arrowEnd": true, ...}}
//	  ],
//	  "seq": 2
//	}
//
// Unknown keys inside node and edge data are preserved. The YAML form is
// the same tree written as YAML.
//
// # Import
//
// [ReadJSON] and [ReadYAML] decode from any io.Reader; [ImportJSON] and
// [ImportYAML] open a file by path. Every import validates the document:
//
//   - the name, when present, must pass errors.ValidateDocumentName
//   - every node id must be valid and unique
//   - every edge id must be unique
//
// Edge presentation fields are recomputed from edge data on import, so a
// hand-edited file cannot leave an edge's type disagreeing with its path
// style.
//
// # Export
//
// [WriteJSON] and [WriteYAML] encode to any io.Writer; [ExportJSON] and
// [ExportYAML] create a file. Selection flags are written as they are.
package io
