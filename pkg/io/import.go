package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	mcerrors "github.com/matzehuels/mindcanvas/pkg/errors"
	"github.com/matzehuels/mindcanvas/pkg/mindmap"
)

// ReadJSON decodes and validates a JSON document from r. ReadJSON does not
// close r.
func ReadJSON(r io.Reader) (*mindmap.Document, error) {
	var doc mindmap.Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, mcerrors.Wrap(mcerrors.ErrCodeInvalidFormat, err, "decode")
	}
	return finish(&doc)
}

// ReadYAML decodes and validates a YAML document from r.
func ReadYAML(r io.Reader) (*mindmap.Document, error) {
	var tree any
	if err := yaml.NewDecoder(r).Decode(&tree); err != nil {
		return nil, mcerrors.Wrap(mcerrors.ErrCodeInvalidFormat, err, "decode")
	}
	raw, err := json.Marshal(tree)
	if err != nil {
		return nil, mcerrors.Wrap(mcerrors.ErrCodeInvalidFormat, err, "decode")
	}
	var doc mindmap.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, mcerrors.Wrap(mcerrors.ErrCodeInvalidFormat, err, "decode")
	}
	return finish(&doc)
}

// ImportJSON reads a JSON document from the file at path.
func ImportJSON(path string) (*mindmap.Document, error) {
	return importFile(path, ReadJSON)
}

// ImportYAML reads a YAML document from the file at path.
func ImportYAML(path string) (*mindmap.Document, error) {
	return importFile(path, ReadYAML)
}

func importFile(path string, read func(io.Reader) (*mindmap.Document, error)) (*mindmap.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return read(f)
}

func finish(doc *mindmap.Document) (*mindmap.Document, error) {
	if err := Validate(doc); err != nil {
		return nil, err
	}
	for _, e := range doc.Edges {
		e.Apply()
	}
	return doc, nil
}

// Validate checks the document name (when set) and the uniqueness of node
// and edge ids.
func Validate(doc *mindmap.Document) error {
	if doc.Name != "" {
		if err := mcerrors.ValidateDocumentName(doc.Name); err != nil {
			return err
		}
	}

	seen := make(map[string]bool, len(doc.Nodes))
	for i, n := range doc.Nodes {
		if n == nil {
			return mcerrors.New(mcerrors.ErrCodeInvalidInput, "node %d is null", i)
		}
		if err := mcerrors.ValidateNodeID(n.ID); err != nil {
			return mcerrors.Wrap(mcerrors.ErrCodeInvalidInput, err, "node %d", i)
		}
		if seen[n.ID] {
			return mcerrors.New(mcerrors.ErrCodeInvalidInput, "duplicate node id %q", n.ID)
		}
		seen[n.ID] = true
	}

	edges := make(map[string]bool, len(doc.Edges))
	for i, e := range doc.Edges {
		if e == nil {
			return mcerrors.New(mcerrors.ErrCodeInvalidInput, "edge %d is null", i)
		}
		if e.ID == "" {
			return mcerrors.New(mcerrors.ErrCodeInvalidInput, "edge %d has no id", i)
		}
		if edges[e.ID] {
			return mcerrors.New(mcerrors.ErrCodeInvalidInput, "duplicate edge id %q", e.ID)
		}
		edges[e.ID] = true
	}
	return nil
}
