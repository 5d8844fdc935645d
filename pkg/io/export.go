package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/mindcanvas/pkg/mindmap"
)

// WriteJSON encodes doc as indented JSON and writes it to w.
func WriteJSON(doc *mindmap.Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteYAML encodes doc as YAML and writes it to w.
//
// The document is first encoded as JSON so node data keeps its flat,
// nodeType-dependent shape, then re-emitted as block YAML.
func WriteYAML(doc *mindmap.Document, w io.Writer) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	var tree any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(tree); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes doc to a JSON file at path.
func ExportJSON(doc *mindmap.Document, path string) error {
	return exportFile(path, func(w io.Writer) error { return WriteJSON(doc, w) })
}

// ExportYAML writes doc to a YAML file at path.
func ExportYAML(doc *mindmap.Document, path string) error {
	return exportFile(path, func(w io.Writer) error { return WriteYAML(doc, w) })
}

func exportFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
