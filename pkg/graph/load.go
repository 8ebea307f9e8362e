package graph

import (
	"encoding/json"
	"fmt"
	"os"
)

// Load reads a dependency graph document from disk. Two shapes are
// accepted: a bare JSON array of edges, or an object carrying
// "dependencies" plus optional "entrypoints" and arbitrary metadata
// fields. Anything else is an input-validation error.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph %s: %w", path, err)
	}
	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse graph %s: %w", path, err)
	}
	return g, nil
}

// Parse decodes a graph document from raw JSON.
func Parse(data []byte) (*Graph, error) {
	var probe interface{}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	g := NewGraph()

	switch probe.(type) {
	case []interface{}:
		if err := json.Unmarshal(data, &g.Dependencies); err != nil {
			return nil, fmt.Errorf("invalid edge list: %w", err)
		}
		return g, nil

	case map[string]interface{}:
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, fmt.Errorf("invalid graph object: %w", err)
		}
		if raw, ok := fields["dependencies"]; ok {
			if err := json.Unmarshal(raw, &g.Dependencies); err != nil {
				return nil, fmt.Errorf("invalid dependencies field: %w", err)
			}
		}
		if raw, ok := fields["entrypoints"]; ok {
			if err := json.Unmarshal(raw, &g.Entrypoints); err != nil {
				return nil, fmt.Errorf("invalid entrypoints field: %w", err)
			}
		}
		for key, raw := range fields {
			if key == "dependencies" || key == "entrypoints" {
				continue
			}
			g.Metadata[key] = raw
		}
		return g, nil

	default:
		return nil, fmt.Errorf("unsupported graph format: expected array or object")
	}
}
