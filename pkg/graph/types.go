package graph

import "encoding/json"

// Edge represents one observed parent -> child call dependency.
// Edges are not unique: a trace collector may report the same pair
// many times and the graph may contain cycles.
type Edge struct {
	Parent string `json:"parent"`
	Child  string `json:"child"`
}

// Graph is the canonical dependency snapshot consumed by a simulation run.
type Graph struct {
	Dependencies []Edge              `json:"dependencies"`
	Entrypoints  map[string][]string `json:"entrypoints,omitempty"`
	// Metadata carries every top-level field of the source document that
	// is not dependencies or entrypoints. It passes through to the
	// result artifact untouched.
	Metadata map[string]json.RawMessage `json:"metadata,omitempty"`
}

// NewGraph creates an empty dependency graph.
func NewGraph() *Graph {
	return &Graph{
		Entrypoints: make(map[string][]string),
		Metadata:    make(map[string]json.RawMessage),
	}
}

// AddEdge appends an edge to the dependency list.
func (g *Graph) AddEdge(e Edge) {
	g.Dependencies = append(g.Dependencies, e)
}

// Services returns every service named as a parent or child, in
// edge-list insertion order with first occurrence kept.
func (g *Graph) Services() []string {
	set := NewOrderedSet()
	for _, dep := range g.Dependencies {
		if dep.Parent != "" {
			set.Add(dep.Parent)
		}
		if dep.Child != "" {
			set.Add(dep.Child)
		}
	}
	return set.Values()
}
