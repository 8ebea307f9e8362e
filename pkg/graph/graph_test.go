package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_BareEdgeList(t *testing.T) {
	g, err := Parse([]byte(`[{"parent":"A","child":"B"},{"parent":"B","child":"C"}]`))
	require.NoError(t, err)
	assert.Len(t, g.Dependencies, 2)
	assert.Equal(t, Edge{Parent: "A", Child: "B"}, g.Dependencies[0])
	assert.Empty(t, g.Entrypoints)
	assert.Empty(t, g.Metadata)
}

func TestParse_ObjectWithMetadata(t *testing.T) {
	doc := `{
		"dependencies": [{"parent":"frontend","child":"auth"}],
		"entrypoints": {"/login": ["frontend", "auth"]},
		"captured_at": "2024-05-01T00:00:00Z",
		"source": "jaeger"
	}`
	g, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Len(t, g.Dependencies, 1)
	assert.Equal(t, []string{"frontend", "auth"}, g.Entrypoints["/login"])
	assert.Contains(t, g.Metadata, "captured_at")
	assert.Contains(t, g.Metadata, "source")
	assert.NotContains(t, g.Metadata, "dependencies")
	assert.NotContains(t, g.Metadata, "entrypoints")
}

func TestParse_UnsupportedShape(t *testing.T) {
	_, err := Parse([]byte(`"just a string"`))
	assert.Error(t, err)

	_, err = Parse([]byte(`42`))
	assert.Error(t, err)

	_, err = Parse([]byte(`{not json`))
	assert.Error(t, err)
}

func TestResolveEntrypoints_ExplicitWinsVerbatim(t *testing.T) {
	g := NewGraph()
	g.AddEdge(Edge{Parent: "A", Child: "B"})
	g.Entrypoints["/custom"] = []string{"X", "Y", "X"}

	eps := ResolveEntrypoints(g)
	require.Len(t, eps, 1)
	// Explicit lists are trusted as-is, duplicates included.
	assert.Equal(t, []string{"X", "Y", "X"}, eps["/custom"])
}

func TestResolveEntrypoints_DerivedFromEdges(t *testing.T) {
	g := NewGraph()
	g.AddEdge(Edge{Parent: "A", Child: "B"})
	g.AddEdge(Edge{Parent: "A", Child: "C"})
	g.AddEdge(Edge{Parent: "A", Child: "B"})
	g.AddEdge(Edge{Parent: "B", Child: "C"})
	g.AddEdge(Edge{Parent: "", Child: "C"})
	g.AddEdge(Edge{Parent: "D", Child: ""})

	eps := ResolveEntrypoints(g)
	require.Len(t, eps, 2)
	assert.Equal(t, []string{"A", "B", "C"}, eps["/A"])
	assert.Equal(t, []string{"B", "C"}, eps["/B"])
}

func TestResolveEntrypoints_EmptyGraph(t *testing.T) {
	eps := ResolveEntrypoints(NewGraph())
	assert.Empty(t, eps)
}

func TestServices_FirstSeenOrder(t *testing.T) {
	g := NewGraph()
	g.AddEdge(Edge{Parent: "A", Child: "B"})
	g.AddEdge(Edge{Parent: "B", Child: "A"})
	g.AddEdge(Edge{Parent: "C", Child: "B"})

	assert.Equal(t, []string{"A", "B", "C"}, g.Services())
}

func TestOrderedSet(t *testing.T) {
	s := NewOrderedSet()
	assert.True(t, s.Add("a"))
	assert.True(t, s.Add("b"))
	assert.False(t, s.Add("a"))
	assert.True(t, s.Contains("b"))
	assert.False(t, s.Contains("c"))
	assert.Equal(t, []string{"a", "b"}, s.Values())
	assert.Equal(t, 2, s.Len())
}
