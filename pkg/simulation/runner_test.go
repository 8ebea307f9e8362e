package simulation

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmax-ai/resilord/pkg/blob"
	"github.com/rmax-ai/resilord/pkg/graph"
	"github.com/rmax-ai/resilord/pkg/replicas"
)

func fixedNow() time.Time {
	return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
}

func TestRun_RejectsNegativePfail(t *testing.T) {
	_, err := Run(graph.NewGraph(), replicas.Overlay{}, -0.1, Options{})
	assert.Error(t, err)
}

func TestRun_SingleEdgeScenario(t *testing.T) {
	g := graph.NewGraph()
	g.AddEdge(graph.Edge{Parent: "A", Child: "B"})
	overlay := replicas.Overlay{"A": 1, "B": 2}

	res, err := Run(g, overlay, 0.5, Options{ReplicasFile: "repl.yaml", Now: fixedNow})
	require.NoError(t, err)

	assert.InDelta(t, 0.5, res.ServiceReliability["A"], 1e-12)
	assert.InDelta(t, 0.75, res.ServiceReliability["B"], 1e-12)

	ep, ok := res.Endpoints["/A"]
	require.True(t, ok, "derived endpoint /A expected")
	assert.Equal(t, []string{"A", "B"}, ep.Services)
	assert.InDelta(t, 0.375, ep.Reliability, 1e-12)
	assert.InDelta(t, 0.5, ep.ServiceReliability["A"], 1e-12)
	assert.InDelta(t, 0.75, ep.ServiceReliability["B"], 1e-12)

	assert.Equal(t, 0.5, res.Summary.Pfail)
	assert.Equal(t, "repl", res.Summary.Mode)
	assert.Equal(t, 1, res.Summary.EntrypointCount)
	assert.InDelta(t, 0.375, res.Summary.MinReliability, 1e-12)
	assert.InDelta(t, 0.375, res.Summary.MaxReliability, 1e-12)
	assert.Equal(t, "2024-05-01T12:00:00Z", res.Summary.Timestamp)
}

func TestRun_NoEndpointsDefaultsSummary(t *testing.T) {
	res, err := Run(graph.NewGraph(), replicas.Overlay{}, 0.2, Options{ReplicasFile: "norepl.yaml"})
	require.NoError(t, err)
	assert.Empty(t, res.Endpoints)
	assert.Equal(t, 1.0, res.Summary.MinReliability)
	assert.Equal(t, 1.0, res.Summary.MaxReliability)
	assert.Equal(t, 0, res.Summary.EntrypointCount)
	assert.Equal(t, "norepl", res.Summary.Mode)
}

func TestRun_OverlayOnlyServicesScored(t *testing.T) {
	g := graph.NewGraph()
	g.AddEdge(graph.Edge{Parent: "A", Child: "B"})
	overlay := replicas.Overlay{"standalone": 3}

	res, err := Run(g, overlay, 0.5, Options{ReplicasFile: "repl.yaml"})
	require.NoError(t, err)
	assert.InDelta(t, 0.875, res.ServiceReliability["standalone"], 1e-12)
}

func TestRun_FirstComputationWins(t *testing.T) {
	g := graph.NewGraph()
	g.AddEdge(graph.Edge{Parent: "A", Child: "B"})
	g.AddEdge(graph.Edge{Parent: "B", Child: "A"})
	overlay := replicas.Overlay{"A": 2}

	res, err := Run(g, overlay, 0.5, Options{ReplicasFile: "repl.yaml"})
	require.NoError(t, err)
	// A is scored once with its overlay count, not rescored on the
	// second appearance.
	assert.InDelta(t, 0.75, res.ServiceReliability["A"], 1e-12)
	assert.Len(t, res.ServiceReliability, 2)
}

func TestRun_ExplicitEntrypoints(t *testing.T) {
	g := graph.NewGraph()
	g.AddEdge(graph.Edge{Parent: "A", Child: "B"})
	g.Entrypoints["/home"] = []string{"A", "B", "A"}

	res, err := Run(g, replicas.Overlay{}, 0.5, Options{ReplicasFile: "repl.yaml"})
	require.NoError(t, err)
	require.Len(t, res.Endpoints, 1)
	ep := res.Endpoints["/home"]
	// Duplicate A in the explicit list must not double-count.
	assert.InDelta(t, 0.25, ep.Reliability, 1e-12)
}

func TestRun_MetadataPassesThrough(t *testing.T) {
	g, err := graph.Parse([]byte(`{"dependencies":[{"parent":"A","child":"B"}],"captured_at":"yesterday"}`))
	require.NoError(t, err)

	res, err := Run(g, replicas.Overlay{}, 0.1, Options{ReplicasFile: "repl.yaml"})
	require.NoError(t, err)
	assert.JSONEq(t, `"yesterday"`, string(res.Metadata["captured_at"]))
}

func TestResult_RoundTripIsLossless(t *testing.T) {
	g := graph.NewGraph()
	g.AddEdge(graph.Edge{Parent: "frontend", Child: "auth"})
	g.AddEdge(graph.Edge{Parent: "frontend", Child: "media"})
	overlay := replicas.Overlay{"frontend": 2, "auth": 3}

	res, err := Run(g, overlay, 0.3, Options{ReplicasFile: "repl.yaml", Now: fixedNow})
	require.NoError(t, err)

	store := blob.NewLocalStore(t.TempDir())
	ctx := context.Background()
	require.NoError(t, WriteResult(ctx, store, "result.json", res))

	reread, err := ReadResult(ctx, store, "result.json")
	require.NoError(t, err)

	// Serialization is lossless for the defined schema: the maps must
	// re-marshal to identical bytes.
	orig, err := json.Marshal(res)
	require.NoError(t, err)
	redone, err := json.Marshal(reread)
	require.NoError(t, err)
	assert.Equal(t, string(orig), string(redone))
}
