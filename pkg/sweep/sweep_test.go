package sweep

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmax-ai/resilord/pkg/gate"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "sweep.json", `{
		"graph": "deps.json",
		"out_dir": "results",
		"pfails": [0.1, 0.5],
		"overlays": ["norepl.yaml", "replicas.yaml"]
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "deps.json", cfg.Graph)
	assert.Equal(t, []float64{0.1, 0.5}, cfg.Pfails)
	assert.Len(t, cfg.Overlays, 2)
}

func TestLoadConfig_SchemaViolations(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]string{
		"missing pfails":   `{"graph":"g.json","out_dir":"r","overlays":["a.yaml"]}`,
		"empty overlays":   `{"graph":"g.json","out_dir":"r","pfails":[0.1],"overlays":[]}`,
		"pfail above one":  `{"graph":"g.json","out_dir":"r","pfails":[1.5],"overlays":["a.yaml"]}`,
		"negative pfail":   `{"graph":"g.json","out_dir":"r","pfails":[-0.1],"overlays":["a.yaml"]}`,
		"unknown property": `{"graph":"g.json","out_dir":"r","pfails":[0.1],"overlays":["a.yaml"],"extra":1}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, dir, "sweep.json", content)
			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestRun_WritesOneArtifactPerCombination(t *testing.T) {
	dir := t.TempDir()
	graphPath := writeFile(t, dir, "deps.json", `[{"parent":"A","child":"B"}]`)
	norepl := writeFile(t, dir, "norepl.yaml", "A: 1\nB: 1\n")
	repl := writeFile(t, dir, "replicas.yaml", "A: 2\nB: 3\n")
	outDir := filepath.Join(dir, "results")

	cfg := &Config{
		Graph:    graphPath,
		OutDir:   outDir,
		Pfails:   []float64{0.1, 0.5},
		Overlays: []string{norepl, repl},
	}

	keys, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Len(t, keys, 4)
	assert.Contains(t, keys, "result_norepl_pfail0.1.json")
	assert.Contains(t, keys, "result_replicas_pfail0.5.json")

	// The sweep output feeds straight into the gate.
	res, err := gate.EvaluateDir(context.Background(), outDir, gate.Options{Threshold: 0.01, ResultsMode: "repl"})
	require.NoError(t, err)
	assert.True(t, res.Passed)
	assert.Len(t, res.Scores["/A"], 2)
}
