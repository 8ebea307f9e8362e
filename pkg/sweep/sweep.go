// Package sweep drives a batch of simulation runs: a pfail grid crossed
// with a set of replica overlays, one result artifact per combination.
// The configuration document is validated against an embedded JSON
// Schema before anything runs.
package sweep

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/rmax-ai/resilord/pkg/blob"
	"github.com/rmax-ai/resilord/pkg/graph"
	"github.com/rmax-ai/resilord/pkg/replicas"
	"github.com/rmax-ai/resilord/pkg/simulation"
)

//go:embed schema.json
var schemaJSON string

var schema = jsonschema.MustCompileString("sweep.schema.json", schemaJSON)

// Config describes one sweep: every pfail is simulated against every
// overlay, writing artifacts into OutDir.
type Config struct {
	Graph    string    `json:"graph"`
	OutDir   string    `json:"out_dir"`
	Pfails   []float64 `json:"pfails"`
	Overlays []string  `json:"overlays"`
}

// LoadConfig reads and validates a sweep configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sweep config %s: %w", path, err)
	}

	var payload interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("invalid sweep config %s: %w", path, err)
	}
	if err := schema.Validate(payload); err != nil {
		return nil, fmt.Errorf("sweep config %s failed validation: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode sweep config %s: %w", path, err)
	}
	return &cfg, nil
}

// Run executes the sweep and returns the artifact keys written, in
// execution order.
func Run(ctx context.Context, cfg *Config) ([]string, error) {
	g, err := graph.Load(cfg.Graph)
	if err != nil {
		return nil, err
	}
	store := blob.NewLocalStore(cfg.OutDir)

	var keys []string
	for _, overlayPath := range cfg.Overlays {
		overlay, err := replicas.Load(overlayPath)
		if err != nil {
			return nil, err
		}
		stem := strings.TrimSuffix(filepath.Base(overlayPath), filepath.Ext(overlayPath))
		for _, pfail := range cfg.Pfails {
			res, err := simulation.Run(g, overlay, pfail, simulation.Options{ReplicasFile: overlayPath})
			if err != nil {
				return nil, err
			}
			key := ArtifactKey(stem, pfail)
			if err := simulation.WriteResult(ctx, store, key, res); err != nil {
				return nil, err
			}
			log.Printf("[sweep] %s: pfail=%g mode=%s endpoints=%d", key, pfail, res.Summary.Mode, res.Summary.EntrypointCount)
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// ArtifactKey names one sweep artifact. Keys embed the overlay stem and
// the pfail so a full sweep never collides with itself.
func ArtifactKey(overlayStem string, pfail float64) string {
	return fmt.Sprintf("result_%s_pfail%s.json", overlayStem, strconv.FormatFloat(pfail, 'g', -1, 64))
}
