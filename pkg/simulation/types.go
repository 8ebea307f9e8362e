package simulation

import (
	"encoding/json"
	"time"
)

// Summary captures the run-level headline numbers of one simulation.
type Summary struct {
	Pfail           float64 `json:"pfail"`
	ReplicasFile    string  `json:"replicas_file"`
	Timestamp       string  `json:"timestamp"`
	MinReliability  float64 `json:"min_reliability"`
	MaxReliability  float64 `json:"max_reliability"`
	EntrypointCount int     `json:"entrypoint_count"`
	Mode            string  `json:"mode"`
}

// Endpoint is the per-endpoint slice of a result document: the ordered
// service dependency list, the composed reliability, and a snapshot of
// each constituent service's reliability at run time.
type Endpoint struct {
	Services           []string           `json:"services"`
	Reliability        float64            `json:"reliability"`
	ServiceReliability map[string]float64 `json:"service_reliability"`
}

// Result is the sole artifact of a simulation run. It is written once
// and never mutated; the gate evaluator works entirely from these
// documents without re-reading the graph.
type Result struct {
	Metadata           map[string]json.RawMessage `json:"metadata"`
	Summary            Summary                    `json:"summary"`
	ServiceReliability map[string]float64         `json:"service_reliability"`
	Endpoints          map[string]Endpoint        `json:"endpoints"`
}

// Options tunes a single run. ReplicasFile feeds the summary and the
// replication-mode tag; Now is swappable for tests.
type Options struct {
	ReplicasFile string
	Now          func() time.Time
}
