package store

import (
	"encoding/json"
	"time"
)

// RunKind says which pipeline stage produced a history record.
type RunKind string

const (
	RunKindSimulate RunKind = "simulate"
	RunKindGate     RunKind = "gate"
)

// RunRecord is one archived pipeline run. Simulation records carry
// pfail/mode and the result summary; gate records carry the verdict.
// The archive is append-only: a record is never updated once written.
type RunRecord struct {
	ID        int64           `json:"id"`
	Kind      RunKind         `json:"kind"`
	Timestamp time.Time       `json:"timestamp"`
	Pfail     float64         `json:"pfail"`
	Mode      string          `json:"mode"`
	Passed    *bool           `json:"passed,omitempty"`
	Reason    string          `json:"reason,omitempty"`
	Summary   json.RawMessage `json:"summary"`
}
