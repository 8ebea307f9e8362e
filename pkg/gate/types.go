package gate

// AggregationMode selects how per-endpoint aggregate scores fold into
// the final verdict.
type AggregationMode string

const (
	// ModeAny fails the gate when any endpoint's worst-case score is
	// below the threshold. This is the default.
	ModeAny AggregationMode = "any"
	// ModeMean passes when the arithmetic mean of the per-endpoint
	// worst-case scores clears the threshold, tolerating individual
	// violators.
	ModeMean AggregationMode = "mean"
)

// ScorePoint is one sweep entry of an endpoint's score series. Mode
// records which replication mode the source artifact was grouped under,
// so a caller can detect accidental mixing when no mode filter was
// supplied.
type ScorePoint struct {
	Pfail       float64 `json:"pfail"`
	Reliability float64 `json:"reliability"`
	Mode        string  `json:"mode,omitempty"`
}

// Result is the gate verdict. A failed gate is a normal result, not an
// error; only the CLI layer turns it into an exit status.
type Result struct {
	Passed bool                    `json:"passed"`
	Reason string                  `json:"reason"`
	Scores map[string][]ScorePoint `json:"scores"`
}

// Options tunes one evaluation pass.
type Options struct {
	Threshold float64
	Mode      AggregationMode
	// ResultsMode restricts evaluation to artifacts of one replication
	// mode (case-insensitive exact match). Empty disables the filter.
	ResultsMode string
	// Filters whitelists endpoint names (exact match). Empty means all.
	Filters []string
}

// Summary is the optional machine-readable evaluation document written
// next to the verdict.
type Summary struct {
	Threshold   float64                 `json:"threshold"`
	Mode        AggregationMode         `json:"mode"`
	ResultsMode string                  `json:"results_mode,omitempty"`
	Filters     []string                `json:"filters"`
	Passed      bool                    `json:"passed"`
	Reason      string                  `json:"reason"`
	Endpoints   map[string][]ScorePoint `json:"endpoints"`
}
