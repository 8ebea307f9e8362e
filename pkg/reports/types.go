package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/rmax-ai/resilord/pkg/blob"
)

// Generator produces one rendered report.
type Generator interface {
	Generate(ctx context.Context) (io.Reader, error)
}

// Cell holds the reliability of one endpoint at one pfail, split by
// replication mode. Nil means no artifact covered that combination.
type Cell struct {
	NoRepl *float64
	Repl   *float64
}

// Table is the endpoint x pfail reliability matrix extracted from a
// results directory.
type Table struct {
	Pfails    []string
	Endpoints []string
	Cells     map[string]map[string]Cell // endpoint -> pfail -> cell
}

type tableDoc struct {
	Summary   map[string]interface{} `json:"summary"`
	Endpoints map[string]struct {
		Reliability *float64 `json:"reliability"`
	} `json:"endpoints"`
}

// BuildTable scans the artifact store and folds every result document
// into the matrix. Documents without a numeric summary.pfail are
// ignored, matching the gate's loading rules.
func BuildTable(ctx context.Context, store blob.Store) (*Table, error) {
	keys, err := store.List(ctx, ".json")
	if err != nil {
		return nil, fmt.Errorf("failed to scan results: %w", err)
	}

	table := &Table{Cells: make(map[string]map[string]Cell)}
	pfailSeen := make(map[string]float64)

	for _, key := range keys {
		rc, err := store.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read artifact %s: %w", key, err)
		}
		var doc tableDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			continue
		}
		pfail, ok := doc.Summary["pfail"].(float64)
		if !ok {
			continue
		}
		pfailKey := strconv.FormatFloat(pfail, 'g', -1, 64)
		pfailSeen[pfailKey] = pfail

		mode, _ := doc.Summary["mode"].(string)
		for endpoint, details := range doc.Endpoints {
			reliability := 0.0
			if details.Reliability != nil {
				reliability = *details.Reliability
			}
			row, ok := table.Cells[endpoint]
			if !ok {
				row = make(map[string]Cell)
				table.Cells[endpoint] = row
			}
			cell := row[pfailKey]
			score := reliability
			if mode == "repl" {
				cell.Repl = &score
			} else {
				cell.NoRepl = &score
			}
			row[pfailKey] = cell
		}
	}

	for pfail := range pfailSeen {
		table.Pfails = append(table.Pfails, pfail)
	}
	sort.Slice(table.Pfails, func(i, j int) bool {
		return pfailSeen[table.Pfails[i]] < pfailSeen[table.Pfails[j]]
	})
	for endpoint := range table.Cells {
		table.Endpoints = append(table.Endpoints, endpoint)
	}
	sort.Strings(table.Endpoints)

	return table, nil
}

// FormatPercent renders a reliability score the way the report displays
// it, two decimals of percentage.
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}
