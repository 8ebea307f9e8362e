// Package gate turns a directory of simulation result artifacts into a
// release pass/fail verdict. It is a read-only aggregation pass: the
// sweep artifacts are never touched, and an empty or fully filtered
// selection passes by default so that missing data never blocks a
// release on its own.
package gate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rmax-ai/resilord/pkg/blob"
)

// resultDoc is the lenient view of a simulation result used during
// loading. Fields beyond these do not matter to the gate.
type resultDoc struct {
	Summary   map[string]interface{} `json:"summary"`
	Endpoints map[string]struct {
		Reliability *float64 `json:"reliability"`
	} `json:"endpoints"`
}

type keyedDoc struct {
	pfail  float64
	mode   string
	source string
	doc    resultDoc
}

// EvaluateDir evaluates the gate over every *.json artifact in dir.
func EvaluateDir(ctx context.Context, dir string, opts Options) (*Result, error) {
	return Evaluate(ctx, blob.NewLocalStore(dir), opts)
}

// Evaluate scans the store in deterministic lexicographic order, groups
// artifacts by (pfail, mode), applies the mode and endpoint filters,
// aggregates each endpoint's worst-case reliability across the sweep and
// renders the verdict.
func Evaluate(ctx context.Context, store blob.Store, opts Options) (*Result, error) {
	if opts.Mode == "" {
		opts.Mode = ModeAny
	}

	docs, err := loadResults(ctx, store)
	if err != nil {
		return nil, err
	}

	scores := selectEndpoints(docs, opts)
	if len(scores) == 0 {
		reason := "No endpoints matched the filters; gate skipped"
		if opts.ResultsMode != "" {
			reason = fmt.Sprintf("No endpoints matched the filters for mode %q; gate skipped", opts.ResultsMode)
		}
		return &Result{Passed: true, Reason: reason, Scores: scores}, nil
	}

	type violation struct {
		endpoint string
		point    ScorePoint
	}
	var violations []violation
	var aggregates []float64

	endpoints := make([]string, 0, len(scores))
	for endpoint := range scores {
		endpoints = append(endpoints, endpoint)
	}
	sort.Strings(endpoints)

	for _, endpoint := range endpoints {
		series := scores[endpoint]
		sort.SliceStable(series, func(i, j int) bool {
			return series[i].Pfail < series[j].Pfail
		})
		scores[endpoint] = series

		// Worst case over the sweep; ties keep the earliest entry in
		// sorted order as the representative point.
		worst := series[0]
		for _, point := range series[1:] {
			if point.Reliability < worst.Reliability {
				worst = point
			}
		}
		aggregates = append(aggregates, worst.Reliability)
		if worst.Reliability < opts.Threshold {
			violations = append(violations, violation{endpoint: endpoint, point: worst})
		}
	}

	var passed bool
	var reason string
	switch opts.Mode {
	case ModeMean:
		var sum float64
		for _, v := range aggregates {
			sum += v
		}
		mean := sum / float64(len(aggregates))
		passed = mean >= opts.Threshold
		reason = fmt.Sprintf("mean reliability=%.4f (threshold=%g)", mean, opts.Threshold)
	default:
		min := aggregates[0]
		for _, v := range aggregates[1:] {
			if v < min {
				min = v
			}
		}
		passed = len(violations) == 0
		reason = fmt.Sprintf("min reliability=%.4f (threshold=%g)", min, opts.Threshold)
	}

	if len(violations) > 0 {
		parts := make([]string, 0, len(violations))
		for _, v := range violations {
			parts = append(parts, fmt.Sprintf("%s @ pfail=%g -> %.4f", v.endpoint, v.point.Pfail, v.point.Reliability))
		}
		reason = fmt.Sprintf("Violations: %s; %s", strings.Join(parts, ", "), reason)
	}

	return &Result{Passed: passed, Reason: reason, Scores: scores}, nil
}

// loadResults reads every JSON artifact, keyed by (pfail, mode). A later
// artifact mapping to an occupied key overwrites the earlier one; the
// collision is logged because it usually means a stale artifact is being
// silently shadowed.
func loadResults(ctx context.Context, store blob.Store) ([]keyedDoc, error) {
	keys, err := store.List(ctx, ".json")
	if err != nil {
		return nil, fmt.Errorf("failed to scan results: %w", err)
	}

	type slot struct {
		index  int
		source string
	}
	occupied := make(map[[2]string]slot)
	var docs []keyedDoc

	for _, key := range keys {
		doc, err := readDoc(ctx, store, key)
		if err != nil {
			log.Printf("[gate] Warning: skipping unreadable artifact %s: %v", key, err)
			continue
		}

		pfail, ok := numericPfail(doc.Summary)
		if !ok {
			continue
		}
		mode := deriveMode(doc.Summary, key)

		entry := keyedDoc{pfail: pfail, mode: mode, source: key, doc: doc}
		groupKey := [2]string{fmt.Sprintf("%g", pfail), mode}
		if prev, exists := occupied[groupKey]; exists {
			log.Printf("[gate] Warning: %s overwrites %s for (pfail=%g, mode=%s)", key, prev.source, pfail, mode)
			docs[prev.index] = entry
			occupied[groupKey] = slot{index: prev.index, source: key}
			continue
		}
		occupied[groupKey] = slot{index: len(docs), source: key}
		docs = append(docs, entry)
	}
	return docs, nil
}

func readDoc(ctx context.Context, store blob.Store, key string) (resultDoc, error) {
	var doc resultDoc
	rc, err := store.Get(ctx, key)
	if err != nil {
		return doc, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return doc, err
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, err
	}
	return doc, nil
}

func numericPfail(summary map[string]interface{}) (float64, bool) {
	if summary == nil {
		return 0, false
	}
	pfail, ok := summary["pfail"].(float64)
	return pfail, ok
}

// deriveMode resolves the grouping mode: summary.mode when present,
// otherwise the replicas-file stem, otherwise the artifact's own
// filename stem, lower-cased.
func deriveMode(summary map[string]interface{}, key string) string {
	if mode, ok := summary["mode"].(string); ok && mode != "" {
		return strings.ToLower(mode)
	}
	if file, ok := summary["replicas_file"].(string); ok && file != "" {
		stem := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		if stem != "" {
			return strings.ToLower(stem)
		}
	}
	stem := strings.TrimSuffix(filepath.Base(key), filepath.Ext(key))
	return strings.ToLower(stem)
}

func selectEndpoints(docs []keyedDoc, opts Options) map[string][]ScorePoint {
	filters := make(map[string]struct{})
	for _, f := range opts.Filters {
		f = strings.TrimSpace(f)
		if f != "" {
			filters[f] = struct{}{}
		}
	}
	wantMode := strings.ToLower(opts.ResultsMode)

	selected := make(map[string][]ScorePoint)
	for _, entry := range docs {
		if wantMode != "" && entry.mode != wantMode {
			continue
		}
		for endpoint, details := range entry.doc.Endpoints {
			if len(filters) > 0 {
				if _, ok := filters[endpoint]; !ok {
					continue
				}
			}
			reliability := 1.0
			if details.Reliability != nil {
				reliability = *details.Reliability
			}
			selected[endpoint] = append(selected[endpoint], ScorePoint{
				Pfail:       entry.pfail,
				Reliability: reliability,
				Mode:        entry.mode,
			})
		}
	}
	return selected
}

// WriteSummary persists the machine-readable evaluation summary.
func WriteSummary(path string, summary Summary) error {
	if summary.Filters == nil {
		summary.Filters = []string{}
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal gate summary: %w", err)
	}
	data = append(data, '\n')
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create summary directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write gate summary %s: %w", path, err)
	}
	return nil
}
