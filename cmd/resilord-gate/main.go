package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/rmax-ai/resilord/pkg/gate"
	"github.com/rmax-ai/resilord/pkg/store"
)

func main() {
	var (
		resultsDir  string
		threshold   float64
		mode        string
		resultsMode string
		filtersArg  string
		summaryFile string
		historyDB   string
	)

	flag.StringVar(&resultsDir, "results", "results", "Directory containing simulation result artifacts")
	flag.Float64Var(&threshold, "threshold", 0.999, "Minimum acceptable endpoint reliability")
	flag.StringVar(&mode, "mode", string(gate.ModeAny), "Aggregation mode: any or mean")
	flag.StringVar(&resultsMode, "results-mode", "norepl", "Replication mode filter (empty evaluates all artifacts)")
	flag.StringVar(&filtersArg, "filters", "", "Comma separated endpoint whitelist (empty means all)")
	flag.StringVar(&summaryFile, "summary", "", "Optional path for the machine-readable evaluation summary")
	flag.StringVar(&historyDB, "history", "", "Optional SQLite database to archive the verdict into")
	flag.Parse()

	var filters []string
	for _, f := range strings.Split(filtersArg, ",") {
		if f = strings.TrimSpace(f); f != "" {
			filters = append(filters, f)
		}
	}

	opts := gate.Options{
		Threshold:   threshold,
		Mode:        gate.AggregationMode(mode),
		ResultsMode: resultsMode,
		Filters:     filters,
	}

	result, err := gate.EvaluateDir(context.Background(), resultsDir, opts)
	if err != nil {
		log.Fatalf("Gate evaluation failed: %v", err)
	}

	if summaryFile != "" {
		summary := gate.Summary{
			Threshold:   opts.Threshold,
			Mode:        opts.Mode,
			ResultsMode: opts.ResultsMode,
			Filters:     filters,
			Passed:      result.Passed,
			Reason:      result.Reason,
			Endpoints:   result.Scores,
		}
		if err := gate.WriteSummary(summaryFile, summary); err != nil {
			log.Fatalf("Failed to write evaluation summary: %v", err)
		}
	}

	archiveVerdict(historyDB, opts, result)

	if result.Passed {
		fmt.Printf("[gate] PASSED: %s\n", result.Reason)
		return
	}
	fmt.Printf("[gate] FAILED: %s\n", result.Reason)
	os.Exit(1)
}

func archiveVerdict(historyDB string, opts gate.Options, result *gate.Result) {
	if historyDB == "" {
		return
	}
	db, err := store.NewStore(historyDB)
	if err != nil {
		log.Fatalf("Failed to open history database: %v", err)
	}
	defer db.Close()

	summary, err := json.Marshal(map[string]interface{}{
		"threshold":    opts.Threshold,
		"mode":         opts.Mode,
		"results_mode": opts.ResultsMode,
	})
	if err != nil {
		log.Printf("[gate] Warning: could not encode verdict for archive: %v", err)
		return
	}
	passed := result.Passed
	if _, err := db.RecordRun(store.RunRecord{
		Kind:    store.RunKindGate,
		Mode:    opts.ResultsMode,
		Passed:  &passed,
		Reason:  result.Reason,
		Summary: summary,
	}); err != nil {
		log.Printf("[gate] Warning: could not archive verdict: %v", err)
	}
}
