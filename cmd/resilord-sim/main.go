package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/rmax-ai/resilord/pkg/blob"
	"github.com/rmax-ai/resilord/pkg/collector"
	"github.com/rmax-ai/resilord/pkg/graph"
	"github.com/rmax-ai/resilord/pkg/replicas"
	"github.com/rmax-ai/resilord/pkg/simulation"
	"github.com/rmax-ai/resilord/pkg/store"
	"github.com/rmax-ai/resilord/pkg/sweep"
)

func main() {
	var (
		graphFile    string
		replicasFile string
		pfail        float64
		outFile      string
		sweepFile    string
		historyDB    string
	)

	flag.StringVar(&graphFile, "graph", "dependency_graph.json", "Path to dependency graph JSON file")
	flag.StringVar(&replicasFile, "replicas", "", "Path to replica overlay file")
	flag.Float64Var(&pfail, "pfail", 0.1, "Assumed per-instance failure probability")
	flag.StringVar(&outFile, "out", "", "Output path for the result JSON")
	flag.StringVar(&sweepFile, "sweep", "", "Path to sweep configuration JSON (overrides single-run flags)")
	flag.StringVar(&historyDB, "history", "", "Optional SQLite database to archive runs into")
	flag.Parse()

	ctx := context.Background()

	if sweepFile != "" {
		runSweep(ctx, sweepFile, historyDB)
		return
	}

	if replicasFile == "" || outFile == "" {
		log.Fatal("Both -replicas and -out are required for a single run (or use -sweep)")
	}

	// A reachable Jaeger refreshes the graph snapshot first; an
	// unreachable one only warns, the existing file still serves.
	if jaegerURL := os.Getenv("JAEGER_URL"); jaegerURL != "" {
		if err := collector.RefreshGraph(ctx, graphFile, jaegerURL); err != nil {
			log.Printf("[simulate] Warning: graph refresh failed, using existing snapshot: %v", err)
		}
	}

	g, err := graph.Load(graphFile)
	if err != nil {
		log.Fatalf("Failed to load dependency graph: %v", err)
	}
	overlay, err := replicas.Load(replicasFile)
	if err != nil {
		log.Fatalf("Failed to load replica overlay: %v", err)
	}

	result, err := simulation.Run(g, overlay, pfail, simulation.Options{ReplicasFile: replicasFile})
	if err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}

	resultStore := blob.NewLocalStore(filepath.Dir(outFile))
	if err := simulation.WriteResult(ctx, resultStore, filepath.Base(outFile), result); err != nil {
		log.Fatalf("Failed to write result: %v", err)
	}

	archiveRun(historyDB, result)

	fmt.Printf("[simulate] Results written to %s\n", outFile)
	fmt.Printf("[simulate] Endpoints: %d, reliability range [%.4f, %.4f], mode %s\n",
		result.Summary.EntrypointCount, result.Summary.MinReliability,
		result.Summary.MaxReliability, result.Summary.Mode)
}

func runSweep(ctx context.Context, sweepFile, historyDB string) {
	cfg, err := sweep.LoadConfig(sweepFile)
	if err != nil {
		log.Fatalf("Invalid sweep configuration: %v", err)
	}
	keys, err := sweep.Run(ctx, cfg)
	if err != nil {
		log.Fatalf("Sweep failed: %v", err)
	}
	if historyDB != "" {
		resultStore := blob.NewLocalStore(cfg.OutDir)
		db := openHistory(historyDB)
		defer db.Close()
		for _, key := range keys {
			res, err := simulation.ReadResult(ctx, resultStore, key)
			if err != nil {
				log.Printf("[simulate] Warning: could not archive %s: %v", key, err)
				continue
			}
			recordRun(db, res)
		}
	}
	fmt.Printf("[simulate] Sweep complete, %d artifacts in %s\n", len(keys), cfg.OutDir)
}

func archiveRun(historyDB string, result *simulation.Result) {
	if historyDB == "" {
		return
	}
	db := openHistory(historyDB)
	defer db.Close()
	recordRun(db, result)
}

func openHistory(path string) *store.Store {
	db, err := store.NewStore(path)
	if err != nil {
		log.Fatalf("Failed to open history database: %v", err)
	}
	return db
}

func recordRun(db *store.Store, result *simulation.Result) {
	summary, err := json.Marshal(result.Summary)
	if err != nil {
		log.Printf("[simulate] Warning: could not encode summary for archive: %v", err)
		return
	}
	if _, err := db.RecordRun(store.RunRecord{
		Kind:    store.RunKindSimulate,
		Pfail:   result.Summary.Pfail,
		Mode:    result.Summary.Mode,
		Summary: summary,
	}); err != nil {
		log.Printf("[simulate] Warning: could not archive run: %v", err)
	}
}
