// Package simulation orchestrates one reliability estimation run: graph
// plus replica overlay plus an assumed failure probability in, a single
// immutable result document out. The run is a pure synchronous function
// of its inputs; any graph refreshing happens in the caller before the
// graph is loaded.
package simulation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/rmax-ai/resilord/pkg/blob"
	"github.com/rmax-ai/resilord/pkg/graph"
	"github.com/rmax-ai/resilord/pkg/reliability"
	"github.com/rmax-ai/resilord/pkg/replicas"
)

// Run estimates per-service and per-endpoint reliability for one
// (graph, overlay, pfail) triple. A negative pfail is rejected before
// any computation.
func Run(g *graph.Graph, overlay replicas.Overlay, pfail float64, opts Options) (*Result, error) {
	if pfail < 0 {
		return nil, fmt.Errorf("pfail must be >= 0, got %v", pfail)
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	entrypoints := graph.ResolveEntrypoints(g)

	// Every service seen as a parent or child gets its reliability
	// computed exactly once, in edge-list insertion order.
	serviceReliability := make(map[string]float64)
	computed := graph.NewOrderedSet()
	compute := func(service string) {
		if service == "" || !computed.Add(service) {
			return
		}
		serviceReliability[service] = reliability.ForService(pfail, overlay.Get(service))
	}
	for _, dep := range g.Dependencies {
		compute(dep.Parent)
		compute(dep.Child)
	}

	// Services configured in the overlay but absent from the edge list
	// still get a score; the overlay never silently drops a service.
	overlayOnly := make([]string, 0, len(overlay))
	for service := range overlay {
		overlayOnly = append(overlayOnly, service)
	}
	sort.Strings(overlayOnly)
	for _, service := range overlayOnly {
		compute(service)
	}

	endpoints := make(map[string]Endpoint, len(entrypoints))
	minRel, maxRel := 1.0, 1.0
	first := true
	for name, services := range entrypoints {
		score := reliability.ForPath(services, serviceReliability)
		snapshot := make(map[string]float64, len(services))
		for _, service := range services {
			r, ok := serviceReliability[service]
			if !ok {
				r = 1.0
			}
			snapshot[service] = r
		}
		endpoints[name] = Endpoint{
			Services:           services,
			Reliability:        score,
			ServiceReliability: snapshot,
		}
		if first {
			minRel, maxRel = score, score
			first = false
		} else {
			if score < minRel {
				minRel = score
			}
			if score > maxRel {
				maxRel = score
			}
		}
	}

	res := &Result{
		Metadata:           g.Metadata,
		ServiceReliability: serviceReliability,
		Endpoints:          endpoints,
		Summary: Summary{
			Pfail:           pfail,
			ReplicasFile:    opts.ReplicasFile,
			Timestamp:       now().UTC().Format("2006-01-02T15:04:05Z"),
			MinReliability:  minRel,
			MaxReliability:  maxRel,
			EntrypointCount: len(endpoints),
			Mode:            replicas.Mode(opts.ReplicasFile),
		},
	}
	if res.Metadata == nil {
		res.Metadata = make(map[string]json.RawMessage)
	}
	return res, nil
}

// WriteResult persists a result document through the artifact store.
func WriteResult(ctx context.Context, store blob.Store, key string, res *Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	data = append(data, '\n')
	if err := store.Put(ctx, key, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write result %s: %w", key, err)
	}
	return nil
}

// ReadResult loads a previously written result document.
func ReadResult(ctx context.Context, store blob.Store, key string) (*Result, error) {
	rc, err := store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read result %s: %w", key, err)
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("failed to decode result %s: %w", key, err)
	}
	return &res, nil
}
