// Package collector automates the steady-state data collection phase: it
// primes the target application with a wrk2 workload, waits out a
// cooldown so traces land in the collector, then pulls the dependency
// graph from a Jaeger-style /api/dependencies endpoint.
package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// CollectionError wraps failures of the mandatory collection path so the
// CLI can distinguish them from plain I/O errors.
type CollectionError struct {
	Op  string
	Err error
}

func (e *CollectionError) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CollectionError) Unwrap() error { return e.Err }

// WorkloadConfig describes one wrk2 invocation.
type WorkloadConfig struct {
	WrkBin      string
	LuaScript   string
	TargetURL   string
	Threads     int
	Connections int
	Rate        int
	Duration    time.Duration
}

// RunWorkload executes wrk2 against the target. A missing binary or a
// non-zero exit is fatal: without steady-state traffic the dependency
// snapshot would be empty or stale.
func RunWorkload(ctx context.Context, cfg WorkloadConfig) error {
	args := []string{
		fmt.Sprintf("-t%d", cfg.Threads),
		fmt.Sprintf("-c%d", cfg.Connections),
		fmt.Sprintf("-d%ds", int(cfg.Duration.Seconds())),
		fmt.Sprintf("-R%d", cfg.Rate),
		"-s", cfg.LuaScript,
		cfg.TargetURL,
	}
	cmd := exec.CommandContext(ctx, cfg.WrkBin, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	WorkloadRunsTotal.Inc()
	if err := cmd.Run(); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) || errors.Is(err, os.ErrNotExist) {
			return &CollectionError{
				Op:  fmt.Sprintf("wrk binary not found at %q; build wrk2 or set -wrk-bin", cfg.WrkBin),
				Err: err,
			}
		}
		return &CollectionError{Op: "wrk execution failed", Err: err}
	}
	return nil
}

// FetchDependencies retrieves the dependency graph from the trace
// collector. Transport failures, non-200 responses and non-JSON payloads
// are all CollectionErrors on this mandatory path.
func FetchDependencies(ctx context.Context, jaegerBase string, lookback, timeout time.Duration) ([]byte, error) {
	endTs := time.Now().UnixMilli()
	query := url.Values{}
	query.Set("endTs", fmt.Sprintf("%d", endTs))
	query.Set("lookback", fmt.Sprintf("%d", lookback.Milliseconds()))
	endpoint := fmt.Sprintf("%s/api/dependencies?%s", trimSlash(jaegerBase), query.Encode())

	payload, err := fetchJSON(ctx, endpoint, timeout)
	if err != nil {
		FetchErrorsTotal.Inc()
		return nil, &CollectionError{Op: fmt.Sprintf("failed to fetch dependencies from %s", endpoint), Err: err}
	}
	FetchesTotal.Inc()
	LastEdgeCount.Set(float64(countEdges(payload)))
	return payload, nil
}

// RefreshGraph is the best-effort variant used by the simulation stage:
// it overwrites target only when the collector answers with valid JSON.
// The caller treats any returned error as a warning and keeps the graph
// already on disk.
func RefreshGraph(ctx context.Context, target, jaegerBase string) error {
	query := url.Values{}
	query.Set("lookback", fmt.Sprintf("%d", int((6*time.Hour).Seconds())))
	endpoint := fmt.Sprintf("%s/api/dependencies?%s", trimSlash(jaegerBase), query.Encode())

	payload, err := fetchJSON(ctx, endpoint, 10*time.Second)
	if err != nil {
		FetchErrorsTotal.Inc()
		return fmt.Errorf("failed to refresh dependencies from %s: %w", endpoint, err)
	}
	FetchesTotal.Inc()
	LastEdgeCount.Set(float64(countEdges(payload)))
	return SaveDependencies(payload, target)
}

// SaveDependencies writes a fetched graph payload to disk, normalized to
// indented JSON with a trailing newline.
func SaveDependencies(payload []byte, path string) error {
	var doc interface{}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return fmt.Errorf("refusing to save non-JSON dependencies: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode dependencies: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write dependencies to %s: %w", path, err)
	}
	return nil
}

func fetchJSON(ctx context.Context, endpoint string, timeout time.Duration) ([]byte, error) {
	client := &http.Client{Timeout: timeout}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if !json.Valid(payload) {
		return nil, fmt.Errorf("response was not valid JSON")
	}
	return payload, nil
}

// countEdges extracts the edge count from either accepted graph shape
// for the metrics gauge. Unknown shapes count as zero.
func countEdges(payload []byte) int {
	var arr []interface{}
	if err := json.Unmarshal(payload, &arr); err == nil {
		return len(arr)
	}
	var obj struct {
		Dependencies []interface{} `json:"dependencies"`
	}
	if err := json.Unmarshal(payload, &obj); err == nil {
		return len(obj.Dependencies)
	}
	return 0
}

func trimSlash(base string) string {
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return base
}
