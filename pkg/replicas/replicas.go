// Package replicas loads the replica-count overlay applied to a
// dependency graph. The on-disk format is deliberately tiny: one
// "service: count" pair per line, '#' starts a comment, blank lines are
// ignored. It is not a general YAML parser and must not grow into one;
// the artifact only ever holds a flat string -> integer mapping.
package replicas

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Overlay maps a service name to its configured replica count.
type Overlay map[string]int

// Get returns the replica count for service, clamped to >= 1.
// Services absent from the overlay run as a single instance.
func (o Overlay) Get(service string) int {
	count, ok := o[service]
	if !ok || count < 1 {
		return 1
	}
	return count
}

// Load parses an overlay file. Any malformed line (missing colon, empty
// or non-integer value) fails the load; partial overlays are worse than
// loud failures here because a silently dropped service would skew every
// downstream reliability number.
func Load(path string) (Overlay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open replicas file %s: %w", path, err)
	}
	defer f.Close()

	overlay := make(Overlay)
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		line := raw
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		key, value, found := strings.Cut(line, ":")
		if !found {
			return nil, fmt.Errorf("invalid line %d in %s: %q", lineNo, path, raw)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if value == "" {
			return nil, fmt.Errorf("missing value for %q in %s", key, path)
		}
		count, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("non-integer replica count for %q in %s: %q", key, path, value)
		}
		overlay[key] = count
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read replicas file %s: %w", path, err)
	}
	return overlay, nil
}

// Mode derives the replication-mode tag from the overlay source name:
// "norepl" when the file stem starts with that token (case-insensitive),
// "repl" otherwise. Result artifacts carry the tag so the gate can group
// sweeps by replication mode.
func Mode(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if strings.HasPrefix(strings.ToLower(stem), "norepl") {
		return "norepl"
	}
	return "repl"
}
