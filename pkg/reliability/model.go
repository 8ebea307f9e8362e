// Package reliability implements the redundancy model behind every
// simulation run. Replicas are assumed to fail independently, so the
// joint failure probability of a service drops geometrically with its
// replica count.
package reliability

import "math"

// ForService estimates the reliability of a single service given the
// per-instance failure probability and its replica count. pfail is
// clamped to [0,1], replicas to >= 1.
func ForService(pfail float64, replicas int) float64 {
	if replicas < 1 {
		replicas = 1
	}
	pf := clamp01(pfail)
	jointFailure := math.Pow(pf, float64(replicas))
	return clamp01(1.0 - jointFailure)
}

// ForPath composes service reliabilities along an endpoint's dependency
// sequence. Each service contributes once no matter how often it appears
// in the sequence; a service missing from the map contributes 1.0.
func ForPath(services []string, byService map[string]float64) float64 {
	score := 1.0
	seen := make(map[string]struct{}, len(services))
	for _, service := range services {
		if _, ok := seen[service]; ok {
			continue
		}
		seen[service] = struct{}{}
		r, ok := byService[service]
		if !ok {
			r = 1.0
		}
		score *= r
	}
	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
