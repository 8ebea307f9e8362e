package graph

// Entrypoint pairs an endpoint name with the ordered, deduplicated list
// of services it depends on.
type Entrypoint struct {
	Name     string
	Services []string
}

// ResolveEntrypoints produces the endpoint -> service-list mapping for a
// graph. Explicit entrypoints from the document are used verbatim. When
// the document carries none, every distinct parent becomes a
// pseudo-endpoint keyed "/<parent>" whose service list collects parent
// then child per edge, first-seen order, independently per endpoint.
//
// A graph with no edges and no explicit entrypoints resolves to zero
// endpoints; downstream stages treat that as "nothing to simulate".
func ResolveEntrypoints(g *Graph) map[string][]string {
	if len(g.Entrypoints) > 0 {
		out := make(map[string][]string, len(g.Entrypoints))
		for name, services := range g.Entrypoints {
			out[name] = services
		}
		return out
	}
	return deriveEntrypoints(g.Dependencies)
}

func deriveEntrypoints(deps []Edge) map[string][]string {
	sets := make(map[string]*OrderedSet)
	for _, dep := range deps {
		if dep.Parent == "" || dep.Child == "" {
			continue
		}
		key := "/" + dep.Parent
		set, ok := sets[key]
		if !ok {
			set = NewOrderedSet()
			sets[key] = set
		}
		set.Add(dep.Parent)
		set.Add(dep.Child)
	}

	out := make(map[string][]string, len(sets))
	for key, set := range sets {
		out[key] = set.Values()
	}
	return out
}
