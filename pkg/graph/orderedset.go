package graph

// OrderedSet keeps first-seen insertion order alongside O(1) membership.
// The entrypoint resolver and the simulation runner both depend on
// "first occurrence wins" semantics, so the ordering is guaranteed
// structurally here instead of leaning on map iteration behavior.
type OrderedSet struct {
	values []string
	index  map[string]struct{}
}

// NewOrderedSet creates an empty ordered set.
func NewOrderedSet() *OrderedSet {
	return &OrderedSet{index: make(map[string]struct{})}
}

// Add inserts v unless it is already present. Returns true if inserted.
func (s *OrderedSet) Add(v string) bool {
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = struct{}{}
	s.values = append(s.values, v)
	return true
}

// Contains reports whether v has been added.
func (s *OrderedSet) Contains(v string) bool {
	_, ok := s.index[v]
	return ok
}

// Values returns the members in insertion order. The returned slice is
// the set's backing store; callers must not mutate it.
func (s *OrderedSet) Values() []string {
	return s.values
}

// Len returns the number of members.
func (s *OrderedSet) Len() int {
	return len(s.values)
}
