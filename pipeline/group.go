package pipeline

// Grouping partitions items under string keys while remembering the
// order in which keys first appeared, so enumeration is deterministic
// for a given input order.
type Grouping[T any] struct {
	keys   []string
	groups map[string][]T
}

// GroupBy partitions items by the key function, preserving first-seen
// key order and within-group input order.
func GroupBy[T any](items []T, key func(T) string) *Grouping[T] {
	g := &Grouping[T]{groups: map[string][]T{}}

	for _, item := range items {
		k := key(item)
		if _, ok := g.groups[k]; !ok {
			g.keys = append(g.keys, k)
		}
		g.groups[k] = append(g.groups[k], item)
	}

	return g
}

// Keys returns the group keys in first-seen order.
func (g *Grouping[T]) Keys() []string { return g.keys }

// Group returns the items under a key, nil for an unknown key.
func (g *Grouping[T]) Group(key string) []T { return g.groups[key] }

// Len returns the number of groups.
func (g *Grouping[T]) Len() int { return len(g.keys) }

// CountBy tallies items by the key function.
func CountBy[T any](items []T, key func(T) string) map[string]int {
	counts := map[string]int{}
	for _, item := range items {
		counts[key(item)]++
	}
	return counts
}
