// Package sets provides the minimal string-ish set the ignore registry
// needs: construction, insertion with duplicate collapse, and direct
// range/len access through the underlying map.
package sets

// Set is a hash set over comparable keys.
type Set[T comparable] map[T]struct{}

// New creates a set holding vals.
func New[T comparable](vals ...T) Set[T] {
	s := make(Set[T], len(vals))
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}

// Add inserts v. Inserting a present value is a no-op.
func (s Set[T]) Add(v T) { s[v] = struct{}{} }
