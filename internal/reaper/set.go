package reaper

import "slices"

// Set is an unordered collection of string-typed identities. Difference and
// intersection walk the receiver once, so both are O(n) in its size.
type Set[T ~string] map[T]struct{}

// NewSet builds a Set from the given items, deduplicating them.
func NewSet[T ~string](items ...T) Set[T] {
	s := make(Set[T], len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}

// Contains reports whether item is in the set.
func (s Set[T]) Contains(item T) bool {
	_, ok := s[item]
	return ok
}

// Add inserts item into the set.
func (s Set[T]) Add(item T) {
	s[item] = struct{}{}
}

// Diff returns the elements of s not present in other.
func (s Set[T]) Diff(other Set[T]) Set[T] {
	out := make(Set[T])
	for item := range s {
		if !other.Contains(item) {
			out[item] = struct{}{}
		}
	}
	return out
}

// Intersect returns the elements present in both s and other.
func (s Set[T]) Intersect(other Set[T]) Set[T] {
	out := make(Set[T])
	for item := range s {
		if other.Contains(item) {
			out[item] = struct{}{}
		}
	}
	return out
}

// Items returns the elements in sorted order, for deterministic persistence
// and output.
func (s Set[T]) Items() []T {
	items := make([]T, 0, len(s))
	for item := range s {
		items = append(items, item)
	}
	slices.Sort(items)
	return items
}

// Strings returns the sorted elements as plain strings.
func (s Set[T]) Strings() []string {
	items := s.Items()
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = string(item)
	}
	return out
}

// setFromStrings rebuilds a typed set from persisted identities.
func setFromStrings[T ~string](ids []string) Set[T] {
	s := make(Set[T], len(ids))
	for _, id := range ids {
		s[T(id)] = struct{}{}
	}
	return s
}
