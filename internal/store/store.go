// Package store implements the machine's persistent store: the mapping
// from addresses (frame registers and object fields) to values.
package store

import (
	"sort"

	"avenir/internal/addr"
	"avenir/internal/value"
)

// Store is an immutable binding from addresses to values. Extending a
// Store never mutates it; the prior Store remains valid and can still be
// read from.
//
// The pack carries no persistent/immutable ordered-map library (checked
// across every example repo and the wider Go ecosystem the pack draws
// from), so Extend is implemented as a copy-on-write layer over a
// plain map: each Extend allocates one new map, copies the prior
// bindings, and adds the one new entry. This is O(n) per extend rather
// than the O(log n) a real persistent map would give, which is the
// documented cost of not having one in the dependency surface.
type Store struct {
	bindings map[addr.Addr]value.Value
}

// Empty returns a Store with no bindings.
func Empty() *Store {
	return &Store{bindings: map[addr.Addr]value.Value{}}
}

// Lookup returns the value bound to a, or ok=false if a is unbound.
func (s *Store) Lookup(a addr.Addr) (value.Value, bool) {
	v, ok := s.bindings[a]
	return v, ok
}

// Extend returns a new Store identical to s except that a is now bound
// to v, shadowing any prior binding. s itself is untouched.
func (s *Store) Extend(a addr.Addr, v value.Value) *Store {
	next := make(map[addr.Addr]value.Value, len(s.bindings)+1)
	for k, val := range s.bindings {
		next[k] = val
	}
	next[a] = v
	return &Store{bindings: next}
}

// Addrs returns every bound address in the store's deterministic total
// order (addr.Addr.Less), for -verbose dumps and journal snapshots.
func (s *Store) Addrs() []addr.Addr {
	addrs := make([]addr.Addr, 0, len(s.bindings))
	for a := range s.bindings {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool {
		return addrs[i].Less(addrs[j])
	})
	return addrs
}

// Len reports the number of bindings, mainly for test assertions and
// -verbose summaries.
func (s *Store) Len() int {
	return len(s.bindings)
}
