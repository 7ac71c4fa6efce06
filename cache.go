package poly

import (
	"fmt"
	"reflect"
)

// Erasure-site caching.
//
// Erasing an any into a Ref costs a registry lookup keyed by the
// value's dynamic type. Most erasure sites are monomorphic (single
// concrete type), a few are polymorphic (2-6 types), and the rest are
// megamorphic. An EraseCache remembers the tables seen at one site so
// the registry is only consulted on a miss.

// cacheState represents the current state of an erase cache.
type cacheState uint8

const (
	cacheEmpty       cacheState = iota // No cached table yet
	cacheMonomorphic                   // Single type cached
	cachePolymorphic                   // 2-6 entries
	cacheMegamorphic                   // Too many types, always consult the registry
)

// maxCacheEntries is the entry limit in the polymorphic state.
const maxCacheEntries = 6

// cacheEntry holds one cached (type, table) pair.
type cacheEntry struct {
	rt reflect.Type
	tt *typeTable
}

// EraseCache caches built tables for one erasure site over one
// interface. It progresses Empty -> Monomorphic -> Polymorphic ->
// Megamorphic and is not safe for concurrent use; give each goroutine
// or call site its own.
type EraseCache struct {
	x     *Extensions
	in    *Interface
	state cacheState
	ents  [maxCacheEntries]cacheEntry
	count int

	// Statistics for profiling
	hits   uint64
	misses uint64
}

// NewEraseCache creates an empty cache for erasing values into in
// against the given registry.
func NewEraseCache(x *Extensions, in *Interface) *EraseCache {
	return &EraseCache{x: x, in: in}
}

// Ref borrows a value held in an any, like Extensions.RefAny, but
// serves repeated erasures of the same few types from the cache.
func (c *EraseCache) Ref(v any) (Ref, error) {
	rt := reflect.TypeOf(v)
	if rt == nil || rt.Kind() != reflect.Pointer {
		return Ref{}, fmt.Errorf("poly: erase cache needs a pointer to a concrete value, got %v", rt)
	}
	elem := rt.Elem()

	if tt := c.lookup(elem); tt != nil {
		return Ref{vt: identityView(tt, c.in), p: v}, nil
	}

	tt, err := c.x.tableFor(elem, c.in)
	if err != nil {
		return Ref{}, err
	}
	c.update(elem, tt)
	return Ref{vt: identityView(tt, c.in), p: v}, nil
}

// lookup checks the cache for a table matching the concrete type.
func (c *EraseCache) lookup(rt reflect.Type) *typeTable {
	switch c.state {
	case cacheMonomorphic:
		if c.ents[0].rt == rt {
			c.hits++
			return c.ents[0].tt
		}

	case cachePolymorphic:
		for i := 0; i < c.count; i++ {
			if c.ents[i].rt == rt {
				c.hits++
				return c.ents[i].tt
			}
		}

	case cacheMegamorphic, cacheEmpty:
		// Always miss
	}

	c.misses++
	return nil
}

// update records a new (type, table) pair, potentially upgrading the
// cache state.
func (c *EraseCache) update(rt reflect.Type, tt *typeTable) {
	switch c.state {
	case cacheEmpty:
		c.state = cacheMonomorphic
		c.ents[0] = cacheEntry{rt, tt}
		c.count = 1

	case cacheMonomorphic:
		if c.ents[0].rt == rt {
			return
		}
		c.state = cachePolymorphic
		c.ents[1] = cacheEntry{rt, tt}
		c.count = 2

	case cachePolymorphic:
		for i := 0; i < c.count; i++ {
			if c.ents[i].rt == rt {
				return
			}
		}
		if c.count < maxCacheEntries {
			c.ents[c.count] = cacheEntry{rt, tt}
			c.count++
			return
		}
		// Too many types for this site
		c.state = cacheMegamorphic
		c.count = 0

	case cacheMegamorphic:
		// Stay megamorphic
	}
}

// Stats returns the hit and miss counts accumulated so far.
func (c *EraseCache) Stats() (hits, misses uint64) {
	return c.hits, c.misses
}

// Megamorphic reports whether the site outgrew the cache.
func (c *EraseCache) Megamorphic() bool {
	return c.state == cacheMegamorphic
}
