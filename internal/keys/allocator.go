// Package keys provides surrogate key allocation for normalized and dimensional rows.
package keys

// Allocator hands out integer surrogate keys per entity type and remembers which
// natural key each one was issued for.
//
// An Allocator belongs to a single run. It is not safe for concurrent use; passes that
// run in parallel each own their own Allocator.
type Allocator struct {
	counters map[string]int
	caches   map[string]map[any]int
}

// New creates an empty allocator.
func New() *Allocator {
	return &Allocator{
		counters: make(map[string]int),
		caches:   make(map[string]map[any]int),
	}
}

// Allocate returns the next key for the entity type. Keys start at 1.
func (a *Allocator) Allocate(entity string) int {
	a.counters[entity]++

	return a.counters[entity]
}

// GetOrCreate returns the key already issued for naturalKey, or allocates a new one and
// calls factory with it. factory is not called on a cache hit, so the first-seen
// version of an entity is the one that is kept. naturalKey must be comparable.
func (a *Allocator) GetOrCreate(entity string, naturalKey any, factory func(key int)) int {
	cache := a.cache(entity)
	if key, ok := cache[naturalKey]; ok {
		return key
	}

	key := a.Allocate(entity)
	cache[naturalKey] = key

	if factory != nil {
		factory(key)
	}

	return key
}

// Lookup returns the key issued for naturalKey, if any.
func (a *Allocator) Lookup(entity string, naturalKey any) (int, bool) {
	key, ok := a.caches[entity][naturalKey]

	return key, ok
}

// Len returns the number of distinct natural keys registered for the entity type.
func (a *Allocator) Len(entity string) int {
	return len(a.caches[entity])
}

func (a *Allocator) cache(entity string) map[any]int {
	cache, ok := a.caches[entity]
	if !ok {
		cache = make(map[any]int)
		a.caches[entity] = cache
	}

	return cache
}
