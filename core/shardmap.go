package core

import (
	"sync"

	"github.com/OneOfOne/xxhash"
)

// mapShardCount fixes how many independent buckets a shardedMap keeps.
// The per-bucket mutexes keep the map safe in its own right, independent
// of the actor-level serialization Run's mutex provides, so the
// idle-access map and the waiter table never depend on who is holding
// which outer lock.
const mapShardCount = 16

type mapShard[V any] struct {
	mu sync.Mutex
	m  map[string]V
}

// shardedMap is a fixed-bucket string-keyed map, bucketed by xxhash. The
// actor's idle-access map (touch/idleSeconds) and the blocking registry's
// per-key waiter table both use one of these instead of a single
// map-plus-mutex pair.
type shardedMap[V any] struct {
	shards [mapShardCount]*mapShard[V]
}

func newShardedMap[V any]() *shardedMap[V] {
	sm := &shardedMap[V]{}
	for i := range sm.shards {
		sm.shards[i] = &mapShard[V]{m: map[string]V{}}
	}
	return sm
}

func (sm *shardedMap[V]) shard(key string) *mapShard[V] {
	h := xxhash.ChecksumString64(key)
	return sm.shards[h%mapShardCount]
}

// Get returns the value stored for key, if any.
func (sm *shardedMap[V]) Get(key string) (V, bool) {
	s := sm.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok
}

// Set stores v under key.
func (sm *shardedMap[V]) Set(key string, v V) {
	s := sm.shard(key)
	s.mu.Lock()
	s.m[key] = v
	s.mu.Unlock()
}

// Mutate applies f to the current value (zero value if absent) under key's
// shard lock and stores the result back, or removes the entry if f returns
// keep == false.
func (sm *shardedMap[V]) Mutate(key string, f func(v V, ok bool) (newV V, keep bool)) {
	s := sm.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	newV, keep := f(v, ok)
	if keep {
		s.m[key] = newV
	} else {
		delete(s.m, key)
	}
}

// Delete removes key.
func (sm *shardedMap[V]) Delete(key string) {
	s := sm.shard(key)
	s.mu.Lock()
	delete(s.m, key)
	s.mu.Unlock()
}

// RangeMutate visits every entry across every shard, holding only that
// shard's lock for the duration of f. f returns the value to keep (or
// whatever, if keep is false) and whether the entry survives.
func (sm *shardedMap[V]) RangeMutate(f func(key string, v V) (newV V, keep bool)) {
	for _, s := range sm.shards {
		s.mu.Lock()
		for k, v := range s.m {
			newV, keep := f(k, v)
			if keep {
				s.m[k] = newV
			} else {
				delete(s.m, k)
			}
		}
		s.mu.Unlock()
	}
}

// Reset empties every shard, used by FLUSHDB to clear the idle-access map
// (FLUSHDB drops parked waiters by building a fresh blocking registry).
func (sm *shardedMap[V]) Reset() {
	for _, s := range sm.shards {
		s.mu.Lock()
		s.m = map[string]V{}
		s.mu.Unlock()
	}
}
