package memory

import (
	"hash/fnv"
	"sync"
)

// shardedMap spreads keys over independently locked shards so that work on
// one user never waits on another user's lock unless they share a shard.
type shardedMap[V any] struct {
	shards []*shard[V]
}

type shard[V any] struct {
	mu      sync.Mutex
	entries map[string]V
}

func newShardedMap[V any](n int) *shardedMap[V] {
	if n <= 0 {
		n = 1
	}
	s := &shardedMap[V]{shards: make([]*shard[V], n)}
	for i := range s.shards {
		s.shards[i] = &shard[V]{entries: make(map[string]V)}
	}
	return s
}

func (s *shardedMap[V]) shardFor(key string) *shard[V] {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return s.shards[h.Sum32()%uint32(len(s.shards))]
}

// with runs fn while holding the lock of key's shard.
func (s *shardedMap[V]) with(key string, fn func(entries map[string]V)) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	fn(sh.entries)
}

func (s *shardedMap[V]) len() int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		total += len(sh.entries)
		sh.mu.Unlock()
	}
	return total
}
