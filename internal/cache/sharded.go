package cache

import (
	"hash/maphash"

	"github.com/hupe1980/skycat/internal/resource"
)

const shardCount = 32

// Sharded spreads blocks over independent LRUs so that concurrent queries
// touching different zones rarely contend on one lock.
type Sharded struct {
	seed   maphash.Seed
	shards [shardCount]*LRU
}

var _ BlockCache = (*Sharded)(nil)

// NewSharded returns a cache of capacity bytes split evenly over its shards.
func NewSharded(capacity int64, rc *resource.Controller) *Sharded {
	s := &Sharded{seed: maphash.MakeSeed()}
	per := max(capacity/shardCount, 1)
	for i := range s.shards {
		s.shards[i] = NewLRU(per, rc)
	}
	return s
}

func (s *Sharded) shard(key Key) *LRU {
	var h maphash.Hash
	h.SetSeed(s.seed)
	_, _ = h.WriteString(key.Blob)
	// Neighboring blocks of one zone land on different shards.
	return s.shards[(h.Sum64()+uint64(key.Block))%shardCount]
}

// Get returns a cached block.
func (s *Sharded) Get(key Key) ([]byte, bool) {
	return s.shard(key).Get(key)
}

// Add caches a block.
func (s *Sharded) Add(key Key, b []byte) {
	s.shard(key).Add(key, b)
}

// Stats sums the counters of all shards.
func (s *Sharded) Stats() Stats {
	var total Stats
	for _, sh := range s.shards {
		st := sh.Stats()
		total.Hits += st.Hits
		total.Misses += st.Misses
		total.Evictions += st.Evictions
		total.Blocks += st.Blocks
		total.Bytes += st.Bytes
	}
	return total
}
