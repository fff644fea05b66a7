// Package cache provides the sharded, concurrent LRU cache that backs
// internal/devcompiler.Compiler's compiled-kernel cache: WGSL source text
// (hashed to a string key, see devcompiler.hashSource) mapped to its
// compiled SPIR-V words, so two CDG nodes that synthesize byte-identical
// kernels compile once. See sharded.go for ShardedCache and lru.go for the
// LRU list it's built on.
package cache

// Stats reports a ShardedCache's size and hit/miss/eviction counters.
type Stats struct {
	// Len is the current number of entries across all shards.
	Len int
	// Capacity is the per-shard capacity.
	Capacity int
	// TotalCapacity is the capacity across all shards (Capacity * DefaultShardCount).
	TotalCapacity int
	// Hits is the number of cache hits.
	Hits uint64
	// Misses is the number of cache misses.
	Misses uint64
	// HitRate is Hits / (Hits + Misses), or 0 if there have been no lookups.
	HitRate float64
	// Evictions is the number of entries evicted to stay within capacity.
	Evictions uint64
}
