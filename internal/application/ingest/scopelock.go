package ingest

import (
	"hash/fnv"
	"sync"
)

const lockShards = 64

// scopeLocks serializes version assignment and commit per scope key.
// Sharding by key hash bounds memory while keeping unrelated orders
// fully parallel; two scopes sharing a shard only cost contention,
// never correctness.
type scopeLocks struct {
	shards [lockShards]sync.Mutex
}

func newScopeLocks() *scopeLocks { return &scopeLocks{} }

// Acquire locks the shard owning key and returns the release func.
func (l *scopeLocks) Acquire(key string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	mu := &l.shards[h.Sum32()%lockShards]
	mu.Lock()
	return mu.Unlock
}
