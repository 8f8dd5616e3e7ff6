package indexer

import "sync"

// pathLocks hands out one advisory mutex per path, created on demand.
// Serializing reindexes of a single path closes the race where two
// concurrent delete-then-insert sequences interleave and leave a mix of
// both batches behind.
type pathLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// get returns the mutex for path, creating it on first use.
// Locks are never removed; the map grows with the set of distinct paths
// indexed over the daemon's lifetime, which is bounded by workspace size.
func (p *pathLocks) get(path string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.locks == nil {
		p.locks = make(map[string]*sync.Mutex)
	}
	lock, ok := p.locks[path]
	if !ok {
		lock = &sync.Mutex{}
		p.locks[path] = lock
	}
	return lock
}
