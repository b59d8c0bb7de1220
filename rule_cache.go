package overlay

import "sync"

// ProgramCache stores compiled rule programs keyed by expression strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// WithProgramCache registers a program cache on the map.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *mapConfig) {
		cfg.programCache = cache
	}
}

// MemoryProgramCache is an in-process ProgramCache safe for concurrent use.
type MemoryProgramCache struct {
	mu       sync.RWMutex
	programs map[string]any
}

// NewMemoryProgramCache constructs an empty cache.
func NewMemoryProgramCache() *MemoryProgramCache {
	return &MemoryProgramCache{
		programs: make(map[string]any),
	}
}

// Get returns the program stored for key.
func (c *MemoryProgramCache) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	program, ok := c.programs[key]
	c.mu.RUnlock()
	return program, ok
}

// Set stores program under key, replacing any prior entry.
func (c *MemoryProgramCache) Set(key string, program any) {
	if c == nil {
		return
	}
	c.mu.Lock()
	if c.programs == nil {
		c.programs = make(map[string]any)
	}
	c.programs[key] = program
	c.mu.Unlock()
}

// Len reports the number of cached programs.
func (c *MemoryProgramCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.programs)
}
