package cache

import (
	"sync"
	"time"

	"github.com/Helper-Yoon/chat-analyzer/internal/types"
)

// DefaultRunCapacity is the number of results kept when no capacity is given
const DefaultRunCapacity = 20

// RunInfo is the listing entry of a cached run
type RunInfo struct {
	RunID    string          `json:"runId"`
	Status   types.RunStatus `json:"status"`
	Period   types.Period    `json:"period"`
	Agents   int             `json:"agents"`
	Managers int             `json:"managers"`
	StoredAt time.Time       `json:"storedAt"`
}

type entry struct {
	result   *types.Result
	storedAt time.Time
}

// RunCache keeps the most recent run results in memory. The oldest result
// is evicted once capacity is reached.
type RunCache struct {
	runs     map[string]entry // runID -> result
	order    []string         // oldest first
	capacity int
	mu       sync.RWMutex
}

// NewRunCache creates a new run cache
func NewRunCache(capacity int) *RunCache {
	if capacity <= 0 {
		capacity = DefaultRunCapacity
	}
	return &RunCache{
		runs:     make(map[string]entry, capacity),
		order:    make([]string, 0, capacity),
		capacity: capacity,
	}
}

// Put stores a result under its run id
func (c *RunCache) Put(result *types.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.runs[result.RunID]; !exists {
		if len(c.order) == c.capacity {
			delete(c.runs, c.order[0])
			c.order = c.order[1:]
		}
		c.order = append(c.order, result.RunID)
	}
	c.runs[result.RunID] = entry{result: result, storedAt: time.Now()}
}

// Get returns a cached result
func (c *RunCache) Get(runID string) (*types.Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.runs[runID]
	return e.result, ok
}

// List returns the cached runs, newest first
func (c *RunCache) List() []RunInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]RunInfo, 0, len(c.order))
	for i := len(c.order) - 1; i >= 0; i-- {
		e := c.runs[c.order[i]]
		out = append(out, RunInfo{
			RunID:    e.result.RunID,
			Status:   e.result.Status,
			Period:   e.result.Period,
			Agents:   len(e.result.Agents.Summary),
			Managers: len(e.result.Managers.Summary),
			StoredAt: e.storedAt,
		})
	}
	return out
}

// Size returns the number of cached runs
func (c *RunCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Clear removes all cached runs and returns how many were removed
func (c *RunCache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.order)
	c.runs = make(map[string]entry, c.capacity)
	c.order = make([]string, 0, c.capacity)
	return n
}
