package taskcache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/taskdeck/taskdeck/pkg/domain/model"
	"github.com/taskdeck/taskdeck/pkg/domain/types"
)

const (
	// DefaultTTL bounds staleness for dashboards that only read the cache
	DefaultTTL = 30 * time.Second
	// DefaultSize is the maximum number of tenants cached at once
	DefaultSize = 256
)

// Cache is a per-tenant view cache of recent task lists. Invalidate is the
// notification signal consumed by the dashboard: after a task is created the
// tenant's entry is dropped so the next read reflects the new task without a
// manual refresh.
type Cache struct {
	lru *expirable.LRU[types.TeamID, []*model.Task]
}

// New creates a cache with the default size and TTL
func New() *Cache {
	return NewWithConfig(DefaultSize, DefaultTTL)
}

// NewWithConfig creates a cache with explicit size and TTL
func NewWithConfig(size int, ttl time.Duration) *Cache {
	return &Cache{
		lru: expirable.NewLRU[types.TeamID, []*model.Task](size, nil, ttl),
	}
}

// Get returns the cached task list for a team, if fresh
func (c *Cache) Get(teamID types.TeamID) ([]*model.Task, bool) {
	return c.lru.Get(teamID)
}

// Put stores the task list for a team
func (c *Cache) Put(teamID types.TeamID, tasks []*model.Task) {
	c.lru.Add(teamID, tasks)
}

// Invalidate drops the cached view of a team's tasks
func (c *Cache) Invalidate(teamID types.TeamID) {
	c.lru.Remove(teamID)
}
