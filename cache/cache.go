package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/use-agent/crawlduel/models"
)

// entry holds a cached race report with its creation timestamp.
type entry struct {
	report    *models.RaceReport
	createdAt time.Time
}

// Cache is a simple in-memory cache for race reports, so a dashboard
// re-querying the same target doesn't re-run the whole race. Reports never
// outlive the process. Safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
}

// New creates a Cache with the given maximum number of entries.
// A background goroutine evicts entries older than an hour every 5 minutes.
func New(maxEntries int) *Cache {
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
	}
	go c.cleanupLoop()
	return c
}

// Key generates a cache key from the target and the racing configuration.
func Key(target string, strategies []string, cssSelector string) string {
	h := sha256.New()
	h.Write([]byte(target))
	h.Write([]byte("|"))
	h.Write([]byte(strings.Join(strategies, ",")))
	h.Write([]byte("|"))
	h.Write([]byte(cssSelector))
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves a cached report if it exists and is younger than maxAge
// (milliseconds). maxAge <= 0 disables lookup entirely.
func (c *Cache) Get(key string, maxAgeMs int) (*models.RaceReport, bool) {
	if maxAgeMs <= 0 {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if time.Since(e.createdAt) > time.Duration(maxAgeMs)*time.Millisecond {
		return nil, false
	}

	// Shallow copy so callers can stamp cache status and timing without
	// mutating the stored report.
	report := *e.report
	return &report, true
}

// Set stores a report, evicting the oldest entry when full.
func (c *Cache) Set(key string, report *models.RaceReport) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.store) >= c.maxEntries {
		var oldestKey string
		var oldestAt time.Time
		for k, e := range c.store {
			if oldestKey == "" || e.createdAt.Before(oldestAt) {
				oldestKey = k
				oldestAt = e.createdAt
			}
		}
		if oldestKey != "" {
			delete(c.store, oldestKey)
		}
	}

	c.store[key] = &entry{report: report, createdAt: time.Now()}
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// cleanupLoop evicts entries older than one hour, every 5 minutes.
func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-1 * time.Hour)
		c.mu.Lock()
		for k, e := range c.store {
			if e.createdAt.Before(cutoff) {
				delete(c.store, k)
			}
		}
		c.mu.Unlock()
	}
}
