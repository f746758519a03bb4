package apiclient

import (
	"context"
	"strings"
	"sync"
	"time"
)

// CacheCategory selects which TTL bucket a cached response belongs to.
type CacheCategory int

const (
	// CacheNone disables caching for a call.
	CacheNone CacheCategory = iota
	// CachePatient covers single-patient detail fetches.
	CachePatient
	// CachePatientList covers the patient roster.
	CachePatientList
	// CacheNotes covers clinical note listings.
	CacheNotes
)

// CacheTTLs holds the per-category time-to-live values. A zero TTL disables
// caching for that category.
type CacheTTLs struct {
	Patient     time.Duration
	PatientList time.Duration
	Notes       time.Duration
}

func (t CacheTTLs) ttl(cat CacheCategory) time.Duration {
	switch cat {
	case CachePatient:
		return t.Patient
	case CachePatientList:
		return t.PatientList
	case CacheNotes:
		return t.Notes
	default:
		return 0
	}
}

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// Cache is a thread-safe in-memory response cache with lazy expiration.
type Cache struct {
	ttls    CacheTTLs
	mu      sync.RWMutex
	entries map[string]*cacheEntry
}

func NewCache(ttls CacheTTLs) *Cache {
	return &Cache{
		ttls:    ttls,
		entries: make(map[string]*cacheEntry),
	}
}

func cacheKey(cat CacheCategory, path string) string {
	switch cat {
	case CachePatient:
		return "patient:" + path
	case CachePatientList:
		return "patient-list:" + path
	case CacheNotes:
		return "notes:" + path
	default:
		return path
	}
}

// Get retrieves a cached response. Performs lazy expiration: deletes the
// entry and reports a miss if it has expired.
func (c *Cache) Get(cat CacheCategory, path string) ([]byte, bool) {
	key := cacheKey(cat, path)
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.data, true
}

// Set stores a response under the category's TTL. Categories with a zero
// TTL are never stored.
func (c *Cache) Set(cat CacheCategory, path string, data []byte) {
	ttl := c.ttls.ttl(cat)
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(cat, path)] = &cacheEntry{
		data:      data,
		expiresAt: time.Now().Add(ttl),
	}
}

// Delete removes a single entry.
func (c *Cache) Delete(cat CacheCategory, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, cacheKey(cat, path))
}

// Invalidate removes every entry whose key contains the fragment. Used after
// mutating calls so stale reads don't outlive a write.
func (c *Cache) Invalidate(fragment string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.Contains(k, fragment) {
			delete(c.entries, k)
		}
	}
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// StartCleanup runs a background goroutine that periodically removes expired
// entries. It stops when the context is cancelled.
func (c *Cache) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.mu.Lock()
				now := time.Now()
				for k, v := range c.entries {
					if now.After(v.expiresAt) {
						delete(c.entries, k)
					}
				}
				c.mu.Unlock()
			}
		}
	}()
}
