package jobsource

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const (
	cacheFileName = "job_cache.json"

	// DefaultFreshness is the age after which a cached result set is treated
	// as absent. Stale entries are not deleted; expiry is a read-time decision.
	DefaultFreshness = 24 * time.Hour
)

// Cache persists retrieved listings per normalized (query, location) pair in a
// single JSON file. Every read failure degrades to a cache miss so retrieval
// can always proceed as if nothing were cached.
type Cache struct {
	mu        sync.Mutex
	path      string
	freshness time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

type cacheEntry struct {
	Timestamp string     `json:"timestamp"`
	Query     string     `json:"query"`
	Location  string     `json:"location"`
	Listings  []*Listing `json:"listings"`
}

func NewCache(dir string, freshness time.Duration, logger *zap.Logger) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	if freshness <= 0 {
		freshness = DefaultFreshness
	}

	return &Cache{
		path:      filepath.Join(dir, cacheFileName),
		freshness: freshness,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// CacheKey normalizes a query/location pair: lowercased, with whitespace runs
// collapsed to single underscores. Queries differing only in case or spacing
// map to the same entry.
func CacheKey(query, location string) string {
	return strings.Join(strings.Fields(strings.ToLower(query+" "+location)), "_")
}

// Lookup returns the cached listings for the pair and whether a fresh entry
// exists. A malformed entry, an unreadable timestamp, or an entry older than
// the freshness window all count as a miss.
func (c *Cache) Lookup(query, location string) ([]*Listing, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := CacheKey(query, location)

	raw, ok := c.load()[key]
	if !ok {
		return nil, false
	}

	// Decode tolerantly so entries written by older or newer versions stay
	// readable: unknown keys are ignored, missing ones default.
	var entry cacheEntry
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &entry,
		TagName: "json",
	})
	if err != nil {
		return nil, false
	}
	if err := decoder.Decode(raw); err != nil {
		c.logger.Debug("discarding malformed cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	stored, err := time.Parse(time.RFC3339, entry.Timestamp)
	if err != nil {
		c.logger.Debug("discarding cache entry with unreadable timestamp", zap.String("key", key))
		return nil, false
	}

	if c.now().Sub(stored) > c.freshness {
		c.logger.Debug("cache entry is stale", zap.String("key", key), zap.Time("stored", stored))
		return nil, false
	}

	// An empty cached result set is still a hit.
	if entry.Listings == nil {
		return []*Listing{}, true
	}
	return entry.Listings, true
}

// Store replaces the entry for the pair with the provided listings. A later
// store fully supersedes the prior entry.
func (c *Cache) Store(query, location string, listings []*Listing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if listings == nil {
		listings = []*Listing{}
	}

	entries := c.load()
	entries[CacheKey(query, location)] = cacheEntry{
		Timestamp: c.now().UTC().Format(time.RFC3339),
		Query:     query,
		Location:  location,
		Listings:  listings,
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cache entries: %w", err)
	}

	// Write-then-rename so a crash mid-write cannot leave a partial file.
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("replacing cache file: %w", err)
	}

	return nil
}

// load reads the whole cache file. A missing or corrupted file yields an
// empty map, never an error.
func (c *Cache) load() map[string]any {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Debug("reading cache file", zap.Error(err))
		}
		return map[string]any{}
	}

	var entries map[string]any
	if err := json.Unmarshal(data, &entries); err != nil {
		c.logger.Warn("cache file is corrupted, treating as empty", zap.Error(err))
		return map[string]any{}
	}

	if entries == nil {
		entries = map[string]any{}
	}
	return entries
}
