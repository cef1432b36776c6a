package grid

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/weektally/weektally/pkg/timesheet"
	"github.com/weektally/weektally/pkg/week"
)

// cacheKeyPrefix matches the original browser local-storage naming, so a
// cache entry for week 2024-02-05 lives under "timesheetData-2024-02-05".
const cacheKeyPrefix = "timesheetData-"

// Cache is the durable local cache port of the store. Get returns the cached
// document and whether an entry exists; a present-but-unreadable entry is an
// error, which the store treats as a miss.
type Cache interface {
	Get(key week.Key) (timesheet.Document, bool, error)
	Put(key week.Key, doc timesheet.Document) error
}

// FileCache stores one JSON-encoded entry per week in a directory. It plays
// the role browser local storage plays for the original grid.
type FileCache struct {
	dir string
	mu  sync.RWMutex
}

func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create cache directory %s: %w", dir, err)
	}
	return &FileCache{dir: dir}, nil
}

func (c *FileCache) path(key week.Key) string {
	return filepath.Join(c.dir, cacheKeyPrefix+key.String()+".json")
}

func (c *FileCache) Get(key week.Key) (timesheet.Document, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("could not read cache entry for %s: %w", key, err)
	}
	var doc timesheet.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, true, fmt.Errorf("malformed cache entry for %s: %w", key, err)
	}
	return doc, true, nil
}

func (c *FileCache) Put(key week.Key, doc timesheet.Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("could not encode cache entry for %s: %w", key, err)
	}
	if err := os.WriteFile(c.path(key), data, 0o644); err != nil {
		return fmt.Errorf("could not write cache entry for %s: %w", key, err)
	}
	return nil
}

// MemoryCache is an in-memory Cache for tests. Entries round-trip through
// JSON the same way FileCache entries do, so malformed payloads can be
// injected with PutRaw.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[week.Key][]byte
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[week.Key][]byte)}
}

func (c *MemoryCache) Get(key week.Key) (timesheet.Document, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	var doc timesheet.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, true, fmt.Errorf("malformed cache entry for %s: %w", key, err)
	}
	return doc, true, nil
}

func (c *MemoryCache) Put(key week.Key, doc timesheet.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
	return nil
}

// PutRaw stores an arbitrary payload under the key, bypassing encoding.
func (c *MemoryCache) PutRaw(key week.Key, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
