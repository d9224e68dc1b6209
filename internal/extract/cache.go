package extract

import (
	"context"
	"fmt"
	"os"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheKey struct {
	path    string
	size    int64
	modTime time.Time
}

// Cache memoizes a Loader by file identity. A file that changes size or
// modification time is reloaded. Safe for concurrent use.
type Cache struct {
	loader  Loader
	entries *lru.Cache[cacheKey, Source]
}

// NewCache wraps loader with an LRU holding up to size documents.
func NewCache(loader Loader, size int) (*Cache, error) {
	entries, err := lru.New[cacheKey, Source](size)
	if err != nil {
		return nil, fmt.Errorf("create extraction cache: %w", err)
	}
	return &Cache{loader: loader, entries: entries}, nil
}

// Load returns the cached source for path or delegates to the wrapped loader.
func (c *Cache) Load(ctx context.Context, path string) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Source{}, fmt.Errorf("stat %s: %w", path, err)
	}
	key := cacheKey{path: path, size: info.Size(), modTime: info.ModTime()}
	if src, ok := c.entries.Get(key); ok {
		return src, nil
	}
	src, err := c.loader.Load(ctx, path)
	if err != nil {
		return Source{}, err
	}
	c.entries.Add(key, src)
	return src, nil
}

// Len reports the number of cached documents.
func (c *Cache) Len() int {
	return c.entries.Len()
}
