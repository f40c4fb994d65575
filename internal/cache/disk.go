package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const entrySuffix = ".cache"

// DiskCache persists payloads as one JSON entry file per key
type DiskCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// NewDiskCache creates a disk cache rooted at dir
func NewDiskCache(dir string, ttl time.Duration) *DiskCache {
	return &DiskCache{
		dir: dir,
		ttl: ttl,
		now: time.Now,
	}
}

type diskEntry struct {
	Key       string    `json:"key"`
	Kind      Kind      `json:"kind"`
	Data      []byte    `json:"data"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Usage summarizes the entries on disk
type Usage struct {
	Entries int
	Bytes   int64
	Expired int
	ByKind  map[Kind]int
}

func (c *DiskCache) Get(key string) ([]byte, bool) {
	data, _, ok := c.lookup(key)
	return data, ok
}

// lookup also returns how long the entry has left to live
func (c *DiskCache) lookup(key string) ([]byte, time.Duration, bool) {
	entry, err := c.read(c.path(key))
	if err != nil || entry.Key != key {
		return nil, 0, false
	}

	remaining := entry.ExpiresAt.Sub(c.now())
	if remaining <= 0 {
		_ = os.Remove(c.path(key))
		return nil, 0, false
	}
	return entry.Data, remaining, true
}

// Set stores a value; a zero ttl uses the cache default
func (c *DiskCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}

	now := c.now()
	data, err := json.Marshal(diskEntry{
		Key:       key,
		Kind:      KindOf(key),
		Data:      value,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	})
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	// Readers must never see a partial entry
	tmp, err := os.CreateTemp(c.dir, ".entry-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path(key)); err != nil {
		return fmt.Errorf("rename cache entry: %w", err)
	}
	return nil
}

func (c *DiskCache) Delete(key string) error {
	err := os.Remove(c.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Clear removes every entry file. Other files in the directory are left alone.
func (c *DiskCache) Clear() error {
	_, err := c.removeWhere(func(*diskEntry) bool { return true })
	return err
}

// Prune removes expired and unreadable entries and reports how many went
func (c *DiskCache) Prune() (int, error) {
	now := c.now()
	return c.removeWhere(func(e *diskEntry) bool {
		return e == nil || !now.Before(e.ExpiresAt)
	})
}

// Usage scans the cache directory. A missing directory is an empty cache.
func (c *DiskCache) Usage() (Usage, error) {
	u := Usage{ByKind: make(map[Kind]int)}
	now := c.now()

	err := c.walk(func(path string, info fs.FileInfo, entry *diskEntry) error {
		u.Entries++
		u.Bytes += info.Size()
		if entry == nil || !now.Before(entry.ExpiresAt) {
			u.Expired++
			return nil
		}
		u.ByKind[entry.Kind]++
		return nil
	})
	return u, err
}

func (c *DiskCache) removeWhere(match func(*diskEntry) bool) (int, error) {
	removed := 0
	var errs []error
	err := c.walk(func(path string, _ fs.FileInfo, entry *diskEntry) error {
		if !match(entry) {
			return nil
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
			return nil
		}
		removed++
		return nil
	})
	return removed, errors.Join(append(errs, err)...)
}

// walk visits entry files; entry is nil when a file cannot be decoded
func (c *DiskCache) walk(visit func(path string, info fs.FileInfo, entry *diskEntry) error) error {
	files, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read cache dir: %w", err)
	}

	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), entrySuffix) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(c.dir, f.Name())
		entry, err := c.read(path)
		if err != nil {
			entry = nil
		}
		if err := visit(path, info, entry); err != nil {
			return err
		}
	}
	return nil
}

func (c *DiskCache) read(path string) (*diskEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entry diskEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// path maps a key to its entry file. Colons are not portable in file names.
func (c *DiskCache) path(key string) string {
	return filepath.Join(c.dir, strings.ReplaceAll(key, ":", "_")+entrySuffix)
}
