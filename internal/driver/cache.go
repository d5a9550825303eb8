package driver

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when skipPayload format changes.
const skipCacheSchemaVersion uint16 = 1

// appName names the cache directory under $XDG_CACHE_HOME.
const appName = "bracketsmith"

// SkipCache records content hashes known to be at a fixed point, so clean
// files can be skipped on later runs without re-scanning them.
// Thread-safe for concurrent access.
type SkipCache struct {
	mu  sync.RWMutex
	dir string
}

// skipPayload is the on-disk record for one clean content hash.
type skipPayload struct {
	// Schema version for safe invalidation when the format changes.
	Schema uint16

	// Path is the last path the content was seen at; informational only,
	// the hash is the key.
	Path string

	// CheckedAt is a unix timestamp of the last verification.
	CheckedAt int64
}

// CacheDir returns the standard cache location without creating it.
func CacheDir() (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, appName), nil
}

// OpenSkipCache initializes the skip cache at the standard location.
func OpenSkipCache() (*SkipCache, error) {
	dir, err := CacheDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &SkipCache{dir: dir}, nil
}

func (c *SkipCache) pathFor(key [32]byte) string {
	hexKey := hex.EncodeToString(key[:])
	// A "clean" subdirectory keeps the cache root readable and easy to drop.
	return filepath.Join(c.dir, "clean", hexKey+".mp")
}

// IsClean reports whether the content hash is recorded as already formatted.
// Decode failures and schema mismatches read as a miss, never an error.
func (c *SkipCache) IsClean(key [32]byte) bool {
	if c == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		return false
	}
	defer func() {
		_ = f.Close()
	}()

	var payload skipPayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return false
	}
	return payload.Schema == skipCacheSchemaVersion
}

// MarkClean records a content hash as formatted. The write is atomic
// (temp file + rename) so concurrent runs never observe a torn record.
func (c *SkipCache) MarkClean(key [32]byte, path string) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(f.Name())
	}()

	payload := skipPayload{
		Schema:    skipCacheSchemaVersion,
		Path:      path,
		CheckedAt: time.Now().Unix(),
	}
	if err := msgpack.NewEncoder(f).Encode(&payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// DropAll removes the cache directory.
func (c *SkipCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// Rename out of the way first so a concurrent run starts fresh.
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}
