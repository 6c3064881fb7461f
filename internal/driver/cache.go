package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"psls/internal/folding"
)

// Bump when FoldPayload changes shape; stale entries are then misses.
const foldCacheSchemaVersion uint16 = 1

// Digest identifies cached content, a sha256 value.
type Digest = [32]byte

// DiskCache stores computed folding ranges on disk, keyed by content digest.
// Thread-safe for concurrent access. A nil receiver is a no-op cache.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// FoldPayload is the serialized form of one cached fold result.
type FoldPayload struct {
	Schema          uint16
	Path            string
	IncludeLastLine bool
	Ranges          []folding.Range
}

// OpenDiskCache initializes and returns a disk cache at the standard
// location, XDG_CACHE_HOME/app or ~/.cache/app.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt initializes a disk cache rooted at dir.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	// Subdirectory keeps the cache root inspectable and easy to clear.
	return filepath.Join(c.dir, "folds", hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key Digest, payload *FoldPayload) error {
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
	defer os.Remove(f.Name())

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(payload); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Atomic replace
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes a payload from the disk cache. A missing entry
// is (false, nil), not an error.
func (c *DiskCache) Get(key Digest, out *FoldPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	p := c.pathFor(key)
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(out); err != nil {
		return false, err
	}
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}

// foldCacheKey mixes the file content digest with the options that affect
// the computed ranges, so differently-configured runs never collide.
func foldCacheKey(contentHash Digest, includeLastLine bool) Digest {
	h := sha256.New()
	h.Write(contentHash[:])
	if includeLastLine {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
	var key Digest
	copy(key[:], h.Sum(nil))
	return key
}
