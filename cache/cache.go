package cache

import (
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// Cache stores compiled class files under a content-derived key. It is
// safe for concurrent use by multiple goroutines and processes.
type Cache struct {
	dir string
}

// New opens (creating if needed) a cache rooted at dir
func New(dir string) (*Cache, error) {
	if dir == "" {
		return nil, errors.New("cache directory not set")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create cache dir %s", dir)
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache root
func (c *Cache) Dir() string {
	return c.dir
}

// Key derives the cache key for one compile. Every input that changes
// the output bytes takes part.
func Key(compilerVersion, className, sourceName string, source []byte) string {
	h, _ := blake2b.New256(nil)
	for _, part := range []string{compilerVersion, className, sourceName} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	h.Write(source)
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key[:2], key+".class")
}

// Get returns the cached bytes for key. A miss is not an error.
func (c *Cache) Get(key string) ([]byte, bool, error) {
	if len(key) < 2 {
		return nil, false, errors.Errorf("bad cache key %q", key)
	}
	data, err := os.ReadFile(c.path(key))
	if os.IsNotExist(err) {
		glog.V(2).Infof("cache miss %s", key)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "read cache entry")
	}
	glog.V(2).Infof("cache hit %s", key)
	return data, true, nil
}

// Put stores data under key. The entry appears atomically.
func (c *Cache) Put(key string, data []byte) error {
	if len(key) < 2 {
		return errors.Errorf("bad cache key %q", key)
	}
	final := c.path(key)
	if err := os.MkdirAll(filepath.Dir(final), 0o755); err != nil {
		return errors.Wrap(err, "create cache shard")
	}
	tmp, err := os.CreateTemp(filepath.Dir(final), ".tmp-*")
	if err != nil {
		return errors.Wrap(err, "create cache temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write cache entry")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close cache entry")
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		return errors.Wrap(err, "commit cache entry")
	}
	return nil
}
