package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	errs "github.com/matzehuels/topdeps/pkg/errors"
)

// fileExt is appended to the URL hash to form the entry filename.
const fileExt = ".json.gz"

// FileCache implements a gzip-compressed, file-per-URL cache for CLI usage.
type FileCache struct {
	dir string
	ttl time.Duration
}

// NewFileCache creates a file-based cache in the given directory.
// The directory will be created if it doesn't exist. A non-positive ttl
// selects DefaultTTL.
func NewFileCache(dir string, ttl time.Duration) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, "create cache dir %s", dir)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &FileCache{dir: dir, ttl: ttl}, nil
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

// TTL returns the freshness window.
func (c *FileCache) TTL() time.Duration { return c.ttl }

// PathFor converts a URL to a file path inside the cache directory.
func (c *FileCache) PathFor(url string) string {
	return filepath.Join(c.dir, Hash([]byte(url))+fileExt)
}

// IsValid reports whether path exists and was written less than TTL ago.
func (c *FileCache) IsValid(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	age := time.Since(info.ModTime())
	return age >= 0 && age < c.ttl
}

// Read decompresses and decodes the entry at path.
func (c *FileCache) Read(path string) (string, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", errs.Wrap(errs.ErrCodeIO, ErrNotFound, "read %s", path)
	}
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeIO, err, "read %s", path)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return "", corrupt(path, err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return "", corrupt(path, err)
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return "", corrupt(path, err)
	}
	return e.Content, nil
}

// Write serializes content with the current timestamp, compresses it and
// replaces the entry at path.
func (c *FileCache) Write(path, content string) error {
	data, err := json.Marshal(entry{
		Timestamp: uint64(time.Now().Unix()),
		Content:   content,
	})
	if err != nil {
		return errs.Wrap(errs.ErrCodeDecode, err, "encode cache entry")
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "compress cache entry")
	}
	if err := zw.Close(); err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "compress cache entry")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "create cache dir %s", dir)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "write %s", path)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errs.Wrap(errs.ErrCodeIO, err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errs.Wrap(errs.ErrCodeIO, err, "write %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return errs.Wrap(errs.ErrCodeIO, err, "write %s", path)
	}
	return nil
}

// Stats counts the entries in the cache directory and their size on disk.
func (c *FileCache) Stats() (entries int, size int64, err error) {
	des, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, 0, errs.Wrap(errs.ErrCodeIO, err, "list %s", c.dir)
	}
	for _, de := range des {
		if de.IsDir() || !strings.HasSuffix(de.Name(), fileExt) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries++
		size += info.Size()
	}
	return entries, size, nil
}

// Clear removes every entry and returns how many were deleted.
// Files that do not look like cache entries are left alone.
func (c *FileCache) Clear() (int, error) {
	des, err := os.ReadDir(c.dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, errs.Wrap(errs.ErrCodeIO, err, "list %s", c.dir)
	}
	count := 0
	for _, de := range des {
		name := de.Name()
		if de.IsDir() || !(strings.HasSuffix(name, fileExt) || strings.HasPrefix(name, ".tmp-")) {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, name)); err == nil {
			count++
		}
	}
	return count, nil
}

func corrupt(path string, err error) error {
	return errs.Wrap(errs.ErrCodeDecode, errors.Join(ErrCorrupt, err), "decode %s", path)
}

// Ensure FileCache implements Cache.
var _ Cache = (*FileCache)(nil)
