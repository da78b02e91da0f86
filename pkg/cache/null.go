package cache

// NullCache is a no-op cache that never stores anything.
// It backs --no-cache runs.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache {
	return &NullCache{}
}

// PathFor returns an empty location.
func (c *NullCache) PathFor(url string) string { return "" }

// IsValid always reports a miss.
func (c *NullCache) IsValid(path string) bool { return false }

// Read always fails with ErrNotFound.
func (c *NullCache) Read(path string) (string, error) { return "", ErrNotFound }

// Write does nothing.
func (c *NullCache) Write(path, content string) error { return nil }

// Dir returns "".
func (c *NullCache) Dir() string { return "" }

// Ensure NullCache implements Cache.
var _ Cache = (*NullCache)(nil)
