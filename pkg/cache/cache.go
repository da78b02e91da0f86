// Package cache stores fetched page bodies on disk so repeated runs do not
// hit the network for the same URL twice within the freshness window.
//
// # Layout
//
// Every URL maps to exactly one file under the cache directory:
//
//	<dir>/<sha256(url)>.json.gz
//
// The file holds a gzip-compressed JSON document of the form
// {"timestamp": <epoch seconds>, "content": "<body>"}. Freshness is judged by
// the file's modification time, not by the embedded timestamp.
//
// # Concurrency
//
// Distinct URLs never share a file, and writes go through a temporary file
// followed by a rename, so concurrent writers for the same URL resolve
// last-writer-wins without locking.
//
// # Failure policy
//
// Cache failures are never fatal to a fetch. Callers treat any error from
// [Cache.Read] as a miss and any error from [Cache.Write] as a warning.
package cache

import "time"

// DefaultTTL is the freshness window of a cached page body.
const DefaultTTL = 24 * time.Hour

// Cache is the response cache used by the fetch path.
type Cache interface {
	// PathFor maps a URL to its cache location. The mapping is stable.
	PathFor(url string) string

	// IsValid reports whether the location exists and is inside the
	// freshness window. Any I/O error yields false.
	IsValid(path string) bool

	// Read decodes the body stored at path.
	Read(path string) (string, error)

	// Write stores content at path, replacing any previous entry.
	Write(path, content string) error

	// Dir returns the directory backing the cache, or "" when the cache
	// does not persist anything.
	Dir() string
}

// entry is the serialized form of a cached body.
type entry struct {
	Timestamp uint64 `json:"timestamp"`
	Content   string `json:"content"`
}
