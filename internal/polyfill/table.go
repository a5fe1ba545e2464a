package polyfill

import (
	"crypto/sha256"
	_ "embed"
	"os"
)

//go:embed polyfills.txt
var embeddedTable string

// EmbeddedTable returns the text of the built-in polyfill table.
func EmbeddedTable() string {
	return embeddedTable
}

// TableKey hashes table text for cache addressing.
func TableKey(text string) [32]byte {
	return sha256.Sum256([]byte(text))
}

// Load parses a table, consulting the disk cache first when one is given.
// Cache failures are silently ignored; the table is the source of truth.
func Load(text string, cache *DiskCache) (*Catalog, error) {
	key := TableKey(text)
	if cache != nil {
		if cat, ok, err := cache.Get(key); err == nil && ok {
			return cat, nil
		}
	}
	cat, err := ParseTable(text)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		_ = cache.Put(key, cat)
	}
	return cat, nil
}

// LoadFile loads a table from disk, for catalog overrides.
func LoadFile(path string, cache *DiskCache) (*Catalog, error) {
	// #nosec G304 -- path comes from configuration
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(string(text), cache)
}

// Embedded parses the built-in table.
func Embedded() (*Catalog, error) {
	return ParseTable(embeddedTable)
}
