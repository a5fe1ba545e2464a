package polyfill

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"shimmer/internal/feature"
)

// Current schema version - increment when cachePayload format changes.
const cacheSchemaVersion uint16 = 1

// cachePayload is the serialised form of a parsed catalog.
type cachePayload struct {
	Schema   uint16
	Names    []string
	Native   []uint8
	Polyfill []uint8
	Library  []string
}

// DiskCache stores parsed catalogs keyed by table hash so repeated compiler
// runs skip re-parsing. Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenDiskCache initializes a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// OpenDiskCacheAt uses an explicit directory, for tests and overrides.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key [32]byte) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "catalogs", hexKey+".mp")
}

// Put serializes and writes a catalog to the disk cache atomically.
func (c *DiskCache) Put(key [32]byte, cat *Catalog) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	payload := cachePayload{Schema: cacheSchemaVersion}
	for i := range cat.entries {
		e := &cat.entries[i]
		payload.Names = append(payload.Names, e.Name)
		payload.Native = append(payload.Native, uint8(e.NativeVersion))
		payload.Polyfill = append(payload.Polyfill, uint8(e.PolyfillVersion))
		payload.Library = append(payload.Library, e.Library)
	}

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
	if err := enc.Encode(&payload); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// atomic replace
	return os.Rename(f.Name(), p)
}

// Get reads a catalog back from the disk cache. The second return is false
// on a miss, including schema mismatches.
func (c *DiskCache) Get(key [32]byte) (*Catalog, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	p := c.pathFor(key)
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var payload cachePayload
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(&payload); err != nil {
		return nil, false, err
	}
	if payload.Schema != cacheSchemaVersion {
		return nil, false, nil
	}
	if len(payload.Native) != len(payload.Names) ||
		len(payload.Polyfill) != len(payload.Names) ||
		len(payload.Library) != len(payload.Names) {
		return nil, false, fmt.Errorf("catalog cache %s: inconsistent payload", p)
	}

	cat := &Catalog{
		entries: make([]Polyfill, 0, len(payload.Names)),
		static:  make(map[string]*Polyfill),
		methods: make(map[string][]*Polyfill),
	}
	for i, name := range payload.Names {
		cat.entries = append(cat.entries, Polyfill{
			Name:            name,
			Kind:            kindOf(name),
			NativeVersion:   feature.Version(payload.Native[i]),
			PolyfillVersion: feature.Version(payload.Polyfill[i]),
			Library:         payload.Library[i],
		})
	}
	for i := range cat.entries {
		e := &cat.entries[i]
		if e.Kind == KindMethod {
			cat.methods[methodProp(e.Name)] = append(cat.methods[methodProp(e.Name)], e)
		} else {
			cat.static[e.Name] = e
		}
	}
	return cat, true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "catalogs"))
}
