package windhawk

import (
	"fmt"

	"github.com/ramensoftware/windhawk-go/internal/storage"
	"github.com/ramensoftware/windhawk-go/internal/symbols"
)

// symbolCacheSection is where cache entries live under a mod's writable
// store (spec.md §6: "<mod>/SymbolCache/<cache-key>").
const symbolCacheSection = "SymbolCache"

// SymbolCache is the per-mod persistent store for resolved symbol-cache
// entries (spec.md §4.8/§4.9 step 2), a thin wrapper around the mod's own
// ModsWritable settings.Store: one value per cache key, formatted/parsed by
// internal/symbols.CacheEntry. Mirrors the teacher's own split of a small,
// composition-root-owned cache type sitting in front of package internals
// that do the actual encode/decode work.
type SymbolCache struct {
	paths *storage.Paths
}

// NewSymbolCache constructs a SymbolCache rooted at paths.
func NewSymbolCache(paths *storage.Paths) *SymbolCache {
	return &SymbolCache{paths: paths}
}

// Lookup reads and parses the cache entry for modName/cacheKey, if present.
func (c *SymbolCache) Lookup(modName, cacheKey string, hybrid bool) (*symbols.CacheEntry, bool, error) {
	store, err := storage.ModWritableStore(c.paths, modName)
	if err != nil {
		return nil, false, fmt.Errorf("windhawk: opening writable store for mod %q: %w", modName, err)
	}
	raw, ok, err := store.GetString(symbolCacheSection, cacheKey)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	entry, err := symbols.ParseCacheEntry(raw, hybrid)
	if err != nil {
		return nil, false, fmt.Errorf("windhawk: parsing cache entry for mod %q key %q: %w", modName, cacheKey, err)
	}
	return entry, true, nil
}

// Store persists entry under modName/cacheKey, overwriting any prior value.
func (c *SymbolCache) Store(modName, cacheKey string, entry *symbols.CacheEntry) error {
	store, err := storage.ModWritableStore(c.paths, modName)
	if err != nil {
		return fmt.Errorf("windhawk: opening writable store for mod %q: %w", modName, err)
	}
	return store.SetString(symbolCacheSection, cacheKey, entry.Format())
}
