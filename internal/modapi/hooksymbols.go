package modapi

import (
	"context"
	"fmt"

	"github.com/ramensoftware/windhawk-go/api"
	"github.com/ramensoftware/windhawk-go/internal/symbols"
)

// symbolCacheSection is the settings-store section holding one entry per
// resolved module, keyed by cache key (ModsWritable/<mod>/SymbolCache,
// spec.md §4.9 step 2).
const symbolCacheSection = "SymbolCache"

// hybridOverrideSetting is the mod-private override name for step 7's
// refusal of hybrid modules on non-ARM64 hosts (spec.md §4.9 bullet 7).
const hybridOverrideSetting = "hook_symbols_non_arm64_hybrid_modules_mode"

// HookSpec is one entry of hook_symbols' array_of_{symbols, opt, hook_fn,
// out_original} (spec.md §4.9).
type HookSpec struct {
	Name     string
	Optional bool
	Hook     uintptr
	Original *uintptr

	// resolvedOffset is filled in by the cache/enumeration steps below:
	// the symbol's RVA from the module's load base, nil until resolved.
	resolvedOffset *uint64
}

// HookSymbolsModule describes the target binary for one hook_symbols call.
type HookSymbolsModule struct {
	Path string
	Base uintptr
}

// HookSymbols implements the full algorithm of spec.md §4.9 "Symbol hook
// batch": cache lookup, then online cache, then full enumeration, applying
// the resolved hooks as one batch via ApplyHookOperations.
func (m *LoadedMod) HookSymbols(ctx context.Context, mod HookSymbolsModule, specs []HookSpec, opts symbols.Options, reader symbols.Reader, hostArch api.Architecture, fetcher URLFetcher, mutex NamedMutex) error {
	sig, fallback, hybridArch, err := symbols.Identify(mod.Path)
	if err != nil {
		return fmt.Errorf("modapi: hook_symbols: identifying %s: %w", mod.Path, err)
	}

	if hybridArch != "" && hostArch != api.ArchARM64 {
		mode, _ := m.GetIntValue(hybridOverrideSetting, 0)
		switch mode {
		case 2:
			return nil // no-op success
		case 1:
			// proceed
		default:
			return fmt.Errorf("modapi: hook_symbols: %s is a hybrid module, refused on non-ARM64 host (set %s=1 to override): %w",
				mod.Path, hybridOverrideSetting, api.ErrRequiredSymbolUnresolved)
		}
	}

	hybrid := hybridArch != ""
	var cacheKey string
	if sig != nil {
		cacheKey = symbols.CacheKey(*sig, hybridArch)
	} else {
		cacheKey = symbols.FallbackCacheKey(fallback, hybrid)
	}

	// Step 2-3: local cache.
	if entry, ok := m.readCacheEntry(cacheKey, hybrid); ok {
		if applyCacheEntry(entry, specs) {
			if err := m.queueSpecs(specs, mod.Base); err != nil {
				return err
			}
			return m.ApplyHookOperations()
		}
	}

	// Step 4-5: online cache, cross-mod mutex guarded.
	if fetcher != nil && mutex != nil {
		if release, err := mutex.Acquire("WindhawkSymbolCache_" + cacheKey); err == nil {
			defer release()
			// Re-check the local cache: another process may have populated
			// it while we waited for the mutex.
			if entry, ok := m.readCacheEntry(cacheKey, hybrid); ok && applyCacheEntry(entry, specs) {
				if err := m.queueSpecs(specs, mod.Base); err != nil {
					return err
				}
				return m.ApplyHookOperations()
			}
			if body, err := fetcher.Get(ctx, symbols.OnlineCacheURL("", m.name, cacheKey)); err == nil {
				if entry, err := parseCacheEntrySafely(string(body), hybrid); err == nil && applyCacheEntry(entry, specs) {
					m.writeCacheEntry(cacheKey, entry)
					if err := m.queueSpecs(specs, mod.Base); err != nil {
						return err
					}
					return m.ApplyHookOperations()
				}
			}
		}
	}

	// Step 6: full enumeration fallback.
	var hybridInfo *symbols.HybridInfo
	if hybrid {
		if ranges, err := symbols.HybridRanges(mod.Path); err == nil {
			hybridInfo = symbols.NewHybridInfo(ranges)
		}
	}
	enumerator := symbols.New(reader, hybridInfo, opts)
	defer enumerator.Close()

	resolved := map[string]uint64{}
	confirmedMissing := map[string]bool{}
	remaining := map[string]*HookSpec{}
	for i := range specs {
		remaining[specs[i].Name] = &specs[i]
	}

	for len(remaining) > 0 {
		sym, ok, err := enumerator.GetNextSymbol(nil)
		if err != nil {
			return fmt.Errorf("modapi: hook_symbols: enumerating %s: %w", mod.Path, err)
		}
		if !ok {
			break
		}
		name := sym.Decorated
		if !opts.NoUndecoratedSymbols && sym.Undecorated != "" {
			name = sym.Undecorated
		}
		if spec, ok := remaining[name]; ok {
			offset := uint64(sym.Address - mod.Base)
			resolved[name] = offset
			spec.resolvedOffset = &offset
			if spec.Original != nil {
				*spec.Original = sym.Address
			}
			delete(remaining, name)
		}
	}

	for name, spec := range remaining {
		if spec.Optional {
			confirmedMissing[name] = true
			continue
		}
		return fmt.Errorf("modapi: hook_symbols: %q in %s: %w", name, mod.Path, api.ErrRequiredSymbolUnresolved)
	}

	entry := &symbols.CacheEntry{
		Hybrid:    hybrid,
		FileName:  fallback.FileName,
		Timestamp: fallback.Timestamp,
		ImageSize: fallback.ImageSize,
	}
	for name, off := range resolved {
		off := off
		entry.Symbols = append(entry.Symbols, symbols.SymbolEntry{Name: name, Offset: &off})
	}
	for name := range confirmedMissing {
		entry.Symbols = append(entry.Symbols, symbols.SymbolEntry{Name: name})
	}
	m.writeCacheEntry(cacheKey, entry)

	if err := m.queueSpecs(specs, mod.Base); err != nil {
		return err
	}
	return m.ApplyHookOperations()
}

// applyCacheEntry reports whether entry resolves every spec (non-optional
// hooks must have a concrete offset; optional hooks may be confirmed
// missing), recording each resolved offset on its spec as it goes;
// queueSpecs later turns those offsets into absolute addresses.
func applyCacheEntry(entry *symbols.CacheEntry, specs []HookSpec) bool {
	for i := range specs {
		s := &specs[i]
		found, ok := entry.Lookup(s.Name)
		if !ok {
			return false
		}
		if found.Offset == nil {
			if !s.Optional {
				return false
			}
			continue
		}
		s.resolvedOffset = found.Offset
	}
	return true
}

// queueSpecs turns every spec with a resolved offset into a queued hook,
// computing the absolute target address from the target module's load
// base (see resolvedOffset on HookSpec). A spec with no hook function gets
// that address written into its Original instead.
func (m *LoadedMod) queueSpecs(specs []HookSpec, moduleBase uintptr) error {
	for i := range specs {
		s := &specs[i]
		if s.resolvedOffset == nil {
			continue
		}
		target := moduleBase + uintptr(*s.resolvedOffset)
		if s.Hook == 0 {
			if s.Original != nil {
				*s.Original = target
			}
			continue
		}
		if err := m.SetFunctionHook(target, s.Hook, s.Original); err != nil {
			return err
		}
	}
	return nil
}

func (m *LoadedMod) readCacheEntry(cacheKey string, hybrid bool) (*symbols.CacheEntry, bool) {
	raw, ok, err := m.storage.GetString(symbolCacheSection, cacheKey)
	if err != nil || !ok {
		return nil, false
	}
	entry, err := symbols.ParseCacheEntry(raw, hybrid)
	if err != nil {
		return nil, false
	}
	return entry, true
}

func (m *LoadedMod) writeCacheEntry(cacheKey string, entry *symbols.CacheEntry) {
	_ = m.storage.SetString(symbolCacheSection, cacheKey, entry.Format())
}

func parseCacheEntrySafely(raw string, hybrid bool) (*symbols.CacheEntry, error) {
	return symbols.ParseCacheEntry(raw, hybrid)
}
