package symbols

import (
	"fmt"
	"strconv"
	"strings"
)

// SymbolEntry is one resolved (or confirmed-missing) symbol inside a cache
// entry. Offset is nil when the symbol was confirmed missing at resolve
// time (spec.md §4.9 step 2: "Empty offset means confirmed missing").
type SymbolEntry struct {
	Name   string
	Offset *uint64
}

// CacheEntry is the parsed form of one mod symbol-cache value (spec.md
// §4.9 step 2, format literal in spec.md §6 and example S4).
type CacheEntry struct {
	Hybrid    bool
	FileName  string
	Timestamp uint32
	ImageSize uint32
	Symbols   []SymbolEntry
}

const cacheEntryVersion = "1"

func (e *CacheEntry) separator() string {
	if e.Hybrid {
		return ";"
	}
	return "#"
}

// Format renders e in the on-disk string format:
//
//	1<sep><fname><sep><ts>-<imgsize>{<sep><sym><sep><offset-or-empty>}*
func (e *CacheEntry) Format() string {
	sep := e.separator()
	var b strings.Builder
	b.WriteString(cacheEntryVersion)
	b.WriteString(sep)
	b.WriteString(e.FileName)
	b.WriteString(sep)
	fmt.Fprintf(&b, "%d-%d", e.Timestamp, e.ImageSize)
	for _, sym := range e.Symbols {
		b.WriteString(sep)
		b.WriteString(sym.Name)
		b.WriteString(sep)
		if sym.Offset != nil {
			fmt.Fprintf(&b, "%d", *sym.Offset)
		}
	}
	return b.String()
}

// ParseCacheEntry parses s, using sep ('#' or ';') as the field separator —
// the caller picks sep from whether the module being looked up is hybrid
// (spec.md §8, testable property 5: "cache entries for hybrid modules are
// never matched against entries for non-hybrid modules").
func ParseCacheEntry(s string, hybrid bool) (*CacheEntry, error) {
	sep := "#"
	if hybrid {
		sep = ";"
	}
	if !strings.HasPrefix(s, cacheEntryVersion+sep) {
		return nil, fmt.Errorf("symbols: cache entry has unexpected version or separator")
	}
	parts := strings.Split(s, sep)
	// parts[0] = version, [1] = fname, [2] = "ts-imgsize", then pairs of (sym, offset).
	if len(parts) < 3 {
		return nil, fmt.Errorf("symbols: cache entry too short")
	}
	tsImg := strings.SplitN(parts[2], "-", 2)
	if len(tsImg) != 2 {
		return nil, fmt.Errorf("symbols: cache entry malformed timestamp-imagesize field")
	}
	ts, err := strconv.ParseUint(tsImg[0], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("symbols: cache entry timestamp: %w", err)
	}
	imgSize, err := strconv.ParseUint(tsImg[1], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("symbols: cache entry imagesize: %w", err)
	}

	rest := parts[3:]
	if len(rest)%2 != 0 {
		return nil, fmt.Errorf("symbols: cache entry has an unpaired symbol/offset field")
	}
	entry := &CacheEntry{
		Hybrid:    hybrid,
		FileName:  parts[1],
		Timestamp: uint32(ts),
		ImageSize: uint32(imgSize),
	}
	for i := 0; i < len(rest); i += 2 {
		sym := SymbolEntry{Name: rest[i]}
		if rest[i+1] != "" {
			off, err := strconv.ParseUint(rest[i+1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("symbols: cache entry offset for %q: %w", rest[i], err)
			}
			sym.Offset = &off
		}
		entry.Symbols = append(entry.Symbols, sym)
	}
	return entry, nil
}

// Lookup returns the SymbolEntry for name, if present.
func (e *CacheEntry) Lookup(name string) (SymbolEntry, bool) {
	for _, s := range e.Symbols {
		if s.Name == name {
			return s, true
		}
	}
	return SymbolEntry{}, false
}
