package modapi

import (
	"sync"
	"sync/atomic"

	"github.com/ramensoftware/windhawk-go/internal/symbols"
)

// SymbolSearchHandle identifies one in-flight find_first_symbol /
// find_next_symbol / find_close_symbol sequence (spec.md §4.9), mirroring
// the FindFirstFile/FindNextFile/FindClose idiom the mod API borrows its
// shape from.
type SymbolSearchHandle uint64

var (
	symbolSearchSeq      atomic.Uint64
	symbolSearchMu       sync.Mutex
	symbolSearchByHandle = map[SymbolSearchHandle]*symbols.Enumerator{}
)

// FindFirstSymbol opens a symbol enumerator over reader (with hybrid and
// opts) and returns its first result plus a handle for FindNextSymbol.
func (m *LoadedMod) FindFirstSymbol(reader symbols.Reader, hybrid *symbols.HybridInfo, opts symbols.Options) (SymbolSearchHandle, symbols.Symbol, bool, error) {
	enum := symbols.New(reader, hybrid, opts)
	sym, ok, err := enum.GetNextSymbol(nil)
	if err != nil {
		enum.Close()
		return 0, symbols.Symbol{}, false, err
	}
	if !ok {
		enum.Close()
		return 0, symbols.Symbol{}, false, nil
	}

	handle := SymbolSearchHandle(symbolSearchSeq.Add(1))
	symbolSearchMu.Lock()
	symbolSearchByHandle[handle] = enum
	symbolSearchMu.Unlock()
	return handle, sym, true, nil
}

// FindNextSymbol advances a search opened by FindFirstSymbol.
func (m *LoadedMod) FindNextSymbol(handle SymbolSearchHandle) (symbols.Symbol, bool, error) {
	symbolSearchMu.Lock()
	enum, ok := symbolSearchByHandle[handle]
	symbolSearchMu.Unlock()
	if !ok {
		return symbols.Symbol{}, false, nil
	}
	return enum.GetNextSymbol(nil)
}

// FindCloseSymbol releases a search opened by FindFirstSymbol.
func (m *LoadedMod) FindCloseSymbol(handle SymbolSearchHandle) error {
	symbolSearchMu.Lock()
	enum, ok := symbolSearchByHandle[handle]
	delete(symbolSearchByHandle, handle)
	symbolSearchMu.Unlock()
	if !ok {
		return nil
	}
	return enum.Close()
}
