// Package symbols implements the symbol enumerator (C8, spec.md §4.8): it
// wraps an external symbol-reading library (msdia-compatible, modeled here
// as the Reader collaborator interface — its internals are out of scope,
// spec.md §5 Non-goals), handling the symbol-server redirect, hybrid-module
// name prefixing, and the three public/function/data enumeration passes.
package symbols

import "context"

// Symbol is one resolved entry: a virtual address plus its decorated and
// (when available) undecorated name.
type Symbol struct {
	Address     uintptr
	Decorated   string
	Undecorated string
}

// Pass identifies which of the three enumeration passes (spec.md §4.8,
// "Three enumeration passes in order") a Symbol came from.
type Pass int

const (
	PassPublic Pass = iota
	PassFunctions
	PassData
)

// ProgressCallback receives "N percent" events forwarded from the
// underlying symbol-server download (spec.md §4.8).
type ProgressCallback func(percent int)

// CancelFunc, when it returns true, stops enumeration cleanly mid-pass
// (spec.md §5, "find_*_symbol accepts a query_cancel callback").
type CancelFunc func() bool

// Reader is the external symbol library collaborator: everything this
// package needs from a real msdia-compatible reader. The engine wraps a
// concrete implementation that loads the bundled symbol DLL and patches its
// LoadLibraryExW import to redirect SYMSRV.DLL to symsrv_windhawk.dll
// (spec.md §4.8) — that redirect plumbing lives outside this interface,
// in the concrete Reader the engine constructs.
type Reader interface {
	// Open prepares symbol enumeration for the module at modulePath, loaded
	// at moduleBase in the target, against symbolServerURL (empty disables
	// server lookups; only the local cache applies).
	Open(ctx context.Context, modulePath string, moduleBase uintptr, symbolServerURL string) error
	// Next returns the next symbol of pass, or ok=false when the pass is
	// exhausted. query_cancel is polled by the concrete implementation.
	Next(pass Pass, cancel CancelFunc) (sym Symbol, ok bool, err error)
	// Close releases the reader's resources.
	Close() error
}

// Options selects enumerator behavior (spec.md §4.9 "find_first_symbol"):
// which symbol-server URL to use, and undecoration behavior.
type Options struct {
	SymbolServerURL      string
	NoUndecoratedSymbols bool
	// LegacyUndecorate surfaces the msdia-compat flag carried from
	// original_source/ (SPEC_FULL.md §4). Neither the Enumerator nor the
	// Reader reads it, so setting it does not change undecoration.
	LegacyUndecorate bool
	Progress         ProgressCallback
}

// Enumerator drives a Reader through the three passes, applying hybrid-module
// name prefixing (hybrid.go) as it goes.
type Enumerator struct {
	reader Reader
	hybrid *HybridInfo
	opts   Options
	pass   Pass
	done   bool
}

// New constructs an Enumerator bound to one module. hybrid is nil for
// non-hybrid modules.
func New(reader Reader, hybrid *HybridInfo, opts Options) *Enumerator {
	return &Enumerator{reader: reader, hybrid: hybrid, opts: opts, pass: PassPublic}
}

// GetNextSymbol returns the next symbol across all three passes, advancing
// pass boundaries transparently, or ok=false once every pass is exhausted.
func (e *Enumerator) GetNextSymbol(cancel CancelFunc) (Symbol, bool, error) {
	for !e.done {
		if cancel != nil && cancel() {
			e.done = true
			return Symbol{}, false, nil
		}
		sym, ok, err := e.reader.Next(e.pass, cancel)
		if err != nil {
			return Symbol{}, false, err
		}
		if !ok {
			if e.pass == PassData {
				e.done = true
				return Symbol{}, false, nil
			}
			e.pass++
			continue
		}
		if e.hybrid != nil && !e.opts.NoUndecoratedSymbols {
			sym.Undecorated = e.hybrid.PrefixForAddress(sym.Address, sym.Decorated) + sym.Undecorated
		}
		return sym, true, nil
	}
	return Symbol{}, false, nil
}

// Close releases the underlying Reader.
func (e *Enumerator) Close() error { return e.reader.Close() }
