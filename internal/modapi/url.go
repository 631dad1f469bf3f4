package modapi

import "context"

// URLFetcher is the collaborator get_url_content and hook_symbols' online
// cache step are built on (spec.md §4.9). The concrete implementation must
// resolve WinHTTP dynamically (GetProcAddress against winhttp.dll) rather
// than import it statically, so the engine still loads inside sandboxed
// processes that block WinHTTP's static import table entry (spec.md §4.9
// "get_url_content" contract) — that resolution lives in the concrete
// type, out of scope for this interface.
type URLFetcher interface {
	// Get performs a synchronous HTTP GET and returns the full body.
	Get(ctx context.Context, url string) ([]byte, error)
	// GetToFile streams the body directly to destPath instead of buffering
	// it, for the get_url_content "stream to file" mode.
	GetToFile(ctx context.Context, url, destPath string) error
}

// There is no FreeURLContent counterpart: free_url_content exists in the
// original API to release a caller-owned buffer, a concern Go's garbage
// collector already handles for the []byte Get returns.

// NamedMutex is the cross-process named-mutex collaborator hook_symbols
// uses to stop N processes loading the same mod from all hitting the
// network for the same cache key at once (spec.md §4.9 step 4). Its
// Windows implementation wraps CreateMutexW and waits on the handle until
// the mutex is owned.
type NamedMutex interface {
	// Acquire blocks until name is owned by the caller, returning a release
	// func to call when done.
	Acquire(name string) (release func(), err error)
}
