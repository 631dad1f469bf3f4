//go:build !windows

package namespace

import "github.com/ramensoftware/windhawk-go/api"

// Handle is the non-Windows stub; private namespaces are a Win32-only
// concept (spec.md §4.3, Non-goals).
type Handle struct {
	name string
}

// Open always fails off Windows.
func Open(orchPID uint32) (*Handle, error) {
	return nil, api.ErrUnsupportedPlatform
}

func (h *Handle) Name() string { return h.name }

func (h *Handle) Close() error { return nil }
