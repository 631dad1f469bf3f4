//go:build !windows

package modapi

import "github.com/ramensoftware/windhawk-go/api"

// WindowsMutex stub: named cross-process mutexes have no portable
// equivalent off Windows, and hook_symbols only ever runs injected into a
// Windows process.
type WindowsMutex struct{}

func (WindowsMutex) Acquire(name string) (func(), error) {
	return nil, api.ErrUnsupportedPlatform
}
