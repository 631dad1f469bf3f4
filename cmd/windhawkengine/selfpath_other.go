//go:build !windows

package main

import "github.com/ramensoftware/windhawk-go/api"

// ownModulePath is the non-Windows stub: this binary only does anything
// useful loaded as a Windows DLL (spec.md §4.3 Non-goals).
func ownModulePath() (string, error) {
	return "", api.ErrUnsupportedPlatform
}
