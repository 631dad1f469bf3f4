//go:build !windows

package session

import "github.com/ramensoftware/windhawk-go/api"

func newOrchWaiter(handle uintptr) (OrchWaiter, error) {
	return nil, api.ErrUnsupportedPlatform
}
