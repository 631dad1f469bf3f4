//go:build !windows

package session

import "github.com/ramensoftware/windhawk-go/api"

func acquireProcessSemaphore(selfPID uint32) (func() error, error) {
	return nil, api.ErrUnsupportedPlatform
}
