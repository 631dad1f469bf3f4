//go:build !windows

package interceptor

import "github.com/ramensoftware/windhawk-go/api"

// Interceptor is the non-Windows stub.
type Interceptor struct{}

func Install(engine HookEngine, opts Options) (*Interceptor, error) {
	return nil, api.ErrUnsupportedPlatform
}

func (ic *Interceptor) Close() error { return nil }
