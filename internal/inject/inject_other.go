//go:build !windows

package inject

import "github.com/ramensoftware/windhawk-go/api"

func Inject(req Request) error { return api.ErrUnsupportedPlatform }
