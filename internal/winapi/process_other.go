//go:build !windows

package winapi

import "github.com/ramensoftware/windhawk-go/api"

func SetDebugPrivilege(enable bool) error { return api.ErrUnsupportedPlatform }
