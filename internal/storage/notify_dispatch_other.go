//go:build !windows

package storage

import "github.com/ramensoftware/windhawk-go/api"

func newRegistryModConfigChangeNotification(p *Paths) (ModConfigChangeNotification, error) {
	return nil, api.ErrUnsupportedPlatform
}
