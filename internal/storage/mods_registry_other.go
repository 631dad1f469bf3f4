//go:build !windows

package storage

import (
	"github.com/ramensoftware/windhawk-go/api"
	"github.com/ramensoftware/windhawk-go/internal/settings"
)

func enumModNamesRegistry(p *Paths) ([]string, error) {
	return nil, api.ErrUnsupportedPlatform
}

func modSettingsStoreRegistry(p *Paths, modName string) (settings.Store, error) {
	return nil, api.ErrUnsupportedPlatform
}

func modWritableStoreRegistry(p *Paths, modName string) (settings.Store, error) {
	return nil, api.ErrUnsupportedPlatform
}
