//go:build windows

package storage

import (
	"fmt"

	"golang.org/x/sys/windows/registry"

	"github.com/ramensoftware/windhawk-go/internal/settings"
)

// modsRoot returns the parsed root hive and the base subkey path of
// p.RegistryKey; callers append `\Mods` or `\ModsWritable` (spec.md §4.2
// "RegistryEnumMods").
func (p *Paths) modsRoot() (registry.Key, string, error) {
	if p.RegistryKey == "" {
		return 0, "", errNoRegistryKey(p)
	}
	root, base, err := settings.ParseRegistryKey(p.RegistryKey)
	if err != nil {
		return 0, "", err
	}
	return root, base, nil
}

func enumModNamesRegistry(p *Paths) ([]string, error) {
	root, base, err := p.modsRoot()
	if err != nil {
		return nil, err
	}
	return settings.EnumSubkeyNames(root, base+`\Mods`)
}

func modSettingsStoreRegistry(p *Paths, modName string) (settings.Store, error) {
	root, base, err := p.modsRoot()
	if err != nil {
		return nil, err
	}
	return settings.NewRegistryStore(root, fmt.Sprintf(`%s\Mods\%s`, base, modName)), nil
}

func modWritableStoreRegistry(p *Paths, modName string) (settings.Store, error) {
	root, base, err := p.modsRoot()
	if err != nil {
		return nil, err
	}
	return settings.NewRegistryStore(root, fmt.Sprintf(`%s\ModsWritable\%s`, base, modName)), nil
}
