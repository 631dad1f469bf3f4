//go:build windows

package storage

import "github.com/ramensoftware/windhawk-go/internal/settings"

// newRegistryModConfigChangeNotification resolves p.RegistryKey to a
// registry.Key root and watches its "\Mods" subkey.
func newRegistryModConfigChangeNotification(p *Paths) (ModConfigChangeNotification, error) {
	if p.RegistryKey == "" {
		return nil, errNoRegistryKey(p)
	}
	root, base, err := settings.ParseRegistryKey(p.RegistryKey)
	if err != nil {
		return nil, err
	}
	return NewRegistryModConfigChangeNotification(root, base+`\Mods`)
}
