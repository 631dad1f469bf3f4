package storage

import (
	"fmt"

	"github.com/ramensoftware/windhawk-go/internal/settings"
)

// EnumModNames lists every mod name currently configured under p, portable
// or registry mode (spec.md §4.10 constructor, §4.2 EnumMods): portable
// mode enumerates the stems of app_data/Mods/*.ini; registry mode
// enumerates the subkeys of <registrySubKey>\Mods.
func EnumModNames(p *Paths) ([]string, error) {
	if p.Portable {
		return enumModNamesPortable(p)
	}
	return enumModNamesRegistry(p)
}

// ModSettingsStore opens the per-mod read-mostly settings store (spec.md §3
// "each mod's own settings live in section 'Mod' of either
// app_data/Mods/<modName>.ini or <registrySubKey>\Mods\<modName>"):
// portable mode one INI file per mod, registry mode one subkey per mod.
func ModSettingsStore(p *Paths, modName string) (settings.Store, error) {
	if p.Portable {
		return settings.NewINIStore(modSettingsPathPortable(p, modName)), nil
	}
	return modSettingsStoreRegistry(p, modName)
}

// ModWritableStore opens the per-mod writable store used for the mod's own
// persisted settings and symbol cache (spec.md §3
// ModsWritable/<modName>.ini or <registrySubKey>\ModsWritable\<modName>).
func ModWritableStore(p *Paths, modName string) (settings.Store, error) {
	if p.Portable {
		return settings.NewINIStore(p.ModWritableINI(modName)), nil
	}
	return modWritableStoreRegistry(p, modName)
}

func errNoRegistryKey(p *Paths) error {
	return fmt.Errorf("%w: registry mode but engine.ini has no RegistryKey", errConfig)
}
