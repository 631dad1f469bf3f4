package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// modSettingsPathPortable returns app_data/Mods/<modName>.ini.
func modSettingsPathPortable(p *Paths, modName string) string {
	return filepath.Join(p.AppData, "Mods", modName+".ini")
}

// enumModNamesPortable lists the filename stems of every *.ini file
// directly under app_data/Mods (spec.md §4.2 "IniFilesEnumMods"): each one
// names a configured mod, loaded or not.
func enumModNamesPortable(p *Paths) ([]string, error) {
	dir := filepath.Join(p.AppData, "Mods")
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", errConfig, dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.EqualFold(filepath.Ext(name), ".ini") {
			continue
		}
		names = append(names, strings.TrimSuffix(name, filepath.Ext(name)))
	}
	return names, nil
}
