package modapi

import (
	"fmt"
	"os"
	"path/filepath"
)

// localStorageSection is the settings-store section mod-private writable
// storage lives under: ModsWritable/<mod>/LocalStorage (spec.md §4.9).
const localStorageSection = "LocalStorage"

// GetIntValue / GetStringValue / GetBinaryValue / SetIntValue /
// SetStringValue / SetBinaryValue / DeleteValue implement spec.md §4.9's
// "get/set_int/string/binary_value" and "delete_value": mod-private
// writable storage under ModsWritable/<mod>/LocalStorage.

func (m *LoadedMod) GetIntValue(name string, fallback int32) int32 {
	v, ok, err := m.storage.GetInt(localStorageSection, name)
	if err != nil || !ok {
		return fallback
	}
	return v
}

func (m *LoadedMod) GetStringValue(name, fallback string) string {
	v, ok, err := m.storage.GetString(localStorageSection, name)
	if err != nil || !ok {
		return fallback
	}
	return v
}

func (m *LoadedMod) GetBinaryValue(name string) ([]byte, bool) {
	v, ok, err := m.storage.GetBinary(localStorageSection, name)
	if err != nil || !ok {
		return nil, false
	}
	return v, true
}

func (m *LoadedMod) SetIntValue(name string, value int32) bool {
	return m.storage.SetInt(localStorageSection, name, value) == nil
}

func (m *LoadedMod) SetStringValue(name, value string) bool {
	return m.storage.SetString(localStorageSection, name, value) == nil
}

func (m *LoadedMod) SetBinaryValue(name string, value []byte) bool {
	return m.storage.SetBinary(localStorageSection, name, value) == nil
}

func (m *LoadedMod) DeleteValue(name string) bool {
	return m.storage.Remove(localStorageSection, name) == nil
}

// ModStoragePath returns the per-mod scratch directory
// ModsWritable/mod-storage/<mod>/, creating it lazily (spec.md §4.9
// "get_mod_storage_path").
func ModStoragePath(modsWritableRoot, modName string) (string, error) {
	dir := filepath.Join(modsWritableRoot, "mod-storage", modName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("modapi: creating mod storage dir: %w", err)
	}
	return dir, nil
}
