package modapi

import "fmt"

// settingsSection is the settings-store section backing read-only mod
// settings, Mods/<mod>/Settings (spec.md §4.9).
const settingsSection = "Settings"

// GetIntSetting reads a mod setting from Mods/<mod>/Settings. nameFormat is
// a printf-format value name so mods can compose array-style keys, e.g.
// GetIntSetting("item_%d", i) (spec.md §4.9 "get_int_setting").
func (m *LoadedMod) GetIntSetting(nameFormat string, args ...interface{}) (int32, bool) {
	v, ok, err := m.settingsStore.GetInt(settingsSection, fmt.Sprintf(nameFormat, args...))
	if err != nil || !ok {
		return 0, false
	}
	return v, true
}

// GetStringSetting reads a string mod setting. There is no FreeStringSetting
// counterpart: the original API's free_string_setting exists to release a
// caller-owned buffer, a concern Go's garbage collector already handles.
func (m *LoadedMod) GetStringSetting(nameFormat string, args ...interface{}) (string, bool) {
	v, ok, err := m.settingsStore.GetString(settingsSection, fmt.Sprintf(nameFormat, args...))
	if err != nil || !ok {
		return "", false
	}
	return v, true
}
