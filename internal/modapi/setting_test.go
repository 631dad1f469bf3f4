package modapi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetIntSettingComposesPrintfName(t *testing.T) {
	m := newTestMod()
	m.settingsStore.SetInt(settingsSection, "item_3", 99)

	v, ok := m.GetIntSetting("item_%d", 3)
	require.True(t, ok)
	require.Equal(t, int32(99), v)

	_, ok = m.GetIntSetting("item_%d", 4)
	require.False(t, ok)
}

func TestGetStringSetting(t *testing.T) {
	m := newTestMod()
	m.settingsStore.SetString(settingsSection, "label", "hello")

	v, ok := m.GetStringSetting("label")
	require.True(t, ok)
	require.Equal(t, "hello", v)
}
