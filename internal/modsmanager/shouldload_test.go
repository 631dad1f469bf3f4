package modsmanager

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ramensoftware/windhawk-go/api"
	"github.com/ramensoftware/windhawk-go/internal/pattern"
)

func TestShouldLoadRejectsDisabled(t *testing.T) {
	d := Descriptor{Disabled: true, Patterns: Patterns{Include: pattern.Compile("*")}}
	require.False(t, ShouldLoadInRunningProcess(d, api.ArchAMD64, `C:\Windows\explorer.exe`, false))
}

func TestShouldLoadRejectsArchitectureMismatch(t *testing.T) {
	d := Descriptor{Architecture: "arm64", Patterns: Patterns{Include: pattern.Compile("*")}}
	require.False(t, ShouldLoadInRunningProcess(d, api.ArchAMD64, `C:\Windows\explorer.exe`, false))
}

func TestShouldLoadRejectsCriticalProcessByDefault(t *testing.T) {
	d := Descriptor{Patterns: Patterns{Include: pattern.Compile("*")}}
	require.False(t, ShouldLoadInRunningProcess(d, api.ArchAMD64, `C:\Windows\System32\csrss.exe`, false))
	require.True(t, ShouldLoadInRunningProcess(d, api.ArchAMD64, `C:\Windows\System32\csrss.exe`, true))
}

func TestShouldLoadRejectsEmptyIncludeSet(t *testing.T) {
	d := Descriptor{}
	require.False(t, ShouldLoadInRunningProcess(d, api.ArchAMD64, `C:\Windows\explorer.exe`, false))
}

func TestShouldLoadIncludeCustomAppliesEvenWithCustomOnly(t *testing.T) {
	d := Descriptor{Patterns: Patterns{
		Include:                  pattern.Compile("explorer.exe"),
		IncludeCustom:            pattern.Compile("notepad.exe"),
		IncludeExcludeCustomOnly: true,
	}}
	require.False(t, ShouldLoadInRunningProcess(d, api.ArchAMD64, `C:\Windows\explorer.exe`, false))
	require.True(t, ShouldLoadInRunningProcess(d, api.ArchAMD64, `C:\Windows\notepad.exe`, false))
}

func TestShouldLoadExcludeOverridesInclude(t *testing.T) {
	d := Descriptor{Patterns: Patterns{
		Include: pattern.Compile("*.exe"),
		Exclude: pattern.Compile("explorer.exe"),
	}}
	require.False(t, ShouldLoadInRunningProcess(d, api.ArchAMD64, `C:\Windows\explorer.exe`, false))
	require.True(t, ShouldLoadInRunningProcess(d, api.ArchAMD64, `C:\Windows\notepad.exe`, false))
}
