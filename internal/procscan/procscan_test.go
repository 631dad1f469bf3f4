package procscan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ramensoftware/windhawk-go/internal/pattern"
)

func TestDecideExcludeWithoutInclude(t *testing.T) {
	p := Patterns{
		Include: pattern.Compile(""),
		Exclude: pattern.Compile("notepad.exe"),
	}
	d := Decide(p, `C:\Windows\notepad.exe`)
	require.True(t, d.Skip)
}

func TestDecideIncludeOverridesExclude(t *testing.T) {
	p := Patterns{
		Include: pattern.Compile("notepad.exe"),
		Exclude: pattern.Compile("notepad.exe"),
	}
	d := Decide(p, `C:\Windows\notepad.exe`)
	require.False(t, d.Skip)
}

func TestDecideThreadAttachExempt(t *testing.T) {
	p := Patterns{
		Include:            pattern.Compile(""),
		Exclude:            pattern.Compile(""),
		ThreadAttachExempt: pattern.Compile("explorer.exe"),
	}
	d := Decide(p, `C:\Windows\explorer.exe`)
	require.False(t, d.Skip)
	require.True(t, d.ThreadAttachExempt)
}

func TestIsCriticalProcess(t *testing.T) {
	require.True(t, IsCriticalProcess(`C:\Windows\System32\csrss.exe`))
	require.True(t, IsCriticalProcess(`C:\Windows\System32\CSRSS.EXE`))
	require.False(t, IsCriticalProcess(`C:\Windows\notepad.exe`))
}
