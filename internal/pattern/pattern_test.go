package pattern

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatchesFilenameOnlyTerm(t *testing.T) {
	s := Compile("explorer.exe")
	require.True(t, s.Matches(`C:\Windows\explorer.exe`))
	require.True(t, s.Matches(`C:\Windows\EXPLORER.EXE`))
	require.False(t, s.Matches(`C:\Windows\notepad.exe`))
}

func TestMatchesFullPathTermRequiresBackslash(t *testing.T) {
	s := Compile(`C:\Windows\*`)
	require.True(t, s.Matches(`C:\Windows\explorer.exe`))
	require.False(t, s.Matches(`C:\Users\me\explorer.exe`))
}

func TestWildcardStarAndQuestionMark(t *testing.T) {
	s := Compile("note?ad.exe")
	require.True(t, s.Matches(`C:\Windows\notepad.exe`))
	require.False(t, s.Matches(`C:\Windows\notepad2.exe`))

	s2 := Compile("*.exe")
	require.True(t, s2.Matches(`C:\Windows\anything.exe`))
}

func TestAlternationLaw(t *testing.T) {
	// matches("ab|cd", x) <=> matches("ab", x) || matches("cd", x)
	combined := Compile("notepad.exe|explorer.exe")
	a := Compile("notepad.exe")
	b := Compile("explorer.exe")

	for _, x := range []string{`C:\notepad.exe`, `C:\explorer.exe`, `C:\cmd.exe`} {
		require.Equal(t, a.Matches(x) || b.Matches(x), combined.Matches(x), x)
	}
}

func TestEmptyPatternMatchesNothing(t *testing.T) {
	s := Compile("")
	require.True(t, s.Empty())
	require.False(t, s.Matches(`C:\anything.exe`))
}

func TestEnvironmentVariableExpansion(t *testing.T) {
	os.Setenv("WH_TEST_DIR", `C:\ProgramData\Test`)
	defer os.Unsetenv("WH_TEST_DIR")

	s := Compile(`${WH_TEST_DIR}\*`)
	require.True(t, s.Matches(`C:\ProgramData\Test\mod.exe`))
}
