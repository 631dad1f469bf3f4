package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeEngineINI(t *testing.T, dir, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "engine.ini"), []byte(body), 0o644))
}

func TestLoadEngineConfigPortable(t *testing.T) {
	dir := t.TempDir()
	writeEngineINI(t, dir, "[Storage]\nAppDataPath = "+filepath.Join(dir, "data")+"\nPortable = 1\n")

	cfg, err := LoadEngineConfig(dir)
	require.NoError(t, err)
	require.True(t, cfg.Portable)
}

func TestLoadEngineConfigMissingAppDataPathIsError(t *testing.T) {
	dir := t.TempDir()
	writeEngineINI(t, dir, "[Storage]\nPortable = 0\n")

	_, err := LoadEngineConfig(dir)
	require.Error(t, err)
}

func TestNewCreatesAppDataDir(t *testing.T) {
	dir := t.TempDir()
	appData := filepath.Join(dir, "AppData")
	writeEngineINI(t, dir, "[Storage]\nAppDataPath = "+appData+"\nPortable = 1\n")

	p, err := New(dir)
	require.NoError(t, err)
	st, err := os.Stat(p.AppData)
	require.NoError(t, err)
	require.True(t, st.IsDir())
}

func TestFoldProgramFilesX86(t *testing.T) {
	got := foldProgramFilesX86(`C:\Program Files (x86)\Windhawk`)
	require.Equal(t, `C:\Program Files\Windhawk`, got)
}

func TestPathLayout(t *testing.T) {
	p := &Paths{EngineRoot: filepath.Join("C:", "Windhawk"), AppData: filepath.Join("C:", "ProgramData", "Windhawk")}
	require.Equal(t, filepath.Join("C:", "Windhawk", "64", "windhawk.dll"), p.EngineDLL("64"))
	require.Equal(t, filepath.Join("C:", "ProgramData", "Windhawk", "Mods", "64", "demo.dll"), p.ModDLL("64", "demo"))
	require.Equal(t, filepath.Join("C:", "ProgramData", "Windhawk", "Symbols"), p.SymbolsDir())
}
