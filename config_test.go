package windhawk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ramensoftware/windhawk-go/api"
)

func writeEngineINI(t *testing.T, dir, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "engine.ini"), []byte(body), 0o644))
}

func TestLoadConfigPortableDefaults(t *testing.T) {
	dir := t.TempDir()
	writeEngineINI(t, dir, "[Storage]\nAppDataPath = "+filepath.Join(dir, "data")+"\nPortable = 1\n")

	cfg, err := LoadConfig(dir, api.ArchAMD64)
	require.NoError(t, err)
	require.True(t, cfg.Paths.Portable)
	require.True(t, cfg.Settings.Include.Empty())
	require.False(t, cfg.Settings.SkipCriticalProcesses)
}

func TestLoadConfigPortableReadsEngineSettings(t *testing.T) {
	dir := t.TempDir()
	appData := filepath.Join(dir, "data")
	writeEngineINI(t, dir, "[Storage]\nAppDataPath = "+appData+"\nPortable = 1\n")
	require.NoError(t, os.MkdirAll(appData, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(appData, "settings.ini"),
		[]byte("[Settings]\nInclude = explorer.exe\nSkipCriticalProcesses = 1\nLoggingVerbosity = 2\n"), 0o644))

	cfg, err := LoadConfig(dir, api.ArchAMD64)
	require.NoError(t, err)
	require.True(t, cfg.Settings.Include.Matches("explorer.exe"))
	require.True(t, cfg.Settings.SkipCriticalProcesses)
}

func TestModsConfigDirIsAppDataMods(t *testing.T) {
	dir := t.TempDir()
	appData := filepath.Join(dir, "data")
	writeEngineINI(t, dir, "[Storage]\nAppDataPath = "+appData+"\nPortable = 1\n")

	cfg, err := LoadConfig(dir, api.ArchAMD64)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(appData, "Mods"), modsConfigDir(cfg.Paths))
}

func TestModDescriptorsSkipsUnreadableMod(t *testing.T) {
	dir := t.TempDir()
	appData := filepath.Join(dir, "data")
	writeEngineINI(t, dir, "[Storage]\nAppDataPath = "+appData+"\nPortable = 1\n")
	require.NoError(t, os.MkdirAll(filepath.Join(appData, "Mods"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(appData, "Mods", "good.ini"),
		[]byte("[Mod]\nArchitecture = amd64\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(appData, "Mods", "bad.ini"),
		[]byte("[Mod]\nDisabled = notanumber\n"), 0o644))

	cfg, err := LoadConfig(dir, api.ArchAMD64)
	require.NoError(t, err)

	descs, err := cfg.modDescriptors()
	require.NoError(t, err)
	require.Len(t, descs, 1)
	require.Equal(t, "good", descs[0].Name)
}
