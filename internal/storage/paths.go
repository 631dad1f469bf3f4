// Package storage implements the storage manager (C2): it resolves the
// on-disk layout described in spec.md §3 from engine.ini, exposes the
// portability flag, and owns change-notification primitives for the Mods
// directory/registry subkey.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

// EngineConfig is the parsed content of engine.ini (spec.md §6), read
// exactly once per process.
type EngineConfig struct {
	AppDataPath string
	Portable    bool
	RegistryKey string // e.g. `HKEY_LOCAL_MACHINE\SOFTWARE\Windhawk`; only meaningful if !Portable
}

// LoadEngineConfig locates and parses engine.ini next to the engine binary
// at engineDir (spec.md §4.2 step 1-2).
func LoadEngineConfig(engineDir string) (EngineConfig, error) {
	iniPath := filepath.Join(engineDir, "engine.ini")
	f, err := ini.Load(iniPath)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("%w: loading %s: %v", errConfig, iniPath, err)
	}
	sec := f.Section("Storage")
	appData := sec.Key("AppDataPath").String()
	if appData == "" {
		return EngineConfig{}, fmt.Errorf("%w: %s missing [Storage] AppDataPath", errConfig, iniPath)
	}
	portable := sec.Key("Portable").MustInt(0) != 0
	return EngineConfig{
		AppDataPath: os.Expand(appData, os.Getenv),
		Portable:    portable,
		RegistryKey: sec.Key("RegistryKey").String(),
	}, nil
}

// Paths is the frozen bundle of spec.md §3, computed once from engine.ini.
type Paths struct {
	EngineRoot  string // directory holding engine.ini and {32,64,arm64}/windhawk.dll
	AppData     string // normalized AppDataPath
	Portable    bool
	RegistryKey string
}

// New resolves Paths from engineDir, normalizing AppDataPath per spec.md
// §4.2 step 3: WOW64 ProgramFiles folding and %ProgramData% substitution
// when the environment is stripped (e.g. running as csrss.exe).
func New(engineDir string) (*Paths, error) {
	cfg, err := LoadEngineConfig(engineDir)
	if err != nil {
		return nil, err
	}
	normalized, err := normalizeAppData(cfg.AppDataPath)
	if err != nil {
		return nil, err
	}
	p := &Paths{
		EngineRoot:  engineDir,
		AppData:     normalized,
		Portable:    cfg.Portable,
		RegistryKey: cfg.RegistryKey,
	}
	if err := os.MkdirAll(p.AppData, 0o755); err != nil && !os.IsExist(err) {
		return nil, fmt.Errorf("%w: creating app data dir %s: %v", errConfig, p.AppData, err)
	}
	return p, nil
}

// EngineDLL returns engine_root/{32,64,arm64}/windhawk.dll for arch.
func (p *Paths) EngineDLL(archDir string) string {
	return filepath.Join(p.EngineRoot, archDir, "windhawk.dll")
}

// ModDLL returns app_data/Mods/{32,64,arm64}/<mod>.dll.
func (p *Paths) ModDLL(archDir, modName string) string {
	return filepath.Join(p.ModsDir(archDir), modName+".dll")
}

// ModsDir returns app_data/Mods/{32,64,arm64}.
func (p *Paths) ModsDir(archDir string) string {
	return filepath.Join(p.AppData, "Mods", archDir)
}

// SymbolsDir returns the writable symbol download cache directory.
func (p *Paths) SymbolsDir() string {
	return filepath.Join(p.AppData, "Symbols")
}

// ModWritableINI returns app_data/ModsWritable/<mod>.ini, used in portable
// mode for the mod's private writable config/symbol cache.
func (p *Paths) ModWritableINI(modName string) string {
	return filepath.Join(p.AppData, "ModsWritable", modName+".ini")
}

// ModStatusFile and ModTaskFile return the transient single-line files held
// open for the duration of the mod's lifetime (spec.md §3).
func (p *Paths) ModStatusFile(instanceID string) string {
	return filepath.Join(p.AppData, "ModsWritable", "mod-status", instanceID)
}

func (p *Paths) ModTaskFile(instanceID string) string {
	return filepath.Join(p.AppData, "ModsWritable", "mod-task", instanceID)
}

// ModStoragePath returns the per-mod scratch directory, created lazily by
// the caller (spec.md §4.9, get_mod_storage_path).
func (p *Paths) ModStoragePath(modName string) string {
	return filepath.Join(p.AppData, "ModsWritable", "mod-storage", modName)
}

// SettingsINIPath returns the portable-mode settings file path.
func (p *Paths) SettingsINIPath() string {
	return filepath.Join(p.AppData, "settings.ini")
}

var errConfig = fmt.Errorf("storage: configuration error")

// normalizeAppData applies 32->64 ProgramFiles folding to every path,
// whatever the bitness of the calling process, and substitutes %ProgramData% manually when the environment variable is
// unset, falling back through SHGetKnownFolderPath-equivalent resolution,
// then %SystemDrive%\ProgramData, then a literal default (spec.md §4.2).
func normalizeAppData(raw string) (string, error) {
	path := raw
	if pd := os.Getenv("ProgramData"); pd != "" {
		path = strings.ReplaceAll(path, "%ProgramData%", pd)
	} else {
		path = strings.ReplaceAll(path, "%ProgramData%", programDataFallback())
	}
	path = foldProgramFilesX86(path)
	return filepath.Clean(path), nil
}

// programDataFallback resolves %ProgramData% when the environment is
// stripped (spec.md §4.2: "substituting %ProgramData% manually when the
// environment variable is missing (e.g. csrss.exe)"). The platform-specific
// known-folder lookup lives in knownfolder_windows.go; everywhere else this
// falls straight through to the literal default.
func programDataFallback() string {
	if v := knownFolderProgramData(); v != "" {
		return v
	}
	if sd := os.Getenv("SystemDrive"); sd != "" {
		return sd + `\ProgramData`
	}
	return `C:\ProgramData`
}

// foldProgramFilesX86 maps "Program Files (x86)" to "Program Files" so a
// WOW64 (32-bit) orchestrator process, which sees %ProgramFiles% pointing at
// the x86 tree, resolves to the same AppDataPath as its 64-bit counterpart
// (spec.md §4.2 step 3a).
func foldProgramFilesX86(path string) string {
	const x86Suffix = " (x86)"
	idx := strings.Index(strings.ToLower(path), strings.ToLower(`program files`+x86Suffix))
	if idx < 0 {
		return path
	}
	return path[:idx+len("program files")] + path[idx+len("program files"+x86Suffix):]
}
