// Package windhawk is the composition root: it wires the storage manager
// (C2), session-private namespace (C3), all-processes scanner (C6),
// new-process interceptor (C7) and customization session (C11) together
// into one Engine, matching the top-level layout of the teacher's own
// cmd/wazero + root config.go/engine.go/cache.go split.
package windhawk

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/ramensoftware/windhawk-go/api"
	"github.com/ramensoftware/windhawk-go/internal/logging"
	"github.com/ramensoftware/windhawk-go/internal/modsmanager"
	"github.com/ramensoftware/windhawk-go/internal/pattern"
	"github.com/ramensoftware/windhawk-go/internal/procscan"
	"github.com/ramensoftware/windhawk-go/internal/settings"
	"github.com/ramensoftware/windhawk-go/internal/storage"
)

// engineSettingsSection is the section the engine-wide Include/Exclude/
// ThreadAttachExempt/SkipCriticalProcesses/LoggingVerbosity keys live under in
// the top-level settings store (spec.md §4.6 example: "Engine settings:
// Include = explorer.exe, Exclude ="). The original source keeps these
// alongside the rest of the UI-facing configuration rather than in their
// own dedicated section; this module follows suit.
const engineSettingsSection = "Settings"

// EngineSettings is the engine-wide configuration read once at startup from
// the top-level settings store (portable app_data/settings.ini, or the
// registry root named by engine.ini's RegistryKey), as opposed to
// engine.ini's own [Storage] section (internal/storage.EngineConfig).
type EngineSettings struct {
	Include            pattern.Set
	Exclude            pattern.Set
	ThreadAttachExempt pattern.Set

	SkipCriticalProcesses bool
	LogVerbosity          logging.Verbosity
}

// Config bundles everything needed to construct an Engine: the resolved
// storage paths, the engine-wide settings read from the matching store, and
// the logger every collaborator shares.
type Config struct {
	Paths    *storage.Paths
	Settings EngineSettings
	Logger   *logging.Logger

	// HostArch is this engine binary's own architecture (spec.md §3
	// Architecture), used for mod Architecture-tag filtering and to pick
	// which engine_root/{32,64,arm64} subtree its own DLL lives in.
	HostArch api.Architecture
}

// LoadConfig resolves engine.ini and the engine-wide settings store rooted
// at engineDir (the directory holding engine.ini and the per-arch engine
// DLL subtrees), per spec.md §4.2 and §6.
func LoadConfig(engineDir string, hostArch api.Architecture) (*Config, error) {
	paths, err := storage.New(engineDir)
	if err != nil {
		return nil, fmt.Errorf("windhawk: resolving storage paths: %w", err)
	}

	store, err := engineSettingsStore(paths)
	if err != nil {
		return nil, fmt.Errorf("windhawk: opening engine settings store: %w", err)
	}
	settingsCfg, err := loadEngineSettings(store)
	if err != nil {
		return nil, fmt.Errorf("windhawk: reading engine settings: %w", err)
	}

	out := logrus.New()
	logger := logging.New(out, settingsCfg.LogVerbosity)

	return &Config{
		Paths:    paths,
		Settings: settingsCfg,
		Logger:   logger,
		HostArch: hostArch,
	}, nil
}

// engineSettingsStore opens the top-level settings store matching Paths'
// portability mode: app_data/settings.ini in portable mode, or the registry
// root engine.ini's RegistryKey names otherwise (spec.md §3 "Settings-path
// variant").
func engineSettingsStore(p *storage.Paths) (settings.Store, error) {
	if p.Portable {
		return settings.NewINIStore(p.SettingsINIPath()), nil
	}
	root, base, err := settings.ParseRegistryKey(p.RegistryKey)
	if err != nil {
		return nil, err
	}
	return settings.NewRegistryStore(root, base), nil
}

// loadEngineSettings reads the engine-wide keys out of store's Settings
// section. Every key is optional; an absent key compiles to the
// zero-value/empty pattern, matching GetPrivateProfileString's own
// tolerance of a missing value (spec.md §4.1).
func loadEngineSettings(store settings.Store) (EngineSettings, error) {
	include, err := getString(store, "Include")
	if err != nil {
		return EngineSettings{}, err
	}
	exclude, err := getString(store, "Exclude")
	if err != nil {
		return EngineSettings{}, err
	}
	exempt, err := getString(store, "ThreadAttachExempt")
	if err != nil {
		return EngineSettings{}, err
	}
	skipCritical, err := getInt(store, "SkipCriticalProcesses")
	if err != nil {
		return EngineSettings{}, err
	}
	verbosity, err := getInt(store, "LoggingVerbosity")
	if err != nil {
		return EngineSettings{}, err
	}

	return EngineSettings{
		Include:               pattern.Compile(include),
		Exclude:               pattern.Compile(exclude),
		ThreadAttachExempt:    pattern.Compile(exempt),
		SkipCriticalProcesses: skipCritical != 0,
		LogVerbosity:          logging.Verbosity(verbosity),
	}, nil
}

func getString(store settings.Store, name string) (string, error) {
	v, ok, err := store.GetString(engineSettingsSection, name)
	if err != nil || !ok {
		return "", err
	}
	return v, nil
}

func getInt(store settings.Store, name string) (int32, error) {
	v, ok, err := store.GetInt(engineSettingsSection, name)
	if err != nil || !ok {
		return 0, err
	}
	return v, nil
}

// scannerOptions builds the procscan.Options the all-processes scanner
// needs from this config, for a session started by orchPID.
func (c *Config) scannerOptions(orchPID uint32, skipCritical bool) procscan.Options {
	return procscan.Options{
		SkipCriticalProcesses: skipCritical,
		Patterns: procscan.Patterns{
			Include:            c.Settings.Include,
			Exclude:            c.Settings.Exclude,
			ThreadAttachExempt: c.Settings.ThreadAttachExempt,
		},
		OrchPID: orchPID,
	}
}

// configChangeNotification opens the ModConfigChangeNotification matching
// Paths' portability mode, watching the Mods directory/subkey itself
// (spec.md §4.2), distinct from engineSettingsStore's top-level settings
// tree.
func (c *Config) configChangeNotification() (storage.ModConfigChangeNotification, error) {
	return storage.NewModConfigChangeNotification(c.Paths)
}

// modsConfigDir is app_data/Mods, the parent of both the per-mod *.ini
// files (storage.EnumModNames) and the per-arch mod DLL subdirectories
// (storage.Paths.ModsDir) — the directory the portable-mode watcher is
// armed against (spec.md §4.2).
func modsConfigDir(p *storage.Paths) string {
	return filepath.Join(p.AppData, "Mods")
}

// modDescriptors builds every modsmanager.Descriptor currently configured,
// reading each mod's own settings out of its per-mod store (spec.md §4.10
// constructor, §4.2 EnumMods). Disabled mods and parse failures are
// included/skipped the same way the original engine's per-mod iteration
// tolerates one bad mod without aborting the whole reload.
func (c *Config) modDescriptors() ([]modsmanager.Descriptor, error) {
	names, err := storage.EnumModNames(c.Paths)
	if err != nil {
		return nil, fmt.Errorf("windhawk: enumerating mods: %w", err)
	}

	descs := make([]modsmanager.Descriptor, 0, len(names))
	for _, name := range names {
		d, err := c.modDescriptor(name)
		if err != nil {
			c.Logger.Errorf("config", "reading mod %q configuration: %v", name, err)
			continue
		}
		descs = append(descs, d)
	}
	return descs, nil
}

// modDescriptor reads one mod's section-"Mod" settings and compiles its
// pattern sets (spec.md §4.10's should_load_in_running_process inputs).
func (c *Config) modDescriptor(name string) (modsmanager.Descriptor, error) {
	store, err := storage.ModSettingsStore(c.Paths, name)
	if err != nil {
		return modsmanager.Descriptor{}, err
	}

	const section = "Mod"
	disabled, _, err := store.GetInt(section, "Disabled")
	if err != nil {
		return modsmanager.Descriptor{}, err
	}
	arch, _, err := store.GetString(section, "Architecture")
	if err != nil {
		return modsmanager.Descriptor{}, err
	}
	include, _, err := store.GetString(section, "Include")
	if err != nil {
		return modsmanager.Descriptor{}, err
	}
	includeCustom, _, err := store.GetString(section, "IncludeCustom")
	if err != nil {
		return modsmanager.Descriptor{}, err
	}
	exclude, _, err := store.GetString(section, "Exclude")
	if err != nil {
		return modsmanager.Descriptor{}, err
	}
	excludeCustom, _, err := store.GetString(section, "ExcludeCustom")
	if err != nil {
		return modsmanager.Descriptor{}, err
	}
	customOnly, _, err := store.GetInt(section, "IncludeExcludeCustomOnly")
	if err != nil {
		return modsmanager.Descriptor{}, err
	}

	return modsmanager.Descriptor{
		Name:         name,
		Disabled:     disabled != 0,
		Architecture: arch,
		Patterns: modsmanager.Patterns{
			Include:                  pattern.Compile(include),
			IncludeCustom:            pattern.Compile(includeCustom),
			Exclude:                  pattern.Compile(exclude),
			ExcludeCustom:            pattern.Compile(excludeCustom),
			IncludeExcludeCustomOnly: customOnly != 0,
		},
		Path: c.Paths.ModDLL(c.HostArch.Dir(), name),
	}, nil
}
