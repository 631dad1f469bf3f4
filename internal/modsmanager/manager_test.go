package modsmanager

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/ramensoftware/windhawk-go/api"
	"github.com/ramensoftware/windhawk-go/internal/callstack"
	"github.com/ramensoftware/windhawk-go/internal/logging"
	"github.com/ramensoftware/windhawk-go/internal/modapi"
	"github.com/ramensoftware/windhawk-go/internal/pattern"
)

// nullStore is a no-op settings.Store, sufficient for LoadedMods that never
// touch storage in these tests.
type nullStore struct{}

func (nullStore) GetInt(section, name string) (int32, bool, error)     { return 0, false, nil }
func (nullStore) SetInt(section, name string, value int32) error       { return nil }
func (nullStore) GetString(section, name string) (string, bool, error) { return "", false, nil }
func (nullStore) SetString(section, name, value string) error          { return nil }
func (nullStore) GetBinary(section, name string) ([]byte, bool, error) { return nil, false, nil }
func (nullStore) SetBinary(section, name string, value []byte) error   { return nil }
func (nullStore) Remove(section, name string) error                    { return nil }
func (nullStore) RemoveSection(section string) error                   { return nil }
func (nullStore) EnumIntValues(section string) ([]string, error)       { return nil, nil }
func (nullStore) EnumStringValues(section string) ([]string, error)    { return nil, nil }

type fakeEngine struct{ applyCount int }

func (e *fakeEngine) QueueHook(identity api.HookIdentity, target, detour uintptr, original *uintptr) error {
	return nil
}
func (e *fakeEngine) QueueUnhook(identity api.HookIdentity, target uintptr) error { return nil }
func (e *fakeEngine) ApplyQueued(identity api.HookIdentity) error {
	e.applyCount++
	return nil
}

type fakeLoader struct {
	nextIdentity uintptr
	loadCalls    []string
	unloadCalls  []string
}

func (l *fakeLoader) Load(d Descriptor) (*modapi.LoadedMod, error) {
	l.nextIdentity++
	l.loadCalls = append(l.loadCalls, d.Name)
	logger := logging.New(logrus.New(), logging.Silent)
	mod := modapi.NewLoadedMod(d.Name, api.HookIdentity(l.nextIdentity), &fakeEngine{}, nullStore{}, nullStore{}, logger)
	mod.SetModule(0x10000*l.nextIdentity, 0x1000)
	return mod, nil
}
func (l *fakeLoader) CallInit(mod *modapi.LoadedMod) error         { return nil }
func (l *fakeLoader) CallAfterInit(mod *modapi.LoadedMod) error    { return nil }
func (l *fakeLoader) CallBeforeUninit(mod *modapi.LoadedMod) error { return nil }
func (l *fakeLoader) CallUninit(mod *modapi.LoadedMod) error       { return nil }
func (l *fakeLoader) Unload(mod *modapi.LoadedMod) error {
	l.unloadCalls = append(l.unloadCalls, mod.Name())
	return nil
}

type fakeScanner struct{}

func (fakeScanner) AnyThreadInRegions(regions []callstack.Region) (bool, error) { return false, nil }

func descFor(name string) Descriptor {
	return Descriptor{Name: name, Patterns: Patterns{Include: pattern.Compile("*")}}
}

func newTestManager(engine *fakeEngine, loader *fakeLoader) *Manager {
	logger := logging.New(logrus.New(), logging.Silent)
	return New(loader, engine, fakeScanner{}, logger, api.ArchAMD64, `C:\Windows\explorer.exe`, false)
}

func TestStartLoadsEligibleMods(t *testing.T) {
	engine := &fakeEngine{}
	loader := &fakeLoader{}
	mgr := newTestManager(engine, loader)

	require.NoError(t, mgr.Start([]Descriptor{descFor("mod-a"), descFor("mod-b")}))
	require.ElementsMatch(t, []string{"mod-a", "mod-b"}, loader.loadCalls)
	require.Len(t, mgr.Mods(), 2)
	require.Equal(t, 1, engine.applyCount)

	for _, mod := range mgr.Mods() {
		require.Equal(t, api.StateAfterInitDone, mod.State())
	}
}

func TestReloadUnloadsIneligibleAndLoadsNew(t *testing.T) {
	engine := &fakeEngine{}
	loader := &fakeLoader{}
	mgr := newTestManager(engine, loader)
	require.NoError(t, mgr.Start([]Descriptor{descFor("mod-a")}))

	require.NoError(t, mgr.Reload([]Descriptor{descFor("mod-b")}))

	require.Equal(t, []string{"mod-a"}, loader.unloadCalls)
	require.Len(t, mgr.Mods(), 1)
	require.Equal(t, "mod-b", mgr.Mods()[0].Name())
}

func TestShutdownUnloadsEverything(t *testing.T) {
	engine := &fakeEngine{}
	loader := &fakeLoader{}
	mgr := newTestManager(engine, loader)
	require.NoError(t, mgr.Start([]Descriptor{descFor("mod-a"), descFor("mod-b")}))

	require.NoError(t, mgr.Shutdown())
	require.Len(t, mgr.Mods(), 0)
	require.ElementsMatch(t, []string{"mod-a", "mod-b"}, loader.unloadCalls)
}
