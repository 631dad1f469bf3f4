package session

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/ramensoftware/windhawk-go/api"
	"github.com/ramensoftware/windhawk-go/internal/logging"
	"github.com/ramensoftware/windhawk-go/internal/modapi"
	"github.com/ramensoftware/windhawk-go/internal/modsmanager"
	"github.com/ramensoftware/windhawk-go/internal/pattern"
)

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

type fakeEngine struct{}

func (fakeEngine) QueueHook(identity api.HookIdentity, target, detour uintptr, original *uintptr) error {
	return nil
}
func (fakeEngine) QueueUnhook(identity api.HookIdentity, target uintptr) error { return nil }
func (fakeEngine) ApplyQueued(identity api.HookIdentity) error                 { return nil }

type fakeLoader struct{ next uintptr }

func (l *fakeLoader) Load(d modsmanager.Descriptor) (*modapi.LoadedMod, error) {
	l.next++
	logger := logging.New(logrus.New(), logging.Silent)
	return modapi.NewLoadedMod(d.Name, api.HookIdentity(l.next), fakeEngine{}, nullStore{}, nullStore{}, logger), nil
}
func (l *fakeLoader) CallInit(mod *modapi.LoadedMod) error         { return nil }
func (l *fakeLoader) CallAfterInit(mod *modapi.LoadedMod) error    { return nil }
func (l *fakeLoader) CallBeforeUninit(mod *modapi.LoadedMod) error { return nil }
func (l *fakeLoader) CallUninit(mod *modapi.LoadedMod) error       { return nil }
func (l *fakeLoader) Unload(mod *modapi.LoadedMod) error           { return nil }

type fakeInterceptor struct{ started, stopped int }

func (f *fakeInterceptor) Start() error { f.started++; return nil }
func (f *fakeInterceptor) Stop() error  { f.stopped++; return nil }

type fakeConfigChange struct {
	fired     chan struct{}
	rearmedCh chan struct{}
	rearmed   int
	closed    int
}

func (f *fakeConfigChange) Handle() <-chan struct{} { return f.fired }
func (f *fakeConfigChange) ContinueMonitoring() error {
	f.rearmed++
	if f.rearmedCh != nil {
		f.rearmedCh <- struct{}{}
	}
	return nil
}
func (f *fakeConfigChange) CanMonitorAcrossThreads() bool { return true }
func (f *fakeConfigChange) Close() error                  { f.closed++; return nil }

func descFor(name string) modsmanager.Descriptor {
	return modsmanager.Descriptor{Name: name, Patterns: modsmanager.Patterns{Include: pattern.Compile("*")}}
}

func swapCollaborators(t *testing.T) {
	t.Helper()
	prevSem, prevWait := acquireProcessSemaphoreFn, newOrchWaiterFn
	acquireProcessSemaphoreFn = func(selfPID uint32) (func() error, error) {
		return func() error { return nil }, nil
	}
	newOrchWaiterFn = func(handle uintptr) (OrchWaiter, error) {
		return nil, api.ErrUnsupportedPlatform // unused: tests never set OrchProcessHandle
	}
	t.Cleanup(func() {
		acquireProcessSemaphoreFn, newOrchWaiterFn = prevSem, prevWait
	})
}

func baseConfig(descriptors func() ([]modsmanager.Descriptor, error)) Config {
	return Config{
		SelfPID:     4242,
		HostArch:    api.ArchAMD64,
		ProcessPath: `C:\Windows\explorer.exe`,
		ModLoader:   &fakeLoader{},
		HookEngine:  fakeEngine{},
		Descriptors: descriptors,
		Logger:      logging.New(logrus.New(), logging.Silent),
	}
}

func TestInjectInitRejectsSecondSessionInSameProcess(t *testing.T) {
	swapCollaborators(t)
	cfg := baseConfig(func() ([]modsmanager.Descriptor, error) { return nil, nil })

	s1, err := InjectInit(cfg)
	require.NoError(t, err)
	defer s1.Stop()

	_, err = InjectInit(cfg)
	require.ErrorIs(t, err, api.ErrSessionAlreadyActive)
}

func TestInjectInitAllowsNewSessionAfterTeardown(t *testing.T) {
	swapCollaborators(t)
	cfg := baseConfig(func() ([]modsmanager.Descriptor, error) { return nil, nil })

	s1, err := InjectInit(cfg)
	require.NoError(t, err)
	s1.Stop()

	s2, err := InjectInit(cfg)
	require.NoError(t, err)
	s2.Stop()
}

type orderEngine struct {
	fakeEngine
	interceptor    *fakeInterceptor
	startedAtApply int
}

func (e *orderEngine) ApplyQueued(identity api.HookIdentity) error {
	e.startedAtApply = e.interceptor.started
	return nil
}

func TestStartsInterceptorBeforeApplyingHooks(t *testing.T) {
	swapCollaborators(t)
	interceptor := &fakeInterceptor{}
	eng := &orderEngine{interceptor: interceptor}
	cfg := baseConfig(func() ([]modsmanager.Descriptor, error) { return []modsmanager.Descriptor{descFor("mod-a")}, nil })
	cfg.Interceptor = interceptor
	cfg.HookEngine = eng

	s, err := InjectInit(cfg)
	require.NoError(t, err)
	defer s.Stop()

	require.Equal(t, 1, interceptor.started)
	require.Equal(t, 1, eng.startedAtApply)
	require.Len(t, s.mgr.Mods(), 1)
}

func TestConfigChangeTriggersReload(t *testing.T) {
	swapCollaborators(t)

	calls := 0
	descriptors := func() ([]modsmanager.Descriptor, error) {
		calls++
		if calls >= 2 {
			return []modsmanager.Descriptor{descFor("mod-b")}, nil
		}
		return []modsmanager.Descriptor{descFor("mod-a")}, nil
	}

	change := &fakeConfigChange{fired: make(chan struct{}, 1), rearmedCh: make(chan struct{}, 1)}
	cfg := baseConfig(descriptors)
	cfg.ConfigChange = change

	s, err := InjectInit(cfg)
	require.NoError(t, err)
	defer s.Stop()

	change.fired <- struct{}{}

	// ContinueMonitoring only runs after Reload has fully returned, so
	// waiting on it is a safe synchronization point before inspecting
	// mgr.Mods() below.
	select {
	case <-change.rearmedCh:
	case <-time.After(2 * time.Second):
		t.Fatal("reload was never triggered by the config-change signal")
	}

	require.Equal(t, 1, change.rearmed)
	require.Len(t, s.mgr.Mods(), 1)
	require.Equal(t, "mod-b", s.mgr.Mods()[0].Name())
}

func TestStopTearsDownInterceptorAndConfigChange(t *testing.T) {
	swapCollaborators(t)
	interceptor := &fakeInterceptor{}
	change := &fakeConfigChange{fired: make(chan struct{}, 1)}
	cfg := baseConfig(func() ([]modsmanager.Descriptor, error) { return nil, nil })
	cfg.Interceptor = interceptor
	cfg.ConfigChange = change

	s, err := InjectInit(cfg)
	require.NoError(t, err)
	s.Stop()

	require.Equal(t, 1, interceptor.stopped)
	require.Equal(t, 1, change.closed)
	_, active := ManagerPID()
	require.False(t, active)
}
