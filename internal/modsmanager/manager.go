package modsmanager

import (
	"fmt"
	"sync"
	"time"

	"github.com/ramensoftware/windhawk-go/api"
	"github.com/ramensoftware/windhawk-go/internal/callstack"
	"github.com/ramensoftware/windhawk-go/internal/logging"
	"github.com/ramensoftware/windhawk-go/internal/modapi"
)

// barrierPoll/barrierTimeout are the literal durations named in spec.md
// §4.10 "Reload": ThreadsCallStackWaitForRegions(regions, 200ms poll,
// 400ms timeout).
const (
	barrierPoll    = 200 * time.Millisecond
	barrierTimeout = 400 * time.Millisecond
)

// ModLoader is the collaborator that actually loads a mod's DLL and calls
// into its exported lifecycle functions (Wh_ModInit, Wh_ModAfterInit,
// Wh_ModBeforeUninit, Wh_ModUninit) — the mod's own code, out of scope for
// this package (spec.md §5 Non-goals). Manager drives LoadedMod's own
// state machine around each call.
type ModLoader interface {
	// Load loads the mod's DLL (and any per-process shim) and returns a
	// LoadedMod in state Created, bound to this mod's identity.
	Load(d Descriptor) (*modapi.LoadedMod, error)
	CallInit(mod *modapi.LoadedMod) error
	CallAfterInit(mod *modapi.LoadedMod) error
	CallBeforeUninit(mod *modapi.LoadedMod) error
	CallUninit(mod *modapi.LoadedMod) error
	// Unload frees the mod's DLL after Destroy.
	Unload(mod *modapi.LoadedMod) error
}

// Manager owns every mod currently loaded into this process.
type Manager struct {
	mu      sync.Mutex
	loader  ModLoader
	engine  modapi.HookEngine
	scanner callstack.Scanner
	logger  *logging.Logger

	hostArch                 api.Architecture
	processPath              string
	skipCriticalProcessCheck bool

	loaded map[string]*modapi.LoadedMod
}

// New constructs an empty Manager. Call Start to load the initial set.
func New(loader ModLoader, engine modapi.HookEngine, scanner callstack.Scanner, logger *logging.Logger, hostArch api.Architecture, processPath string, skipCriticalProcessCheck bool) *Manager {
	return &Manager{
		loader:                   loader,
		engine:                   engine,
		scanner:                  scanner,
		logger:                   logger,
		hostArch:                 hostArch,
		processPath:              processPath,
		skipCriticalProcessCheck: skipCriticalProcessCheck,
		loaded:                   map[string]*modapi.LoadedMod{},
	}
}

// Start loads every descriptor whose ShouldLoadInRunningProcess is true:
// Load -> Initialize for each, then AfterInit for each, then one batched
// hook-apply (spec.md §4.10 constructor).
func (mgr *Manager) Start(descs []Descriptor) error {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	var started []*modapi.LoadedMod
	for _, d := range descs {
		if !ShouldLoadInRunningProcess(d, mgr.hostArch, mgr.processPath, mgr.skipCriticalProcessCheck) {
			continue
		}
		mod, err := mgr.loadAndInit(d)
		if err != nil {
			mgr.logger.Errorf("mods-manager", "loading mod %q: %v", d.Name, err)
			continue
		}
		mgr.loaded[d.Name] = mod
		started = append(started, mod)
	}

	for _, mod := range started {
		if err := mgr.loader.CallAfterInit(mod); err != nil {
			mgr.logger.Errorf("mods-manager", "mod %q Wh_ModAfterInit: %v", mod.Name(), err)
			continue
		}
		if err := mod.AfterInit(); err != nil {
			mgr.logger.Errorf("mods-manager", "mod %q after-init transition: %v", mod.Name(), err)
		}
	}

	return mgr.engine.ApplyQueued(modapi.AllIdentities)
}

// loadAndInit runs Load then Wh_ModInit then the Created->Initialized
// transition, rolling back on any failure.
func (mgr *Manager) loadAndInit(d Descriptor) (*modapi.LoadedMod, error) {
	mod, err := mgr.loader.Load(d)
	if err != nil {
		return nil, fmt.Errorf("modsmanager: load: %w", err)
	}
	if err := mgr.loader.CallInit(mod); err != nil {
		mgr.loader.Unload(mod)
		return nil, fmt.Errorf("modsmanager: Wh_ModInit: %w", err)
	}
	if err := mod.Init(); err != nil {
		mgr.loader.Unload(mod)
		return nil, fmt.Errorf("modsmanager: init transition: %w", err)
	}
	return mod, nil
}

// AfterInit exposes the after-init step independently for a session's
// InjectInit sequence (spec.md §4.11 step 2), distinct from the one Start
// already performs for the initial load.
func (mgr *Manager) AfterInit() error {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	for _, mod := range mgr.loaded {
		if mod.State() != api.StateInitialized {
			continue
		}
		if err := mgr.loader.CallAfterInit(mod); err != nil {
			mgr.logger.Errorf("mods-manager", "mod %q Wh_ModAfterInit: %v", mod.Name(), err)
			continue
		}
		mod.AfterInit()
	}
	return nil
}

// Mods returns a snapshot of every currently loaded mod.
func (mgr *Manager) Mods() []*modapi.LoadedMod {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	out := make([]*modapi.LoadedMod, 0, len(mgr.loaded))
	for _, mod := range mgr.loaded {
		out = append(out, mod)
	}
	return out
}

// Shutdown tears down every loaded mod: BeforeUninit, a global hook-apply,
// then Uninitialize+barrier+Destroy for all of them (spec.md §4.11 step 5,
// reusing the same teardown sequence as a reload's "transitioning out").
func (mgr *Manager) Shutdown() error {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	var all []string
	for name := range mgr.loaded {
		all = append(all, name)
	}
	return mgr.unloadLocked(all)
}
