// Package modapi implements the mod runtime (C9, spec.md §4.9): the API
// surface mod code calls into, routed through an identity token that scopes
// queued hook operations to the calling mod, plus the LoadedMod lifecycle
// state machine (spec.md §3).
package modapi

import (
	"fmt"
	"sync"

	"github.com/ramensoftware/windhawk-go/api"
	"github.com/ramensoftware/windhawk-go/internal/logging"
	"github.com/ramensoftware/windhawk-go/internal/settings"
)

// Config describes one mod as read from the mods manager's enumeration.
type Config struct {
	Name          string
	Disabled      bool
	Architecture  string // pattern tag, empty = any
	Include       string
	IncludeCustom string
	Exclude       string
	ExcludeCustom string
}

// LoadedMod owns one mod's lifecycle inside the running process (spec.md
// §3: created -> initialized -> afterInitDone -> beforeUninitCalled ->
// uninitialized -> destroyed) and is the identity every mod-API call is
// routed through.
type LoadedMod struct {
	mu            sync.Mutex
	name          string
	identity      api.HookIdentity
	state         api.LifecycleState
	settingsStore settings.Store
	storage       settings.Store
	logger        *logging.Logger
	engine        HookEngine
	queue         []hookOp
	dllPath       string
	dllBase       uintptr
	codeSize      uintptr
}

// NewLoadedMod constructs a mod in state Created. identity must be unique
// per loaded mod for the lifetime of the process.
func NewLoadedMod(name string, identity api.HookIdentity, engine HookEngine, settingsStore, storage settings.Store, logger *logging.Logger) *LoadedMod {
	return &LoadedMod{
		name:          name,
		identity:      identity,
		state:         api.StateCreated,
		settingsStore: settingsStore,
		storage:       storage,
		logger:        logger,
		engine:        engine,
	}
}

// Name is the mod's identifier, used as a path component under
// ModsWritable/<mod>/... and in log lines.
func (m *LoadedMod) Name() string { return m.name }

// Identity is the token queued hook operations are scoped to.
func (m *LoadedMod) Identity() api.HookIdentity { return m.identity }

// State returns the mod's current lifecycle state.
func (m *LoadedMod) State() api.LifecycleState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SetModule records the mod DLL's load address and image size, used by the
// code-range barrier at unload time (spec.md §4.10 "Reload").
func (m *LoadedMod) SetModule(base, size uintptr) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dllBase, m.codeSize = base, size
}

// CodeRange returns [base, base+size) for the thread-call-stack barrier.
func (m *LoadedMod) CodeRange() (uintptr, uintptr) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dllBase, m.dllBase + m.codeSize
}

// transition validates and applies a lifecycle move, matching spec.md §3's
// strict ordering; Init/AfterInit/BeforeUninit/Uninit below all go through
// it.
func (m *LoadedMod) transition(from, to api.LifecycleState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != from {
		return fmt.Errorf("modapi: mod %q: %w (in %s, expected %s)", m.name, api.ErrModLifecycle, m.state, from)
	}
	m.state = to
	return nil
}

// Init marks the mod Initialized. Callers invoke Wh_ModInit before this.
func (m *LoadedMod) Init() error { return m.transition(api.StateCreated, api.StateInitialized) }

// AfterInit marks the mod AfterInitDone. Callers invoke Wh_ModAfterInit before this.
func (m *LoadedMod) AfterInit() error {
	return m.transition(api.StateInitialized, api.StateAfterInitDone)
}

// BeforeUninit marks the mod BeforeUninitCalled. Callers invoke
// Wh_ModBeforeUninit before this. Hook registration is rejected from this
// point on (spec.md §4.9: "Rejected after before_uninit starts").
func (m *LoadedMod) BeforeUninit() error {
	return m.transition(api.StateAfterInitDone, api.StateBeforeUninitCalled)
}

// Uninit marks the mod Uninitialized. Callers invoke Wh_ModUninit before this.
func (m *LoadedMod) Uninit() error {
	return m.transition(api.StateBeforeUninitCalled, api.StateUninitialized)
}

// Destroy marks the mod Destroyed, its terminal state.
func (m *LoadedMod) Destroy() error {
	return m.transition(api.StateUninitialized, api.StateDestroyed)
}

// HooksAllowed reports whether set_function_hook/remove_function_hook may
// be called right now (spec.md §4.9).
func (m *LoadedMod) HooksAllowed() bool { return m.State().HooksAllowed() }

// Logf writes a mod-tagged log line if logging is enabled for this mod
// (spec.md §4.9 "log(fmt, args…)"): "[WH] [<mod>] <line>\n", truncated to
// 1024 characters by the logger.
func (m *LoadedMod) Logf(format string, args ...interface{}) bool {
	return m.logger.Logf(m.name, format, args...)
}

// IsLogEnabled reports whether logging or debug-logging is enabled for this
// mod (spec.md §4.9 "is_log_enabled").
func (m *LoadedMod) IsLogEnabled() bool { return m.logger.Enabled() }
