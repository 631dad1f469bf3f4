// Package session implements the customization session (C11, spec.md
// §4.11): the per-process singleton entered from the engine DLL's
// InjectInit export. It takes ownership of the duplicated orchestrator
// handles, constructs the mods manager (C10) and the new-process
// interceptor (C7), applies every queued hook in one batch, then runs an
// event loop for as long as the orchestrator that created it stays alive.
package session

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/ramensoftware/windhawk-go/api"
	"github.com/ramensoftware/windhawk-go/internal/callstack"
	"github.com/ramensoftware/windhawk-go/internal/logging"
	"github.com/ramensoftware/windhawk-go/internal/modapi"
	"github.com/ramensoftware/windhawk-go/internal/modsmanager"
	"github.com/ramensoftware/windhawk-go/internal/storage"
)

// coalesceWait is the additional wait after mod_config_change fires, so a
// burst of near-simultaneous changes collapses into one reload (spec.md
// §4.11 step 4).
const coalesceWait = 200 * time.Millisecond

// OrchWaiter reports when the orchestrator process handed to InjectInit
// exits. See orchwaiter_windows.go for the WaitForSingleObject-backed
// implementation.
type OrchWaiter interface {
	// Done closes once the orchestrator process has exited.
	Done() <-chan struct{}
	Close() error
}

// Interceptor is the new-process interceptor (C7), started alongside the
// mods manager so children spawned from this process are caught too.
type Interceptor interface {
	Start() error
	Stop() error
}

// Config gathers everything InjectInit needs to start a session. Handle
// fields are raw Win32 HANDLE values (uintptr so Config has a meaning on
// every GOOS); the platform-specific wiring lives behind OrchWaiter and the
// process semaphore helpers.
type Config struct {
	OrchPID             uint32
	OrchCreateTime100ns int64
	SelfPID             uint32

	// OrchProcessHandle and OrchSessionMutexHandle were duplicated into
	// this process by the shellcode (spec.md §4.5 step 1). Session watches
	// OrchProcessHandle through its OrchWaiter and closes it at teardown;
	// Session does not close OrchSessionMutexHandle.
	OrchProcessHandle      uintptr
	OrchSessionMutexHandle uintptr

	// RunningFromAPC is true when the engine DLL's DllMain ran inside the
	// APC that loaded it (spec.md §4.11 step 3): the event loop must then
	// run on a freshly started thread, never inline.
	RunningFromAPC     bool
	ThreadAttachExempt bool

	HostArch                 api.Architecture
	ProcessPath              string
	SkipCriticalProcessCheck bool

	ModLoader   modsmanager.ModLoader
	HookEngine  modapi.HookEngine
	Scanner     callstack.Scanner
	Interceptor Interceptor

	ConfigChange storage.ModConfigChangeNotification
	Descriptors  func() ([]modsmanager.Descriptor, error)

	Logger *logging.Logger
}

// Session is the customization session live in this process.
type Session struct {
	cfg  Config
	mgr  *modsmanager.Manager
	wait OrchWaiter

	releaseSemaphore func() error

	stop chan struct{}
	done chan struct{}
}

var (
	mu      sync.Mutex
	current *Session
)

// Indirected for tests: the real implementations are platform-gated (see
// semaphore_windows.go/orchwaiter_windows.go and their _other.go stubs),
// swapped out in session_test.go for fakes so InjectInit's orchestration
// logic is testable without a live Windows process.
var (
	acquireProcessSemaphoreFn = acquireProcessSemaphore
	newOrchWaiterFn           = newOrchWaiter
)

// InjectInit enters the customization session (spec.md §4.11). Per spec.md
// §8 property 1, a second call in a process that already owns a live
// session returns ErrSessionAlreadyActive without creating or tearing down
// anything; the same error is returned if the per-process semaphore
// ("WindhawkCustomizationSessionSemaphore-pid=<self-pid>") is already held,
// which catches a second session racing in before the in-process singleton
// guard is set (spec.md §4.11 step 1).
func InjectInit(cfg Config) (*Session, error) {
	mu.Lock()
	if current != nil {
		mu.Unlock()
		return nil, api.ErrSessionAlreadyActive
	}
	// Reserve the slot before doing any real work, so a second concurrent
	// InjectInit call fails fast instead of racing the setup below.
	current = &Session{}
	mu.Unlock()

	release, err := acquireProcessSemaphoreFn(cfg.SelfPID)
	if err != nil {
		mu.Lock()
		current = nil
		mu.Unlock()
		return nil, fmt.Errorf("%w: %v", api.ErrSessionAlreadyActive, err)
	}

	s := &Session{
		cfg:              cfg,
		releaseSemaphore: release,
		stop:             make(chan struct{}),
		done:             make(chan struct{}),
	}

	if cfg.OrchProcessHandle != 0 {
		waiter, err := newOrchWaiterFn(cfg.OrchProcessHandle)
		if err != nil {
			release()
			mu.Lock()
			current = nil
			mu.Unlock()
			return nil, fmt.Errorf("session: watching orchestrator process: %w", err)
		}
		s.wait = waiter
	}

	mu.Lock()
	current = s
	mu.Unlock()

	if err := s.start(); err != nil {
		s.releaseLocked()
		return nil, err
	}

	if cfg.RunningFromAPC {
		// APC-time code must not trigger TLS/DllMain callbacks of other
		// DLLs (spec.md §4.11 step 3); park the event loop on its own OS
		// thread instead of running it inline on the APC's thread.
		go func() {
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()
			s.runEventLoop()
		}()
	} else {
		go s.runEventLoop()
	}

	return s, nil
}

// start constructs the mods manager and the new-process interceptor and
// applies the mods' queued hooks in one batch (spec.md §4.11 step 2). The
// interceptor is started first and applies its own hook, through its own
// hook engine, as it starts; Manager.Start's single ApplyQueued(ALL) call
// covers the mods' hooks only.
func (s *Session) start() error {
	descs, err := s.cfg.Descriptors()
	if err != nil {
		return fmt.Errorf("session: enumerating mods: %w", err)
	}

	if s.cfg.Interceptor != nil {
		if err := s.cfg.Interceptor.Start(); err != nil {
			return fmt.Errorf("session: starting new-process interceptor: %w", err)
		}
	}

	s.mgr = modsmanager.New(s.cfg.ModLoader, s.cfg.HookEngine, s.cfg.Scanner, s.cfg.Logger,
		s.cfg.HostArch, s.cfg.ProcessPath, s.cfg.SkipCriticalProcessCheck)
	if err := s.mgr.Start(descs); err != nil {
		return fmt.Errorf("session: starting mods manager: %w", err)
	}
	return nil
}

// releaseLocked tears down a session that failed partway through start,
// before the event loop ever ran.
func (s *Session) releaseLocked() {
	if s.wait != nil {
		s.wait.Close()
	}
	s.releaseSemaphore()
	mu.Lock()
	if current == s {
		current = nil
	}
	mu.Unlock()
}

// Stop requests an immediate teardown and waits for it to finish. The event
// loop exits via orchestrator death in the normal case; Stop exists for an
// explicit uninject path and for tests.
func (s *Session) Stop() {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	<-s.done
}

// Mods returns a snapshot of every mod currently loaded in this session,
// for internal/ipc's ListMods/DumpSession responses.
func (s *Session) Mods() []*modapi.LoadedMod {
	return s.mgr.Mods()
}

// Reload recomputes which mods belong in this process and loads/unloads
// the difference (spec.md §4.10 "Reload"), using descriptors freshly built
// by descsFn rather than whatever InjectInit originally captured.
func (s *Session) Reload(descsFn func() ([]modsmanager.Descriptor, error)) error {
	descs, err := descsFn()
	if err != nil {
		return fmt.Errorf("session: enumerating mods: %w", err)
	}
	return s.mgr.Reload(descs)
}

// ManagerPID and ManagerCreateTime expose the live session's orchestrator
// identity, used to compose a mod instance id (spec.md §3 "Mod instance
// id") from outside this package. The second return value is false when no
// session is active in this process.
func ManagerPID() (uint32, bool) {
	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		return 0, false
	}
	return current.cfg.OrchPID, true
}

func ManagerCreateTime() (int64, bool) {
	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		return 0, false
	}
	return current.cfg.OrchCreateTime100ns, true
}
