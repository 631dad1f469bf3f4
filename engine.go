package windhawk

import (
	"fmt"
	"sync"

	"github.com/ramensoftware/windhawk-go/internal/callstack"
	"github.com/ramensoftware/windhawk-go/internal/interceptor"
	"github.com/ramensoftware/windhawk-go/internal/ipc"
	"github.com/ramensoftware/windhawk-go/internal/modapi"
	"github.com/ramensoftware/windhawk-go/internal/procscan"
	"github.com/ramensoftware/windhawk-go/internal/session"
)

// Engine is the composition root tying the storage manager (C2), the
// session-private namespace (C3, opened per-session by internal/procscan
// and internal/interceptor), the all-processes scanner (C6), the
// new-process interceptor (C7) and the customization session (C11)
// together. One Engine is constructed per engine DLL instance
// (cmd/windhawkengine); it exposes the four mandatory exports (spec.md §6)
// as plain methods, and answers the operator CLI's IPC calls (internal/ipc)
// once a session is live.
//
// Engine deliberately takes modHookEngine and interceptorHookEngine as two
// distinct injected collaborators rather than one type satisfying both
// internal/modapi.HookEngine and internal/interceptor.HookEngine: the two
// interfaces are shaped for different callers (per-mod identity vs. the
// interceptor's own reserved identity) and their ApplyQueued signatures are
// not interchangeable. Both hooking engines are out of scope to implement
// for real (spec.md §5); cmd/windhawkengine supplies the concrete values.
type Engine struct {
	cfg *Config

	modHookEngine         modapi.HookEngine
	interceptorHookEngine interceptor.HookEngine
	callScanner           callstack.Scanner

	mu         sync.Mutex
	sess       *session.Session
	ipcSrv     *ipc.Server
	scanners   map[uint64]*scannerHandle
	nextHandle uint64
}

// scannerHandle is one live all-processes scanner, between
// GlobalHookSessionStart and GlobalHookSessionEnd (spec.md §6). The
// "handle" the export returns to the orchestrator is a plain opaque
// integer key into Engine.scanners, standing in for the source's raw
// pointer-as-handle.
type scannerHandle struct {
	s *procscan.Scanner
}

// InjectInitArgs is the engine's own decoding of the shellcode's parameter
// block (internal/shellcode.ParamBlock, spec.md §4.4), handed to InjectInit
// by cmd/windhawkengine's cgo export. DLLName is not needed here: by the
// time InjectInit runs, the engine DLL is already loaded into this process.
type InjectInitArgs struct {
	LogVerbosity          int32
	RunningFromAPC        bool
	ThreadAttachExempt    bool
	SessionManagerProcess uintptr
	SessionMutex          uintptr
}

// NewEngine constructs an Engine from cfg and the two hooking-engine
// collaborators. callScanner may be nil, in which case the mods manager's
// unload barrier degrades to "no barrier" (see internal/modsmanager.New).
func NewEngine(cfg *Config, modHookEngine modapi.HookEngine, interceptorHookEngine interceptor.HookEngine, callScanner callstack.Scanner) *Engine {
	return &Engine{
		cfg:                   cfg,
		modHookEngine:         modHookEngine,
		interceptorHookEngine: interceptorHookEngine,
		callScanner:           callScanner,
		scanners:              map[uint64]*scannerHandle{},
	}
}

// InjectInit implements the engine DLL's InjectInit export (spec.md §4.11,
// §6): entered by the injection shellcode in a freshly targeted process.
// It constructs the customization session and, best-effort, starts the IPC
// server cmd/windhawkctl talks to (a Listen failure is logged, not fatal:
// the session itself is still fully functional without the control plane).
func (e *Engine) InjectInit(args InjectInitArgs) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cfg, err := e.buildSessionConfig(args)
	if err != nil {
		return fmt.Errorf("windhawk: building session config: %w", err)
	}

	sess, err := session.InjectInit(cfg)
	if err != nil {
		return err
	}
	e.sess = sess

	if srv, err := ipc.Listen(cfg.SelfPID, e); err != nil {
		e.cfg.Logger.Errorf("engine", "starting IPC server: %v", err)
	} else {
		e.ipcSrv = srv
		go srv.Serve() //nolint:errcheck // listener closed on session teardown, Serve's return is expected then
	}

	return nil
}

// GlobalHookSessionStart implements the export of the same name (spec.md
// §6): constructs an all-processes scanner and returns an opaque handle for
// the matching GlobalHookSessionHandleNewProcesses/GlobalHookSessionEnd
// calls.
func (e *Engine) GlobalHookSessionStart(skipCritical bool) (uint64, error) {
	orchPID, err := e.currentProcessID()
	if err != nil {
		return 0, err
	}

	scanner, err := procscan.New(e.cfg.scannerOptions(orchPID, skipCritical))
	if err != nil {
		return 0, fmt.Errorf("windhawk: starting all-processes scanner: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextHandle++
	h := e.nextHandle
	e.scanners[h] = &scannerHandle{s: scanner}
	return h, nil
}

// GlobalHookSessionHandleNewProcesses implements the export of the same
// name: one sweep over every live process (spec.md §6).
func (e *Engine) GlobalHookSessionHandleNewProcesses(handle uint64) error {
	sh, err := e.scannerFor(handle)
	if err != nil {
		return err
	}
	enginePath := e.cfg.Paths.EngineDLL(e.cfg.HostArch.Dir())
	return sh.s.Sweep(enginePath, int32(e.cfg.Settings.LogVerbosity))
}

// GlobalHookSessionEnd implements the export of the same name: releases the
// scanner's namespace handle (spec.md §6).
func (e *Engine) GlobalHookSessionEnd(handle uint64) error {
	e.mu.Lock()
	sh, ok := e.scanners[handle]
	if ok {
		delete(e.scanners, handle)
	}
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("windhawk: unknown scanner handle %d", handle)
	}
	return sh.s.Close()
}

func (e *Engine) scannerFor(handle uint64) (*scannerHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	sh, ok := e.scanners[handle]
	if !ok {
		return nil, fmt.Errorf("windhawk: unknown scanner handle %d", handle)
	}
	return sh, nil
}

// ListMods implements internal/ipc.Handler for the running session
// (spec.md §4.10).
func (e *Engine) ListMods() ([]ipc.ModStatus, error) {
	e.mu.Lock()
	sess := e.sess
	e.mu.Unlock()
	if sess == nil {
		return nil, fmt.Errorf("windhawk: no active session in this process")
	}

	mods := sess.Mods()
	out := make([]ipc.ModStatus, 0, len(mods))
	for _, mod := range mods {
		out = append(out, ipc.ModStatus{Name: mod.Name(), State: mod.State().String()})
	}
	return out, nil
}

// Reload implements internal/ipc.Handler: recomputes and re-applies mod
// eligibility against the live session (spec.md §4.10 "Reload").
func (e *Engine) Reload() error {
	e.mu.Lock()
	sess := e.sess
	e.mu.Unlock()
	if sess == nil {
		return fmt.Errorf("windhawk: no active session in this process")
	}
	return sess.Reload(e.cfg.modDescriptors)
}

// DumpSession implements internal/ipc.Handler (spec.md §4.11).
func (e *Engine) DumpSession() (ipc.SessionStatus, error) {
	orchPID, ok := session.ManagerPID()
	if !ok {
		return ipc.SessionStatus{}, fmt.Errorf("windhawk: no active session in this process")
	}
	mods, err := e.ListMods()
	if err != nil {
		return ipc.SessionStatus{}, err
	}
	return ipc.SessionStatus{OrchPID: orchPID, Mods: mods}, nil
}
