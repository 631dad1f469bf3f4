// Command windhawkengine builds the engine DLL (windhawk.dll, spec.md §6):
// a cgo c-shared library exporting the four entry points the shellcode and
// the orchestrator call into. Every export here is a thin shim; the actual
// work happens in the root windhawk.Engine, kept free of cgo so it stays
// directly unit-testable (mirrors wazero's own cmd/wazero: a minimal main
// delegating immediately to testable, cgo-free package code).
package main

// #include <stdint.h>
import "C"

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sync"

	windhawk "github.com/ramensoftware/windhawk-go"
	"github.com/ramensoftware/windhawk-go/api"
)

var (
	initOnce sync.Once
	initErr  error
	engine   *windhawk.Engine
)

// engineArch maps this binary's own GOARCH to the api.Architecture this
// engine instance represents, the same mapping internal/inject/arch.go uses
// for the injector side.
func engineArch() api.Architecture {
	switch runtime.GOARCH {
	case "386":
		return api.Arch386
	case "arm64":
		return api.ArchARM64
	default:
		return api.ArchAMD64
	}
}

// bootstrap lazily builds the Engine on first export call: cgo c-shared
// libraries have no Go main() to run setup from, so each export must be
// prepared to do it itself (spec.md §6 "loaded via LoadLibrary, entered via
// InjectInit/GlobalHookSession*"). engine.ini lives two directories above
// this DLL (engine_root/{32,64,arm64}/windhawk.dll, spec.md §3 "Paths").
func bootstrap() (*windhawk.Engine, error) {
	initOnce.Do(func() {
		dllPath, err := ownModulePath()
		if err != nil {
			initErr = fmt.Errorf("windhawkengine: resolving own module path: %w", err)
			return
		}
		engineDir := filepath.Dir(filepath.Dir(dllPath))

		cfg, err := windhawk.LoadConfig(engineDir, engineArch())
		if err != nil {
			initErr = fmt.Errorf("windhawkengine: loading configuration: %w", err)
			return
		}
		engine = windhawk.NewEngine(cfg, noopModHookEngine{}, noopInterceptorHookEngine{}, nil)
	})
	return engine, initErr
}

//export InjectInit
func InjectInit(logVerbosity C.int32_t, runningFromAPC, threadAttachExempt C.int32_t, sessionManagerProcess, sessionMutex C.uintptr_t) C.int32_t {
	e, err := bootstrap()
	if err != nil {
		return -1
	}
	args := windhawk.InjectInitArgs{
		LogVerbosity:          int32(logVerbosity),
		RunningFromAPC:        runningFromAPC != 0,
		ThreadAttachExempt:    threadAttachExempt != 0,
		SessionManagerProcess: uintptr(sessionManagerProcess),
		SessionMutex:          uintptr(sessionMutex),
	}
	if err := e.InjectInit(args); err != nil {
		return -1
	}
	return 0
}

//export GlobalHookSessionStart
func GlobalHookSessionStart(skipCriticalProcesses C.int32_t) C.uint64_t {
	e, err := bootstrap()
	if err != nil {
		return 0
	}
	h, err := e.GlobalHookSessionStart(skipCriticalProcesses != 0)
	if err != nil {
		return 0
	}
	return C.uint64_t(h)
}

//export GlobalHookSessionHandleNewProcesses
func GlobalHookSessionHandleNewProcesses(handle C.uint64_t) C.int32_t {
	e, err := bootstrap()
	if err != nil {
		return -1
	}
	if err := e.GlobalHookSessionHandleNewProcesses(uint64(handle)); err != nil {
		return -1
	}
	return 0
}

//export GlobalHookSessionEnd
func GlobalHookSessionEnd(handle C.uint64_t) C.int32_t {
	e, err := bootstrap()
	if err != nil {
		return -1
	}
	if err := e.GlobalHookSessionEnd(uint64(handle)); err != nil {
		return -1
	}
	return 0
}

func main() {}
