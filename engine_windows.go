//go:build windows

package windhawk

import (
	"fmt"

	"golang.org/x/sys/windows"

	"github.com/ramensoftware/windhawk-go/internal/interceptor"
	"github.com/ramensoftware/windhawk-go/internal/modsmanager"
	"github.com/ramensoftware/windhawk-go/internal/procscan"
	"github.com/ramensoftware/windhawk-go/internal/session"
	"github.com/ramensoftware/windhawk-go/internal/settings"
	"github.com/ramensoftware/windhawk-go/internal/storage"
	"github.com/ramensoftware/windhawk-go/internal/winapi"
)

func (e *Engine) currentProcessID() (uint32, error) {
	return windows.GetCurrentProcessId(), nil
}

// processCreateTime100ns returns h's creation time as the raw 100ns-since-
// 1601 FILETIME GetProcessTimes reports it in, with no further scaling
// (spec.md §3 "Mod instance id" OrchCreateTime100ns).
func processCreateTime100ns(h windows.Handle) (int64, error) {
	var creation, exit, kernel, user windows.Filetime
	if err := windows.GetProcessTimes(h, &creation, &exit, &kernel, &user); err != nil {
		return 0, fmt.Errorf("windhawk: GetProcessTimes: %w", err)
	}
	return int64(uint64(creation.HighDateTime)<<32 | uint64(creation.LowDateTime)), nil
}

// buildSessionConfig resolves everything InjectInit's shellcode-supplied
// handles and this process's own identity contribute to session.Config
// (spec.md §4.11 step 1-2), threading Engine's collaborators through.
func (e *Engine) buildSessionConfig(args InjectInitArgs) (session.Config, error) {
	orchProcess := windows.Handle(args.SessionManagerProcess)

	orchPID, err := windows.GetProcessId(orchProcess)
	if err != nil {
		return session.Config{}, fmt.Errorf("windhawk: resolving orchestrator pid: %w", err)
	}
	orchCreate, err := processCreateTime100ns(orchProcess)
	if err != nil {
		return session.Config{}, err
	}
	selfPID, err := e.currentProcessID()
	if err != nil {
		return session.Config{}, err
	}
	processPath, err := winapi.ProcessImagePath(windows.CurrentProcess())
	if err != nil {
		return session.Config{}, fmt.Errorf("windhawk: resolving own image path: %w", err)
	}

	settingsFor := func(modName string) (settings.Store, error) {
		return storage.ModSettingsStore(e.cfg.Paths, modName)
	}
	storageFor := func(modName string) (settings.Store, error) {
		return storage.ModWritableStore(e.cfg.Paths, modName)
	}
	loader := modsmanager.NewDLLLoader(e.cfg.HostArch, e.modHookEngine, e.cfg.Logger, settingsFor, storageFor)

	ic := interceptor.NewCollaborator(e.interceptorHookEngine, interceptor.Options{
		Patterns: procscan.Patterns{
			Include:            e.cfg.Settings.Include,
			Exclude:            e.cfg.Settings.Exclude,
			ThreadAttachExempt: e.cfg.Settings.ThreadAttachExempt,
		},
		OrchPID:       orchPID,
		EngineDLLPath: e.cfg.Paths.EngineDLL(e.cfg.HostArch.Dir()),
		LogVerbosity:  args.LogVerbosity,
	})

	configChange, err := e.cfg.configChangeNotification()
	if err != nil {
		return session.Config{}, fmt.Errorf("windhawk: arming mod config watcher: %w", err)
	}

	return session.Config{
		OrchPID:                  orchPID,
		OrchCreateTime100ns:      orchCreate,
		SelfPID:                  selfPID,
		OrchProcessHandle:        uintptr(orchProcess),
		OrchSessionMutexHandle:   args.SessionMutex,
		RunningFromAPC:           args.RunningFromAPC,
		ThreadAttachExempt:       args.ThreadAttachExempt,
		HostArch:                 e.cfg.HostArch,
		ProcessPath:              processPath,
		SkipCriticalProcessCheck: !e.cfg.Settings.SkipCriticalProcesses,
		ModLoader:                loader,
		HookEngine:               e.modHookEngine,
		Scanner:                  e.callScanner,
		Interceptor:              ic,
		ConfigChange:             configChange,
		Descriptors:              e.cfg.modDescriptors,
		Logger:                   e.cfg.Logger,
	}, nil
}
