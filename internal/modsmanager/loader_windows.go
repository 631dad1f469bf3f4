//go:build windows

package modsmanager

import (
	"fmt"
	"sync/atomic"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/ramensoftware/windhawk-go/api"
	"github.com/ramensoftware/windhawk-go/internal/logging"
	"github.com/ramensoftware/windhawk-go/internal/modapi"
	"github.com/ramensoftware/windhawk-go/internal/settings"
)

// DLLLoader is the real ModLoader (spec.md §3 "Loaded mod", §4.9): it
// LoadLibraryWs a mod's DLL, writes the engine's identity token into its
// InternalWhModPtr export before calling Wh_ModInit, and calls the rest of
// the lifecycle exports by address — the same raw-Win32-by-GetProcAddress
// style internal/inject and internal/interceptor already use for the
// engine's own entry points.
//
// Wh_ModInit and InternalWhModPtr are hard-required (spec.md §3: the slot
// "is set... before Wh_ModInit is called"; §6 lists Wh_ModInit as the one
// export every mod must provide). Wh_ModAfterInit/Wh_ModBeforeUninit/
// Wh_ModUninit are optional: a mod omitting one of them is treated the way
// the original engine's try/catch-wrapped per-mod calls treat a throwing
// mod — tolerated, not fatal (see DESIGN.md, "ModLoader required vs.
// optional exports").
type DLLLoader struct {
	hostArch     api.Architecture
	hookEngine   modapi.HookEngine
	settingsFor  func(modName string) (settings.Store, error)
	storageFor   func(modName string) (settings.Store, error)
	logger       *logging.Logger
	nextIdentity uint64
}

// NewDLLLoader constructs a DLLLoader. engine is the mod-facing hooking
// engine collaborator handed to every LoadedMod (modapi.HookEngine, out of
// scope to implement here — spec.md §5). settingsFor/storageFor build the
// two per-mod settings.Store instances a LoadedMod needs (spec.md §4.9
// get_mod_setting/get_mod_storage_path); the choice between the portable
// and registry backend is made once by the composition root, not by this
// package.
func NewDLLLoader(hostArch api.Architecture, engine modapi.HookEngine, logger *logging.Logger,
	settingsFor, storageFor func(modName string) (settings.Store, error)) *DLLLoader {
	return &DLLLoader{
		hostArch:    hostArch,
		hookEngine:  engine,
		settingsFor: settingsFor,
		storageFor:  storageFor,
		logger:      logger,
	}
}

// psapi!GetModuleInformation has no binding in this module's vendored
// golang.org/x/sys/windows, resolved the same NewLazySystemDLL+NewProc way
// as CreateSemaphoreW (internal/session/semaphore_windows.go) and
// CreateProcessInternalW (internal/interceptor/interceptor_windows.go).
var (
	modpsapi                 = windows.NewLazySystemDLL("psapi.dll")
	procGetModuleInformation = modpsapi.NewProc("GetModuleInformation")
)

// moduleInfo mirrors MODULEINFO (psapi.h); only SizeOfImage is needed here.
type moduleInfo struct {
	BaseOfDll   uintptr
	SizeOfImage uint32
	EntryPoint  uintptr
}

func moduleImageSize(h windows.Handle) (uint32, error) {
	var mi moduleInfo
	ok, _, errno := procGetModuleInformation.Call(
		uintptr(windows.CurrentProcess()), uintptr(h),
		uintptr(unsafe.Pointer(&mi)), unsafe.Sizeof(mi),
	)
	if ok == 0 {
		return 0, fmt.Errorf("modsmanager: GetModuleInformation: %w", errno)
	}
	return mi.SizeOfImage, nil
}

// Load implements ModLoader.Load: LoadLibraryW(d.Path), resolve
// InternalWhModPtr (required), construct the LoadedMod, and record the
// module's base/size for the code-range unload barrier.
func (l *DLLLoader) Load(d Descriptor) (*modapi.LoadedMod, error) {
	h, err := windows.LoadLibrary(d.Path)
	if err != nil {
		return nil, fmt.Errorf("modsmanager: LoadLibraryW %q: %w", d.Path, err)
	}

	modPtrAddr, err := windows.GetProcAddress(h, "InternalWhModPtr")
	if err != nil {
		windows.FreeLibrary(h) //nolint:errcheck // best effort on reject
		return nil, fmt.Errorf("%w: mod %q missing InternalWhModPtr export: %v", api.ErrRequiredSymbolUnresolved, d.Name, err)
	}

	identity := api.HookIdentity(atomic.AddUint64(&l.nextIdentity, 1))

	settingsStore, err := l.settingsFor(d.Name)
	if err != nil {
		windows.FreeLibrary(h) //nolint:errcheck
		return nil, fmt.Errorf("modsmanager: opening settings store for %q: %w", d.Name, err)
	}
	storageStore, err := l.storageFor(d.Name)
	if err != nil {
		windows.FreeLibrary(h) //nolint:errcheck
		return nil, fmt.Errorf("modsmanager: opening storage store for %q: %w", d.Name, err)
	}

	// Write the identity token into the mod's InternalWhModPtr slot before
	// Wh_ModInit runs (spec.md §3 invariant): the slot is a plain void*
	// sized word at the resolved export address, in this same process.
	*(*uintptr)(unsafe.Pointer(modPtrAddr)) = uintptr(identity)

	mod := modapi.NewLoadedMod(d.Name, identity, l.hookEngine, settingsStore, storageStore, l.logger)

	size, err := moduleImageSize(h)
	if err != nil {
		// Non-fatal: the barrier degrades to "no code range known" for this
		// mod, which WaitForRegions already treats as "nothing to wait
		// for" when the region list ends up empty.
		l.logger.Errorf("modsmanager", "mod %q: resolving module size: %v", d.Name, err)
	}
	mod.SetModule(uintptr(h), uintptr(size))

	return mod, nil
}

func (l *DLLLoader) CallInit(mod *modapi.LoadedMod) error {
	ok, err := l.callLifecycleBool(mod, "Wh_ModInit", true)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("modsmanager: mod %q: Wh_ModInit returned false", mod.Name())
	}
	return nil
}

func (l *DLLLoader) CallAfterInit(mod *modapi.LoadedMod) error {
	_, err := l.callLifecycleBool(mod, "Wh_ModAfterInit", false)
	return err
}

func (l *DLLLoader) CallBeforeUninit(mod *modapi.LoadedMod) error {
	_, err := l.callLifecycleBool(mod, "Wh_ModBeforeUninit", false)
	return err
}

func (l *DLLLoader) CallUninit(mod *modapi.LoadedMod) error {
	_, err := l.callLifecycleBool(mod, "Wh_ModUninit", false)
	return err
}

// Unload frees the mod's DLL. Called by Manager only after Destroy, i.e.
// after the thread-call-stack barrier has already run against this mod's
// code range.
func (l *DLLLoader) Unload(mod *modapi.LoadedMod) error {
	base, _ := mod.CodeRange()
	if base == 0 {
		return nil
	}
	if err := windows.FreeLibrary(windows.Handle(base)); err != nil {
		return fmt.Errorf("modsmanager: FreeLibrary %q: %w", mod.Name(), err)
	}
	return nil
}

// callLifecycleBool resolves name in mod's module and calls it as a niladic
// bool-returning function, matching every Wh_Mod* export's signature
// (spec.md §6). required controls whether a missing export is an error
// (Wh_ModInit) or a silent no-op (the other three).
func (l *DLLLoader) callLifecycleBool(mod *modapi.LoadedMod, name string, required bool) (bool, error) {
	base, _ := mod.CodeRange()
	if base == 0 {
		return false, fmt.Errorf("modsmanager: mod %q has no module handle", mod.Name())
	}
	addr, err := windows.GetProcAddress(windows.Handle(base), name)
	if err != nil {
		if required {
			return false, fmt.Errorf("%w: mod %q missing %s export: %v", api.ErrRequiredSymbolUnresolved, mod.Name(), name, err)
		}
		return true, nil
	}
	ret, _, _ := syscall.Syscall(addr, 0, 0, 0, 0)
	return ret != 0, nil
}
