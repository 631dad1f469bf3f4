//go:build !windows

package modsmanager

import (
	"github.com/ramensoftware/windhawk-go/api"
	"github.com/ramensoftware/windhawk-go/internal/logging"
	"github.com/ramensoftware/windhawk-go/internal/modapi"
	"github.com/ramensoftware/windhawk-go/internal/settings"
)

// DLLLoader is the non-Windows stub; loading a native mod DLL is a Win32-only
// operation.
type DLLLoader struct{}

func NewDLLLoader(hostArch api.Architecture, engine modapi.HookEngine, logger *logging.Logger,
	settingsFor, storageFor func(modName string) (settings.Store, error)) *DLLLoader {
	return &DLLLoader{}
}

func (l *DLLLoader) Load(d Descriptor) (*modapi.LoadedMod, error) {
	return nil, api.ErrUnsupportedPlatform
}

func (l *DLLLoader) CallInit(mod *modapi.LoadedMod) error         { return api.ErrUnsupportedPlatform }
func (l *DLLLoader) CallAfterInit(mod *modapi.LoadedMod) error    { return api.ErrUnsupportedPlatform }
func (l *DLLLoader) CallBeforeUninit(mod *modapi.LoadedMod) error { return api.ErrUnsupportedPlatform }
func (l *DLLLoader) CallUninit(mod *modapi.LoadedMod) error       { return api.ErrUnsupportedPlatform }
func (l *DLLLoader) Unload(mod *modapi.LoadedMod) error           { return api.ErrUnsupportedPlatform }
