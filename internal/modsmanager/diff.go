package modsmanager

import (
	"github.com/ramensoftware/windhawk-go/internal/callstack"
	"github.com/ramensoftware/windhawk-go/internal/modapi"
)

// Reload recomputes ShouldLoadInRunningProcess over descs and diffs the
// result against what is currently loaded (spec.md §4.10 "Reload"):
// mods transitioning out are torn down first (BeforeUninit, one global
// hook-apply, Uninitialize, the thread-call-stack barrier, Destroy), then
// newly-eligible mods are loaded and after-init'd, with one more global
// hook-apply in between.
func (mgr *Manager) Reload(descs []Descriptor) error {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	eligible := map[string]Descriptor{}
	for _, d := range descs {
		if ShouldLoadInRunningProcess(d, mgr.hostArch, mgr.processPath, mgr.skipCriticalProcessCheck) {
			eligible[d.Name] = d
		}
	}

	var outgoing []string
	for name := range mgr.loaded {
		if _, stillEligible := eligible[name]; !stillEligible {
			outgoing = append(outgoing, name)
		}
	}

	if err := mgr.unloadLocked(outgoing); err != nil {
		return err
	}

	var incoming []Descriptor
	for name, d := range eligible {
		if _, alreadyLoaded := mgr.loaded[name]; !alreadyLoaded {
			incoming = append(incoming, d)
		}
	}

	var started []*modapi.LoadedMod
	for _, d := range incoming {
		mod, err := mgr.loadAndInit(d)
		if err != nil {
			mgr.logger.Errorf("mods-manager", "reload: loading mod %q: %v", d.Name, err)
			continue
		}
		mgr.loaded[d.Name] = mod
		started = append(started, mod)
	}

	if err := mgr.engine.ApplyQueued(modapi.AllIdentities); err != nil {
		return err
	}

	for _, mod := range started {
		if err := mgr.loader.CallAfterInit(mod); err != nil {
			mgr.logger.Errorf("mods-manager", "reload: mod %q Wh_ModAfterInit: %v", mod.Name(), err)
			continue
		}
		mod.AfterInit()
	}
	return nil
}

// unloadLocked tears down every named mod: BeforeUninit for all, one
// global hook-apply, then per-mod Uninitialize + barrier wait + Destroy
// (mgr.mu must already be held).
func (mgr *Manager) unloadLocked(names []string) error {
	if len(names) == 0 {
		return nil
	}

	var outgoing []*modapi.LoadedMod
	for _, name := range names {
		mod, ok := mgr.loaded[name]
		if !ok {
			continue
		}
		if err := mgr.loader.CallBeforeUninit(mod); err != nil {
			mgr.logger.Errorf("mods-manager", "mod %q Wh_ModBeforeUninit: %v", mod.Name(), err)
		}
		if err := mod.BeforeUninit(); err != nil {
			mgr.logger.Errorf("mods-manager", "mod %q before-uninit transition: %v", mod.Name(), err)
		}
		outgoing = append(outgoing, mod)
	}

	if err := mgr.engine.ApplyQueued(modapi.AllIdentities); err != nil {
		return err
	}

	var regions []callstack.Region
	for _, mod := range outgoing {
		if err := mgr.loader.CallUninit(mod); err != nil {
			mgr.logger.Errorf("mods-manager", "mod %q Wh_ModUninit: %v", mod.Name(), err)
		}
		if err := mod.Uninit(); err != nil {
			mgr.logger.Errorf("mods-manager", "mod %q uninit transition: %v", mod.Name(), err)
		}
		start, end := mod.CodeRange()
		if start != 0 && end != 0 {
			regions = append(regions, callstack.Region{Start: start, End: end})
		}
	}

	if mgr.scanner != nil {
		if stillBusy, err := callstack.WaitForRegions(mgr.scanner, regions, barrierPoll, barrierTimeout); err != nil {
			mgr.logger.Errorf("mods-manager", "call-stack barrier: %v", err)
		} else if stillBusy {
			mgr.logger.Errorf("mods-manager", "call-stack barrier timed out with a thread still in an unloading mod's code range")
		}
	}

	for _, mod := range outgoing {
		if err := mod.Destroy(); err != nil {
			mgr.logger.Errorf("mods-manager", "mod %q destroy transition: %v", mod.Name(), err)
		}
		if err := mgr.loader.Unload(mod); err != nil {
			mgr.logger.Errorf("mods-manager", "mod %q unload: %v", mod.Name(), err)
		}
		delete(mgr.loaded, mod.Name())
	}
	return nil
}
