// Package interceptor implements the new-process interceptor (C7, spec.md
// §4.7): inside a process that may itself spawn children, it hooks
// CreateProcessInternalW to catch children suspended-at-birth and inject
// them before they start running.
package interceptor

import "github.com/ramensoftware/windhawk-go/internal/procscan"

// HookEngine is the subset of the external hooking engine this package
// needs: install an inline hook on a resolved target function and get back
// a thunk that calls through to the original. internal/modapi declares its
// own, separate HookEngine interface for the same external hooking engine.
type HookEngine interface {
	// Hook installs target -> detour and writes the original's trampoline
	// address into *original. identity scopes the registration (here, the
	// interceptor's own reserved identity, distinct from any mod's).
	Hook(identity uintptr, target, detour uintptr, original *uintptr) error
	Unhook(identity uintptr, target uintptr) error
	ApplyQueued(identity uintptr) error
}

// Options configures the interceptor's own injection decisions; it reuses
// the same pattern set the all-processes scanner uses.
type Options struct {
	Patterns      procscan.Patterns
	OrchPID       uint32
	EngineDLLPath string
	LogVerbosity  int32
}

// Collaborator adapts Install/Close to the Start()/Stop() shape the
// customization session expects of its new-process interceptor
// (internal/session.Interceptor): Start lazily installs the hook on first
// call, Stop closes it. Kept in this package (not session's) since it is
// purely a reshaping of this package's own constructor, with no
// session-specific behavior.
type Collaborator struct {
	engine HookEngine
	opts   Options
	ic     *Interceptor
}

// NewCollaborator builds a Collaborator that installs against engine with
// opts when Start is called.
func NewCollaborator(engine HookEngine, opts Options) *Collaborator {
	return &Collaborator{engine: engine, opts: opts}
}

func (c *Collaborator) Start() error {
	ic, err := Install(c.engine, c.opts)
	if err != nil {
		return err
	}
	c.ic = ic
	return nil
}

func (c *Collaborator) Stop() error {
	if c.ic == nil {
		return nil
	}
	return c.ic.Close()
}
