package modapi

import (
	"fmt"

	"github.com/ramensoftware/windhawk-go/api"
)

type hookOpKind int

const (
	opHook hookOpKind = iota
	opUnhook
)

type hookOp struct {
	kind     hookOpKind
	target   uintptr
	detour   uintptr
	original *uintptr
}

// SetFunctionHook queues a hook registration under this mod's identity
// (spec.md §4.9 "set_function_hook"). Rejected once BeforeUninit has run.
func (m *LoadedMod) SetFunctionHook(target, detour uintptr, original *uintptr) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.state.HooksAllowed() {
		return fmt.Errorf("modapi: mod %q: set_function_hook: %w (in %s)", m.name, api.ErrModLifecycle, m.state)
	}
	m.queue = append(m.queue, hookOp{kind: opHook, target: target, detour: detour, original: original})
	return nil
}

// RemoveFunctionHook queues a hook removal under this mod's identity
// (spec.md §4.9 "remove_function_hook"). Rejected outside
// [initialized, before_uninit).
func (m *LoadedMod) RemoveFunctionHook(target uintptr) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.state.HooksAllowed() {
		return fmt.Errorf("modapi: mod %q: remove_function_hook: %w (in %s)", m.name, api.ErrModLifecycle, m.state)
	}
	m.queue = append(m.queue, hookOp{kind: opUnhook, target: target})
	return nil
}

// ApplyHookOperations flushes this mod's queued hook operations to the
// engine in one batch (spec.md §4.9 "apply_hook_operations"), then clears
// the queue regardless of outcome: a failed entry is the engine's to report
// per-symbol, not a reason to retry the whole batch again later.
func (m *LoadedMod) ApplyHookOperations() error {
	m.mu.Lock()
	queue := m.queue
	m.queue = nil
	identity := m.identity
	m.mu.Unlock()

	for _, op := range queue {
		var err error
		switch op.kind {
		case opHook:
			err = m.engine.QueueHook(identity, op.target, op.detour, op.original)
		case opUnhook:
			err = m.engine.QueueUnhook(identity, op.target)
		}
		if err != nil {
			return fmt.Errorf("modapi: mod %q: queueing hook operation: %w", m.name, err)
		}
	}
	return m.engine.ApplyQueued(identity)
}
