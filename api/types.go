// Package api includes constants, errors and value types shared by every
// package in this module, and the few types an embedder (the orchestrator,
// or a mod author) needs to see across package boundaries.
package api

import (
	"errors"
	"fmt"
)

// ErrUnsupportedPlatform is returned by every Windows-only operation when
// built for a GOOS other than windows. Core logic that is not inherently
// Windows-specific (pattern matching, the settings store, the symbol cache
// key format) does not return this error.
var ErrUnsupportedPlatform = errors.New("windhawk: operation requires windows")

// Errors surfaced at the mod-API boundary (see spec.md §7, "Propagation
// policy"). These are never panics: every exported mod-facing call returns
// false/zero-value plus a log line instead of raising past InjectInit.
var (
	// ErrSessionAlreadyActive is returned when InjectInit is called in a
	// process that already owns a live Session (spec.md §8, property 1).
	ErrSessionAlreadyActive = errors.New("windhawk: a customization session is already active in this process")

	// ErrModLifecycle is returned when a mod calls a hook-registration
	// function outside its valid window.
	ErrModLifecycle = errors.New("windhawk: mod call invalid in current lifecycle state")

	// ErrConfig is returned for a malformed or missing engine.ini, or for
	// an unsupported target architecture.
	ErrConfig = errors.New("windhawk: configuration error")

	// ErrRequiredSymbolUnresolved is the hard failure case of hook_symbols:
	// at least one non-optional symbol could not be resolved by any means.
	ErrRequiredSymbolUnresolved = errors.New("windhawk: required symbol unresolved")
)

// InstanceID identifies one mod loaded into one process of one orchestrator
// session. See spec.md §3 "Mod instance id":
//
//	<orch-pid>_<orch-create-time-100ns>_<self-pid>_<mod-name>
//
// It is unique across every session ever started on the machine and is used
// verbatim as the file name of the mod-status and mod-task files.
type InstanceID string

// NewInstanceID composes the instance id from its four parts.
func NewInstanceID(orchPID uint32, orchCreateTime100ns int64, selfPID uint32, modName string) InstanceID {
	return InstanceID(fmt.Sprintf("%d_%d_%d_%s", orchPID, orchCreateTime100ns, selfPID, modName))
}

// LifecycleState is the state of one loaded mod, per spec.md §3:
//
//	created -> initialized -> afterInitDone -> beforeUninitCalled -> uninitialized -> destroyed
type LifecycleState int

const (
	StateCreated LifecycleState = iota
	StateInitialized
	StateAfterInitDone
	StateBeforeUninitCalled
	StateUninitialized
	StateDestroyed
)

func (s LifecycleState) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateInitialized:
		return "initialized"
	case StateAfterInitDone:
		return "after-init-done"
	case StateBeforeUninitCalled:
		return "before-uninit-called"
	case StateUninitialized:
		return "uninitialized"
	case StateDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("LifecycleState(%d)", int(s))
	}
}

// HooksAllowed reports whether set_function_hook/remove_function_hook may be
// called while a mod is in state s. Per spec.md §3: rejected outside
// [initialized, before-uninit-called).
func (s LifecycleState) HooksAllowed() bool {
	return s == StateInitialized || s == StateAfterInitDone
}

// HookIdentity is an opaque per-mod key used to scope queued hook
// operations in the external hooking engine (the MinHook-compatible
// "identity token" of spec.md §4.9). The core never interprets its bits;
// it is handed back to the collaborator verbatim.
type HookIdentity uintptr

// Architecture identifies a target's machine type, used both for engine/mod
// binary selection (spec.md §3 "Paths") and for the Architecture pattern in
// mods manager's should_load_in_running_process (spec.md §4.10).
type Architecture int

const (
	ArchUnknown Architecture = iota
	Arch386
	ArchAMD64
	ArchARM64
)

func (a Architecture) String() string {
	switch a {
	case Arch386:
		return "386"
	case ArchAMD64:
		return "amd64"
	case ArchARM64:
		return "arm64"
	default:
		return "unknown"
	}
}

// Dir is the per-architecture subdirectory name under engine_root and
// app_data/Mods, e.g. engine_root/{32,64,arm64}/windhawk.dll.
func (a Architecture) Dir() string {
	switch a {
	case Arch386:
		return "32"
	case ArchAMD64:
		return "64"
	case ArchARM64:
		return "arm64"
	default:
		return ""
	}
}

// MatchesTag reports whether an Architecture pattern tag (as used in a mod's
// metadata "architecture" field) matches this architecture. Per spec.md
// §4.10: "x86", "amd64"/"x86-64" (matches x64 and ARM64 — x86-64 is treated
// as a superset for compatibility), "arm64" (ARM64 only).
func (a Architecture) MatchesTag(tag string) bool {
	switch tag {
	case "x86":
		return a == Arch386
	case "amd64", "x86-64":
		return a == ArchAMD64 || a == ArchARM64
	case "arm64":
		return a == ArchARM64
	default:
		return false
	}
}
