package modapi

import "github.com/ramensoftware/windhawk-go/api"

// HookEngine is the external hooking engine collaborator mod code reaches
// through set_function_hook/remove_function_hook/apply_hook_operations
// (spec.md §4.9, §5 Non-goals: "the hooking engine itself" is out of
// scope). It is MinHook-compatible: every queued operation is scoped to an
// identity token, and AllIdentities batches every mod's queue in one call
// (spec.md §4.9's "one call to apply_queued_ex(MH_ALL_IDENTS)").
//
// This mirrors internal/interceptor.HookEngine in shape, not by sharing a
// type: the interceptor hooks exactly one function under its own reserved
// identity, while this interface is driven per-mod, one identity per
// LoadedMod.
type HookEngine interface {
	QueueHook(identity api.HookIdentity, target, detour uintptr, original *uintptr) error
	QueueUnhook(identity api.HookIdentity, target uintptr) error
	ApplyQueued(identity api.HookIdentity) error
}

// AllIdentities is the MH_ALL_IDENTS sentinel: applying against it flushes
// every mod's queued operations in one batch (spec.md §4.10 constructor
// step, §4.11 step 2).
const AllIdentities = ^api.HookIdentity(0)
