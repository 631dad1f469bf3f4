package main

import (
	"github.com/ramensoftware/windhawk-go/api"
)

// noopModHookEngine and noopInterceptorHookEngine are non-functional
// stand-ins for the external MinHook-compatible hooking engine (spec.md §5
// Non-goals: "the hooking engine itself" is explicitly out of scope).
// Every call is a no-op; neither ever installs a real inline hook. They
// exist only so this binary links and the rest of the session (mod
// lifecycle, the all-processes scanner, the new-process interceptor's own
// bookkeeping) can be exercised without a genuine hooking engine present.
// A real MinHook-equivalent binding is not attempted here.
type noopModHookEngine struct{}

func (noopModHookEngine) QueueHook(identity api.HookIdentity, target, detour uintptr, original *uintptr) error {
	if original != nil {
		*original = target
	}
	return nil
}

func (noopModHookEngine) QueueUnhook(identity api.HookIdentity, target uintptr) error { return nil }

func (noopModHookEngine) ApplyQueued(identity api.HookIdentity) error { return nil }

type noopInterceptorHookEngine struct{}

func (noopInterceptorHookEngine) Hook(identity uintptr, target, detour uintptr, original *uintptr) error {
	if original != nil {
		*original = target
	}
	return nil
}

func (noopInterceptorHookEngine) Unhook(identity uintptr, target uintptr) error { return nil }

func (noopInterceptorHookEngine) ApplyQueued(identity uintptr) error { return nil }
