//go:build windows

package logging

import "golang.org/x/sys/windows"

// currentThreadID identifies the calling OS thread. Mod API calls arrive on
// whatever native thread the hooking engine's trampoline happened to run on,
// so the override key must be the OS thread id, not a goroutine id: a
// goroutine can migrate between OS threads, but the engine's notion of
// "this call" is tied to the native call stack the hook fired on.
func currentThreadID() uint32 {
	return windows.GetCurrentThreadId()
}
