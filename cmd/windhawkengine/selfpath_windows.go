//go:build windows

package main

import (
	"fmt"
	"reflect"
	"unsafe"

	"golang.org/x/sys/windows"
)

const getModuleHandleExFlagFromAddress = 0x00000004

var (
	modkernel32            = windows.NewLazySystemDLL("kernel32.dll")
	procGetModuleHandleExW = modkernel32.NewProc("GetModuleHandleExW")
	procGetModuleFileNameW = modkernel32.NewProc("GetModuleFileNameW")
)

// anchor is any function compiled into this module, used only so
// ownModulePath has a real code address to hand GetModuleHandleEx.
func anchor() {}

// ownModulePath resolves the full path of this DLL itself, as opposed to
// the host process's own executable (what os.Executable reports once this
// is loaded into a target process): GetModuleHandleEx with
// GET_MODULE_HANDLE_EX_FLAG_FROM_ADDRESS against a code address known to
// lie inside this module, then GetModuleFileNameW on the resulting HMODULE.
// Grounded on the NewLazySystemDLL/NewProc idiom internal/winapi and
// internal/inject already use for Win32 calls this module has no x/sys
// binding for.
func ownModulePath() (string, error) {
	addr := reflect.ValueOf(anchor).Pointer()

	var handle windows.Handle
	ret, _, errno := procGetModuleHandleExW.Call(
		getModuleHandleExFlagFromAddress,
		addr,
		uintptr(unsafe.Pointer(&handle)),
	)
	if ret == 0 {
		return "", fmt.Errorf("windhawkengine: GetModuleHandleExW: %w", errno)
	}

	buf := make([]uint16, windows.MAX_PATH)
	n, _, errno := procGetModuleFileNameW.Call(
		uintptr(handle), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)),
	)
	if n == 0 {
		return "", fmt.Errorf("windhawkengine: GetModuleFileNameW: %w", errno)
	}
	return windows.UTF16ToString(buf[:n]), nil
}
