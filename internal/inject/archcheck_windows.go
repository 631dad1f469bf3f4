//go:build windows

package inject

import (
	"fmt"

	pe "github.com/Binject/debug/pe"

	"github.com/ramensoftware/windhawk-go/internal/shellcode"
)

// IMAGE_FILE_MACHINE_* constants (winnt.h), stable since PE's introduction.
const (
	imageFileMachineI386  = 0x014c
	imageFileMachineAMD64 = 0x8664
	imageFileMachineARM64 = 0xAA64
)

// verifyEngineDLLArch opens the engine DLL Inject is about to write into the
// target and checks its machine type against want, catching a
// misconfigured engine.ini (pointing at the wrong {32,64,arm64} subtree,
// spec.md §4.2) before any remote memory is touched.
//
// Grounded on github.com/Binject/debug/pe, an additive fork of debug/pe
// (see DESIGN.md): only the long-stable stdlib-debug/pe-shaped surface
// (Open, FileHeader.Machine) is used, since that is the one part of its API
// this module can verify from the retrieval pack's own reference material.
func verifyEngineDLLArch(path string, want shellcode.Arch) error {
	f, err := pe.Open(path)
	if err != nil {
		return fmt.Errorf("inject: opening engine DLL %q: %w", path, err)
	}
	defer f.Close()

	machine := f.FileHeader.Machine
	var ok bool
	switch want {
	case shellcode.Arch386:
		ok = machine == imageFileMachineI386
	case shellcode.ArchAMD64:
		ok = machine == imageFileMachineAMD64
	case shellcode.ArchARM64:
		ok = machine == imageFileMachineARM64
	}
	if !ok {
		return fmt.Errorf("inject: engine DLL %q has machine type 0x%x, expected one matching %v", path, machine, want)
	}
	return nil
}
