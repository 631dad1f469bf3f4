package inject

import (
	"runtime"

	"github.com/ramensoftware/windhawk-go/internal/shellcode"
)

// hostArch maps the running Go process's GOARCH to the shellcode blob
// variant to assemble. Cross-architecture injection (a 32-bit orchestrator
// driving a 64-bit target or vice versa) is out of scope beyond the
// parameter block's identical layout (spec.md §9); each injector binary only
// ever drives targets of its own bitness.
func hostArch() shellcode.Arch {
	switch runtime.GOARCH {
	case "386":
		return shellcode.Arch386
	case "arm64":
		return shellcode.ArchARM64
	default:
		return shellcode.ArchAMD64
	}
}
