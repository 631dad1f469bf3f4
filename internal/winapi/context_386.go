//go:build windows && 386

package winapi

import "golang.org/x/sys/windows"

func contextInstructionPointer(ctx *windows.CONTEXT) uint64 { return uint64(ctx.Eip) }
