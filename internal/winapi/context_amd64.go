//go:build windows && amd64

package winapi

import "golang.org/x/sys/windows"

func contextInstructionPointer(ctx *windows.CONTEXT) uint64 { return ctx.Rip }
