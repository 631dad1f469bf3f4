//go:build windows && arm64

package winapi

import "golang.org/x/sys/windows"

func contextInstructionPointer(ctx *windows.CONTEXT) uint64 { return ctx.Pc }
