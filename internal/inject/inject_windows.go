//go:build windows

package inject

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/ramensoftware/windhawk-go/internal/shellcode"
	"github.com/ramensoftware/windhawk-go/internal/winapi"
)

const (
	memCommit            = 0x00001000
	memReserve           = 0x00002000
	pageExecuteReadWrite = 0x40
)

var (
	modkernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procVirtualAllocEx     = modkernel32.NewProc("VirtualAllocEx")
	procWriteProcessMemory = modkernel32.NewProc("WriteProcessMemory")
	procQueueUserAPC       = modkernel32.NewProc("QueueUserAPC")
)

// Inject carries out spec.md §4.5: duplicate the orchestrator handles into
// the target, allocate one RWX page, write the shellcode and parameter
// block, then start it running.
func Inject(req Request) error {
	if err := verifyEngineDLLArch(req.EngineDLLPath, hostArch()); err != nil {
		return err
	}

	targetProcess := windows.Handle(req.TargetProcess)

	orchInTarget, err := duplicateInto(windows.Handle(req.OrchProcess), targetProcess, windows.SYNCHRONIZE)
	if err != nil {
		return fmt.Errorf("inject: duplicating orchestrator process handle: %w", err)
	}
	mutexInTarget, err := duplicateInto(windows.Handle(req.OrchSessionMutex), targetProcess, windows.SYNCHRONIZE)
	if err != nil {
		windows.CloseHandle(orchInTarget) //nolint:errcheck // best effort on failure path
		return fmt.Errorf("inject: duplicating session mutex handle: %w", err)
	}

	pb := &shellcode.ParamBlock{
		LogVerbosity:          req.LogVerbosity,
		RunningFromAPC:        req.SuspendedThreadForAPC != 0,
		ThreadAttachExempt:    req.ThreadAttachExempt,
		SessionManagerProcess: orchInTarget,
		SessionMutex:          mutexInTarget,
		DLLName:               req.EngineDLLPath,
	}
	blob, err := shellcode.Build(hostArch(), pb)
	if err != nil {
		return fmt.Errorf("inject: building shellcode: %w", err)
	}

	remoteAddr, _, errno := procVirtualAllocEx.Call(
		uintptr(targetProcess), 0, uintptr(blob.TotalSize()),
		memCommit|memReserve, pageExecuteReadWrite,
	)
	if remoteAddr == 0 {
		return fmt.Errorf("inject: VirtualAllocEx: %w", errno)
	}

	payload := append(append([]byte{}, blob.Code...), blob.ParamBlock...)
	var written uintptr
	ok, _, errno := procWriteProcessMemory.Call(
		uintptr(targetProcess), remoteAddr,
		uintptr(unsafe.Pointer(&payload[0])), uintptr(len(payload)), uintptr(unsafe.Pointer(&written)),
	)
	if ok == 0 {
		return fmt.Errorf("inject: WriteProcessMemory: %w", errno)
	}

	paramAddr := remoteAddr + uintptr(blob.ParamBlockRVA())

	if req.SuspendedThreadForAPC != 0 {
		suspendedThread := windows.Handle(req.SuspendedThreadForAPC)
		ret, _, errno := procQueueUserAPC.Call(remoteAddr, uintptr(suspendedThread), paramAddr)
		if ret == 0 {
			return fmt.Errorf("inject: QueueUserAPC: %w", errno)
		}
		if _, err := windows.ResumeThread(suspendedThread); err != nil {
			return fmt.Errorf("inject: ResumeThread: %w", err)
		}
		return nil
	}

	var createFlags uint32
	if req.ThreadAttachExempt {
		createFlags = winapi.ThreadCreateFlagsSkipThreadAttach
	}
	thread, err := winapi.NtCreateThreadEx(targetProcess, remoteAddr, paramAddr, createFlags)
	if err != nil {
		return fmt.Errorf("inject: NtCreateThreadEx: %w", err)
	}
	windows.CloseHandle(thread)
	return nil
}

func duplicateInto(src, targetProcess windows.Handle, access uint32) (windows.Handle, error) {
	var dup windows.Handle
	if err := windows.DuplicateHandle(windows.CurrentProcess(), src, targetProcess, &dup, access, false, 0); err != nil {
		return 0, err
	}
	return dup, nil
}
