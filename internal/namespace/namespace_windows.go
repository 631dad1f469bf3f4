//go:build windows

package namespace

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Handle owns an open or created private namespace. Objects named through
// ObjectName live under `\<namespace-name>\...`.
type Handle struct {
	boundary windows.Handle
	ns       windows.Handle
	name     string
}

var (
	modkernel32                    = windows.NewLazySystemDLL("kernel32.dll")
	procCreateBoundaryDescriptorW  = modkernel32.NewProc("CreateBoundaryDescriptorW")
	procAddSIDToBoundaryDescriptor = modkernel32.NewProc("AddSIDToBoundaryDescriptor")
	procCreatePrivateNamespaceW    = modkernel32.NewProc("CreatePrivateNamespaceW")
	procOpenPrivateNamespaceW      = modkernel32.NewProc("OpenPrivateNamespaceW")
	procClosePrivateNamespace      = modkernel32.NewProc("ClosePrivateNamespace")
)

// Open creates (or opens, if it already exists) the namespace for
// orchestrator pid, with a boundary descriptor tagged "Windhawk" plus the
// World SID (spec.md §4.3). No integrity-level label is added to the
// boundary descriptor.
func Open(orchPID uint32) (*Handle, error) {
	name := Name(orchPID)
	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, err
	}
	tagPtr, err := windows.UTF16PtrFromString("Windhawk")
	if err != nil {
		return nil, err
	}

	boundary, _, callErr := procCreateBoundaryDescriptorW.Call(
		uintptr(unsafe.Pointer(tagPtr)), 0,
	)
	if boundary == 0 {
		return nil, fmt.Errorf("namespace: CreateBoundaryDescriptorW: %w", callErr)
	}
	h := windows.Handle(boundary)

	var worldSID windows.SID
	sidSize := uint32(unsafe.Sizeof(worldSID))
	if err := windows.CreateWellKnownSid(windows.WinWorldSid, &worldSID, &sidSize); err == nil {
		procAddSIDToBoundaryDescriptor.Call(uintptr(boundary), uintptr(unsafe.Pointer(&worldSID)))
	}

	// A NULL security descriptor lets CreatePrivateNamespaceW apply the
	// caller's default DACL; the boundary descriptor (tag + World SID) is
	// what actually scopes visibility across sessions/integrity levels.
	ret, _, callErr := procCreatePrivateNamespaceW.Call(
		0,
		uintptr(boundary),
		uintptr(unsafe.Pointer(namePtr)),
	)
	if ret == 0 {
		if callErr != windows.ERROR_ALREADY_EXISTS {
			procClosePrivateNamespace.Call(uintptr(boundary), 0)
			return nil, fmt.Errorf("namespace: CreatePrivateNamespaceW: %w", callErr)
		}
		ret, _, callErr = procOpenPrivateNamespaceW.Call(uintptr(boundary), uintptr(unsafe.Pointer(namePtr)))
		if ret == 0 {
			procClosePrivateNamespace.Call(uintptr(boundary), 0)
			return nil, fmt.Errorf("namespace: OpenPrivateNamespaceW: %w", callErr)
		}
	}

	return &Handle{boundary: h, ns: windows.Handle(ret), name: name}, nil
}

// Name returns the namespace's own name, e.g. "WindhawkSession1234".
func (h *Handle) Name() string { return h.name }

// Close tears down the namespace handle and its boundary descriptor. Named
// kernel objects already created inside it are unaffected until their own
// handles are closed.
func (h *Handle) Close() error {
	procClosePrivateNamespace.Call(uintptr(h.ns), 0)
	windows.CloseHandle(h.boundary)
	return nil
}
