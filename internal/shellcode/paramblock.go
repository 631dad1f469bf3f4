// Package shellcode builds the position-independent injection stub and its
// parameter block (C4, spec.md §4.4). The stub itself never runs inside this
// process; it is written into a target process's address space by
// internal/inject and executed there via APC or remote thread.
package shellcode

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/windows"
)

// ParamBlock is the LOAD_LIBRARY_REMOTE_DATA structure handed to the shellcode.
// Its layout is identical on 32-bit and 64-bit targets: the two handle slots
// are full 64-bit fields with the upper half zeroed on 32-bit targets, so a
// 32-bit injector driving a 32-bit target and a 64-bit injector driving a
// 64-bit target produce byte-identical field offsets.
type ParamBlock struct {
	LogVerbosity          int32
	RunningFromAPC        bool
	ThreadAttachExempt    bool
	SessionManagerProcess windows.Handle
	SessionMutex          windows.Handle
	DLLName               string
}

// FixedSize is the size in bytes of everything in ParamBlock before the
// flexible DLLName array: 4 (verbosity) + 4 (bool) + 4 (bool) + 8 (handle) +
// 8 (handle) = 28, matching the offsets described in spec.md §4.4.
const FixedSize = 4 + 4 + 4 + 8 + 8

// Marshal encodes pb into the exact byte layout the shellcode expects,
// little-endian, with DLLName written as NUL-terminated UTF-16.
func (pb *ParamBlock) Marshal() ([]byte, error) {
	nameUTF16, err := windows.UTF16FromString(pb.DLLName)
	if err != nil {
		return nil, fmt.Errorf("shellcode: encoding dll name: %w", err)
	}

	buf := make([]byte, FixedSize+len(nameUTF16)*2)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(pb.LogVerbosity))
	binary.LittleEndian.PutUint32(buf[4:8], boolToUint32(pb.RunningFromAPC))
	binary.LittleEndian.PutUint32(buf[8:12], boolToUint32(pb.ThreadAttachExempt))
	binary.LittleEndian.PutUint64(buf[12:20], uint64(pb.SessionManagerProcess))
	binary.LittleEndian.PutUint64(buf[20:28], uint64(pb.SessionMutex))
	for i, c := range nameUTF16 {
		binary.LittleEndian.PutUint16(buf[FixedSize+i*2:FixedSize+i*2+2], c)
	}
	return buf, nil
}

func boolToUint32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// Size returns the total marshaled size of pb in bytes.
func (pb *ParamBlock) Size() int {
	nameUTF16, _ := windows.UTF16FromString(pb.DLLName)
	return FixedSize + len(nameUTF16)*2
}

// Verbosity levels understood by the shellcode's own minimal logger
// (spec.md §4.4, last line): silent, errors-only (hex GetLastError), verbose.
const (
	VerbositySilent  int32 = 0
	VerbosityErrors  int32 = 1
	VerbosityVerbose int32 = 2
)
