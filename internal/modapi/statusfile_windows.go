//go:build windows

package modapi

import (
	"golang.org/x/sys/windows"
)

// windowsMetadataFile keeps the file handle open with
// FILE_FLAG_DELETE_ON_CLOSE + FILE_SHARE_READ so observers (the
// orchestrator's status UI) can read the current content at any time and
// the file vanishes automatically if this process dies (spec.md §6).
type windowsMetadataFile struct {
	handle      windows.Handle
	path        string
	hostExeName string
}

// OpenMetadataFile creates (or truncates) the status/task file at path and
// holds it open for the lifetime of the returned handle.
func OpenMetadataFile(path, hostExeName string) (MetadataFile, error) {
	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, newMetadataFileError(path, err)
	}
	h, err := windows.CreateFile(
		pathPtr,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		windows.FILE_SHARE_READ,
		nil,
		windows.CREATE_ALWAYS,
		windows.FILE_ATTRIBUTE_NORMAL|windows.FILE_FLAG_DELETE_ON_CLOSE,
		0,
	)
	if err != nil {
		return nil, newMetadataFileError(path, err)
	}
	return &windowsMetadataFile{handle: h, path: path, hostExeName: hostExeName}, nil
}

func (f *windowsMetadataFile) Update(line string) error {
	buf := encodeMetadataLine(f.hostExeName, line)
	if _, err := windows.SetFilePointer(f.handle, 0, nil, windows.FILE_BEGIN); err != nil {
		return newMetadataFileError(f.path, err)
	}
	var written uint32
	if err := windows.WriteFile(f.handle, buf, &written, nil); err != nil {
		return newMetadataFileError(f.path, err)
	}
	if err := windows.SetEndOfFile(f.handle); err != nil {
		return newMetadataFileError(f.path, err)
	}
	return nil
}

func (f *windowsMetadataFile) Close() error {
	return windows.CloseHandle(f.handle)
}
