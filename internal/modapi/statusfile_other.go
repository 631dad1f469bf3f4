//go:build !windows

package modapi

import (
	"os"
)

// otherMetadataFile is a plain-file fallback: no delete-on-close semantics
// exist off Windows, so Close removes the file explicitly instead. This
// core only ever ships its status files for a Windows host; the fallback
// exists purely so this package stays buildable and testable cross-platform.
type otherMetadataFile struct {
	f           *os.File
	path        string
	hostExeName string
}

func OpenMetadataFile(path, hostExeName string) (MetadataFile, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, newMetadataFileError(path, err)
	}
	return &otherMetadataFile{f: f, path: path, hostExeName: hostExeName}, nil
}

func (f *otherMetadataFile) Update(line string) error {
	buf := encodeMetadataLine(f.hostExeName, line)
	if err := f.f.Truncate(0); err != nil {
		return newMetadataFileError(f.path, err)
	}
	if _, err := f.f.WriteAt(buf, 0); err != nil {
		return newMetadataFileError(f.path, err)
	}
	return nil
}

func (f *otherMetadataFile) Close() error {
	err := f.f.Close()
	os.Remove(f.path)
	return err
}
