//go:build windows

package storage

import "golang.org/x/sys/windows"

// knownFolderProgramData asks the shell for FOLDERID_ProgramData, the
// SHGetKnownFolderPath fallback named in spec.md §4.2 step 3b.
func knownFolderProgramData() string {
	path, err := windows.KnownFolderPath(windows.FOLDERID_ProgramData, windows.KF_FLAG_DEFAULT)
	if err != nil {
		return ""
	}
	return path
}
