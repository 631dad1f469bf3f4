package procscan

import (
	"path/filepath"
	"strings"
)

// criticalProcessNames is the hard-coded critical-process list (spec.md
// §4.10): mods may not be enabled inside these regardless of user patterns,
// unless an explicit override flag is set.
var criticalProcessNames = []string{
	"csrss.exe",
	"wininit.exe",
	"winlogon.exe",
	"services.exe",
	"lsass.exe",
	"smss.exe",
	"svchost.exe",
	"dwm.exe",
	"audiodg.exe",
	"fontdrvhost.exe",
	"registry",
	"memory compression",
}

// IsCriticalProcess reports whether imagePath names a process on the
// hard-coded critical list, matched by filename only, case-insensitively.
func IsCriticalProcess(imagePath string) bool {
	name := strings.ToLower(filepath.Base(imagePath))
	for _, c := range criticalProcessNames {
		if name == c {
			return true
		}
	}
	return false
}
