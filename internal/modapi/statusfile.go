package modapi

import (
	"fmt"
	"path/filepath"

	"github.com/ramensoftware/windhawk-go/api"
)

// MetadataFile is a mod-status or mod-task file held open for the lifetime
// of a loaded mod instance (spec.md §6): one line,
// "<host-exe-filename>|<status-or-task-line>", UTF-16LE, no BOM, no
// terminator, the entire file overwritten in place on each update. The
// handle auto-deletes the file on close so a crash-killed host process
// doesn't leave stale status behind for the orchestrator to trip over.
type MetadataFile interface {
	Update(line string) error
	Close() error
}

// StatusFilePath and TaskFilePath return the path
// ModsWritable/{mod-status,mod-task}/<instance-id> an orchestrator or mod
// runtime opens for this mod instance (spec.md §6).
func StatusFilePath(modsWritableRoot string, instance api.InstanceID) string {
	return filepath.Join(modsWritableRoot, "mod-status", string(instance))
}

func TaskFilePath(modsWritableRoot string, instance api.InstanceID) string {
	return filepath.Join(modsWritableRoot, "mod-task", string(instance))
}

// encodeMetadataLine formats the on-disk content: "<hostExeName>|<line>" as
// raw UTF-16LE code units, no BOM, no terminator.
func encodeMetadataLine(hostExeName, line string) []byte {
	text := hostExeName + "|" + line
	out := make([]byte, 0, len(text)*2)
	for _, r := range text {
		if r > 0xFFFF {
			r = '?' // status lines are plain ASCII in practice; no surrogate pairs needed.
		}
		out = append(out, byte(r), byte(r>>8))
	}
	return out
}

func newMetadataFileError(path string, err error) error {
	return fmt.Errorf("modapi: metadata file %s: %w", path, err)
}
