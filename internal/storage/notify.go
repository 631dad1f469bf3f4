package storage

import "path/filepath"

// ModConfigChangeNotification is the reusable one-shot change handle from
// spec.md §4.2: a waitable signal that fires once when the Mods
// configuration changes, then must be rearmed with ContinueMonitoring.
type ModConfigChangeNotification interface {
	// Handle returns a channel that receives a value exactly once per
	// armed period, when the watched configuration changes.
	Handle() <-chan struct{}

	// ContinueMonitoring rearms the notification after it has fired.
	ContinueMonitoring() error

	// CanMonitorAcrossThreads reports whether delivery to Handle() is
	// thread-agnostic. The registry backend can answer false on pre-Win8
	// hosts (spec.md §4.2); the portable (fsnotify) backend is always true.
	CanMonitorAcrossThreads() bool

	// Close releases the underlying OS resources.
	Close() error
}

// NewModConfigChangeNotification opens the ModConfigChangeNotification
// matching p's portability mode, watching app_data/Mods (portable) or
// <RegistryKey>\Mods (registry), analogous to EnumModNames/ModSettingsStore's
// own portable-vs-registry dispatch.
func NewModConfigChangeNotification(p *Paths) (ModConfigChangeNotification, error) {
	if p.Portable {
		return NewPortableModConfigChangeNotification(filepath.Join(p.AppData, "Mods"))
	}
	return newRegistryModConfigChangeNotification(p)
}
