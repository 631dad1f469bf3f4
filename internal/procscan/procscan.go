// Package procscan implements the all-processes scanner (C6, spec.md §4.6):
// walks every live process, applies include/exclude/thread-attach-exempt
// patterns from the engine settings, and drives internal/inject for each
// target that should be injected.
package procscan

import "github.com/ramensoftware/windhawk-go/internal/pattern"

// Patterns bundles the three pattern sets §4.6 reads from engine settings.
type Patterns struct {
	Include            pattern.Set
	Exclude            pattern.Set
	ThreadAttachExempt pattern.Set
}

// Decision is the per-process outcome of applying Patterns to an image path.
type Decision struct {
	Skip               bool
	ThreadAttachExempt bool
}

// Decide applies spec.md §4.6 step 3: skip if Exclude matches and Include
// does not; otherwise compute whether ThreadAttachExempt matches.
func Decide(p Patterns, imagePath string) Decision {
	if p.Exclude.Matches(imagePath) && !p.Include.Matches(imagePath) {
		return Decision{Skip: true}
	}
	return Decision{
		Skip:               false,
		ThreadAttachExempt: p.ThreadAttachExempt.Matches(imagePath),
	}
}

// Options configures one scan sweep.
type Options struct {
	SkipCriticalProcesses bool
	Patterns              Patterns
	// OrchPID identifies the namespace the per-pid APC mutexes live in.
	OrchPID uint32
}
