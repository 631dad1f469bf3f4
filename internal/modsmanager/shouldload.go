// Package modsmanager implements the mods manager (C10, spec.md §4.10):
// construct/load every eligible mod on startup, and recompute eligibility
// on a reload, diffing the result against what is currently loaded.
package modsmanager

import (
	"github.com/ramensoftware/windhawk-go/api"
	"github.com/ramensoftware/windhawk-go/internal/pattern"
	"github.com/ramensoftware/windhawk-go/internal/procscan"
)

// Patterns is one mod's Include/IncludeCustom/Exclude/ExcludeCustom
// configuration, plus the engine-wide override that excludes the plain
// Include/Exclude sets (spec.md §4.10's "!IncludeExcludeCustomOnly").
type Patterns struct {
	Include                  pattern.Set
	IncludeCustom            pattern.Set
	Exclude                  pattern.Set
	ExcludeCustom            pattern.Set
	IncludeExcludeCustomOnly bool
}

// Descriptor is one mod's config plus its compiled patterns, as produced
// by enumerating mod metadata files.
type Descriptor struct {
	Name         string
	Disabled     bool
	Architecture string // pattern tag, empty = any
	Patterns     Patterns
	// Path is the absolute path to the mod's compiled DLL for this host's
	// architecture (app_data/Mods/{32,64,arm64}/<name>.dll, spec.md §3),
	// resolved by the enumerator that builds this Descriptor.
	Path string
}

// ShouldLoadInRunningProcess implements spec.md §4.10's composition,
// short-circuiting in the documented order.
func ShouldLoadInRunningProcess(d Descriptor, hostArch api.Architecture, processPath string, skipCriticalProcessCheck bool) bool {
	if d.Disabled {
		return false
	}
	if d.Architecture != "" && !hostArch.MatchesTag(d.Architecture) {
		return false
	}
	if !skipCriticalProcessCheck && procscan.IsCriticalProcess(processPath) {
		return false
	}

	included := (!d.Patterns.IncludeExcludeCustomOnly && d.Patterns.Include.Matches(processPath)) ||
		d.Patterns.IncludeCustom.Matches(processPath)
	if !included {
		return false
	}

	excluded := (!d.Patterns.IncludeExcludeCustomOnly && d.Patterns.Exclude.Matches(processPath)) ||
		d.Patterns.ExcludeCustom.Matches(processPath)
	return !excluded
}
