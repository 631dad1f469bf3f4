package symbols

import (
	"fmt"
	"strings"
)

// PDBSignature identifies a binary by its debug-directory CodeView entry
// (spec.md §4.9 step 1, "Preferred: PDB signature GUID + age").
type PDBSignature struct {
	// GUID is the 16-byte CodeView signature, already hex-encoded without
	// braces or dashes (e.g. "AAAAAAAABBBBCCCCDDDDEEEEEEEEEEEE").
	GUID string
	Age  uint32
}

// FallbackIdentity identifies a binary when no PDB signature is available
// (spec.md §4.9 step 1, "Fallback").
type FallbackIdentity struct {
	Arch      string
	Timestamp uint32
	ImageSize uint32
	FileName  string
}

// CacheKey computes the preferred PDB-based key: "pdb_<hex><age>", with a
// "_hybrid-<arch>" suffix for hybrid modules.
func CacheKey(sig PDBSignature, hybridArch string) string {
	key := fmt.Sprintf("pdb_%s%d", strings.ToUpper(sig.GUID), sig.Age)
	if hybridArch != "" {
		key += "_hybrid-" + hybridArch
	}
	return key
}

// FallbackCacheKey computes the fallback key when no PDB signature is
// available: "pe_<arch>_<timestamp>_<imagesize>_<filename>", with a
// "_hybrid" suffix for hybrid modules.
func FallbackCacheKey(id FallbackIdentity, hybrid bool) string {
	key := fmt.Sprintf("pe_%s_%d_%d_%s", id.Arch, id.Timestamp, id.ImageSize, id.FileName)
	if hybrid {
		key += "_hybrid"
	}
	return key
}

// OnlineCacheURL returns the default online symbol-cache URL for a resolved
// cache key (spec.md §4.9 step 4). A non-empty modBaseURL override replaces
// the default host+path prefix, mod-name segment included; an explicitly
// disabled online cache is the caller's responsibility (mod-setting, not
// this function).
func OnlineCacheURL(modBaseURL, modName, cacheKey string) string {
	if modBaseURL != "" {
		return strings.TrimRight(modBaseURL, "/") + "/" + cacheKey + ".txt"
	}
	return fmt.Sprintf("https://ramensoftware.github.io/windhawk-mod-symbol-cache/%s/%s.txt", modName, cacheKey)
}
