package symbols

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCacheEntryS4(t *testing.T) {
	raw := "1#kernel32.dll#12345-67890#SymbolA#16#SymbolB#"
	entry, err := ParseCacheEntry(raw, false)
	require.NoError(t, err)
	require.Equal(t, "kernel32.dll", entry.FileName)
	require.EqualValues(t, 12345, entry.Timestamp)
	require.EqualValues(t, 67890, entry.ImageSize)
	require.Len(t, entry.Symbols, 2)

	a, ok := entry.Lookup("SymbolA")
	require.True(t, ok)
	require.NotNil(t, a.Offset)
	require.EqualValues(t, 16, *a.Offset)

	b, ok := entry.Lookup("SymbolB")
	require.True(t, ok)
	require.Nil(t, b.Offset)
}

func TestCacheEntryFormatRoundTrip(t *testing.T) {
	off := uint64(16)
	entry := &CacheEntry{
		FileName:  "kernel32.dll",
		Timestamp: 12345,
		ImageSize: 67890,
		Symbols: []SymbolEntry{
			{Name: "SymbolA", Offset: &off},
			{Name: "SymbolB"},
		},
	}
	formatted := entry.Format()
	require.Equal(t, "1#kernel32.dll#12345-67890#SymbolA#16#SymbolB#", formatted)

	parsed, err := ParseCacheEntry(formatted, false)
	require.NoError(t, err)
	require.Equal(t, entry.FileName, parsed.FileName)
	require.Equal(t, entry.Symbols, parsed.Symbols)
}

func TestCacheEntryHybridSeparator(t *testing.T) {
	entry := &CacheEntry{Hybrid: true, FileName: "hybrid.dll", Timestamp: 1, ImageSize: 2}
	formatted := entry.Format()
	require.Contains(t, formatted, ";")
	require.NotContains(t, formatted, "#")

	_, err := ParseCacheEntry(formatted, false)
	require.Error(t, err)
}

func TestCacheKeyWithHybridSuffix(t *testing.T) {
	key := CacheKey(PDBSignature{GUID: "aaaaaaaabbbbccccddddeeeeeeeeeeee", Age: 3}, "")
	require.Equal(t, "pdb_AAAAAAAABBBBCCCCDDDDEEEEEEEEEEEE3", key)

	withHybrid := CacheKey(PDBSignature{GUID: "aaaaaaaabbbbccccddddeeeeeeeeeeee", Age: 3}, "ARM64")
	require.Equal(t, "pdb_AAAAAAAABBBBCCCCDDDDEEEEEEEEEEEE3_hybrid-ARM64", withHybrid)
}

func TestFallbackCacheKey(t *testing.T) {
	key := FallbackCacheKey(FallbackIdentity{Arch: "x64", Timestamp: 100, ImageSize: 200, FileName: "foo.dll"}, true)
	require.Equal(t, "pe_x64_100_200_foo.dll_hybrid", key)
}

func TestOnlineCacheURLDefault(t *testing.T) {
	url := OnlineCacheURL("", "demo-mod", "pdb_AAAA3")
	require.Equal(t, "https://ramensoftware.github.io/windhawk-mod-symbol-cache/demo-mod/pdb_AAAA3.txt", url)
}
