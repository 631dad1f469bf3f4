package modapi

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ramensoftware/windhawk-go/internal/symbols"
)

func TestApplyCacheEntryResolvesAllNonOptional(t *testing.T) {
	offsetA := uint64(16)
	entry := &symbols.CacheEntry{
		FileName: "kernel32.dll",
		Symbols: []symbols.SymbolEntry{
			{Name: "SymbolA", Offset: &offsetA},
			{Name: "SymbolB", Offset: nil},
		},
	}
	specs := []HookSpec{
		{Name: "SymbolA"},
		{Name: "SymbolB", Optional: true},
	}
	require.True(t, applyCacheEntry(entry, specs))
	require.NotNil(t, specs[0].resolvedOffset)
	require.Equal(t, uint64(16), *specs[0].resolvedOffset)
	require.Nil(t, specs[1].resolvedOffset)
}

func TestApplyCacheEntryFailsOnMissingRequiredSymbol(t *testing.T) {
	entry := &symbols.CacheEntry{
		FileName: "kernel32.dll",
		Symbols: []symbols.SymbolEntry{
			{Name: "SymbolA", Offset: nil},
		},
	}
	specs := []HookSpec{{Name: "SymbolA", Optional: false}}
	require.False(t, applyCacheEntry(entry, specs))
}

func TestApplyCacheEntryFailsWhenSymbolAbsentFromCache(t *testing.T) {
	entry := &symbols.CacheEntry{FileName: "kernel32.dll"}
	specs := []HookSpec{{Name: "SymbolA"}}
	require.False(t, applyCacheEntry(entry, specs))
}

func TestCacheEntryStorageRoundTrip(t *testing.T) {
	m := newTestMod()
	offset := uint64(128)
	entry := &symbols.CacheEntry{
		FileName:  "kernel32.dll",
		Timestamp: 12345,
		ImageSize: 67890,
		Symbols:   []symbols.SymbolEntry{{Name: "SymbolA", Offset: &offset}},
	}
	m.writeCacheEntry("pdb_ABCDEF1", entry)

	got, ok := m.readCacheEntry("pdb_ABCDEF1", false)
	require.True(t, ok)
	require.Equal(t, entry.FileName, got.FileName)
	s, ok := got.Lookup("SymbolA")
	require.True(t, ok)
	require.Equal(t, offset, *s.Offset)
}

func TestQueueSpecsComputesAbsoluteAddress(t *testing.T) {
	engine := &fakeEngine{}
	m := newTestMod()
	m.engine = engine
	require.NoError(t, m.Init())

	offset := uint64(0x20)
	var original uintptr
	specs := []HookSpec{{Name: "SymbolA", Hook: 0x9999, Original: &original, resolvedOffset: &offset}}

	require.NoError(t, m.queueSpecs(specs, 0x400000))
	require.NoError(t, m.ApplyHookOperations())
	require.Equal(t, []uintptr{0x400020}, engine.hooked)
}
