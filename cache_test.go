package windhawk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ramensoftware/windhawk-go/internal/storage"
	"github.com/ramensoftware/windhawk-go/internal/symbols"
)

func newTestPaths(t *testing.T) *storage.Paths {
	t.Helper()
	dir := t.TempDir()
	writeEngineINI(t, dir, "[Storage]\nAppDataPath = "+filepath.Join(dir, "data")+"\nPortable = 1\n")
	cfg, err := LoadConfig(dir, 0)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.Paths.AppData, "ModsWritable"), 0o755))
	return cfg.Paths
}

func TestSymbolCacheRoundTrip(t *testing.T) {
	offset := uint64(0x1234)
	entry := &symbols.CacheEntry{
		FileName:  "user32.dll",
		Timestamp: 0x5f000000,
		ImageSize: 0x100000,
		Symbols: []symbols.SymbolEntry{
			{Name: "DrawTextExW", Offset: &offset},
		},
	}

	cache := NewSymbolCache(newTestPaths(t))
	require.NoError(t, cache.Store("demo-mod", "key-1", entry))

	got, ok, err := cache.Lookup("demo-mod", "key-1", false)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, entry.FileName, got.FileName)
	require.Equal(t, entry.Symbols[0].Name, got.Symbols[0].Name)
}

func TestSymbolCacheLookupMiss(t *testing.T) {
	cache := NewSymbolCache(newTestPaths(t))
	_, ok, err := cache.Lookup("demo-mod", "unknown-key", false)
	require.NoError(t, err)
	require.False(t, ok)
}
