package settings

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestINIStoreIntRoundTrip(t *testing.T) {
	s := NewINIStore(filepath.Join(t.TempDir(), "settings.ini"))
	require.NoError(t, s.SetInt("Mods", "Enabled", -42))
	v, ok, err := s.GetInt("Mods", "Enabled")
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, -42, v)
}

func TestINIStoreBinaryHexRoundTrip(t *testing.T) {
	s := NewINIStore(filepath.Join(t.TempDir(), "settings.ini"))
	payload := []byte{0x00, 0xAB, 0xCD, 0xEF, 0x01}
	require.NoError(t, s.SetBinary("demo-mod", "Blob", payload))

	got, ok, err := s.GetBinary("demo-mod", "Blob")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, payload, got)
}

func TestINIStoreOddLengthHexIsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.ini")
	s := NewINIStore(path)
	require.NoError(t, s.SetString("demo-mod", "Blob", "ABC"))

	_, _, err := s.GetBinary("demo-mod", "Blob")
	require.ErrorIs(t, err, ErrStorageIO)
}

func TestINIStoreMissingValueIsNotAnError(t *testing.T) {
	s := NewINIStore(filepath.Join(t.TempDir(), "settings.ini"))
	_, ok, err := s.GetInt("absent", "nope")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestINIStoreEnumIntValues(t *testing.T) {
	s := NewINIStore(filepath.Join(t.TempDir(), "settings.ini"))
	require.NoError(t, s.SetInt("Mods", "A", 1))
	require.NoError(t, s.SetInt("Mods", "B", 2))
	require.NoError(t, s.SetString("Mods", "C", "not an int"))

	names, err := s.EnumIntValues("Mods")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"A", "B"}, names)
}

func TestINIStoreRemoveSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.ini")
	s := NewINIStore(path)
	require.NoError(t, s.SetInt("Mods", "A", 1))
	require.NoError(t, s.RemoveSection("Mods"))

	_, ok, err := s.GetInt("Mods", "A")
	require.NoError(t, err)
	require.False(t, ok)
}
