package modapi

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/ramensoftware/windhawk-go/api"
	"github.com/ramensoftware/windhawk-go/internal/logging"
)

// memStore is a minimal in-memory settings.Store for tests.
type memStore struct {
	ints    map[string]int32
	strings map[string]string
	binary  map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{ints: map[string]int32{}, strings: map[string]string{}, binary: map[string][]byte{}}
}

func key(section, name string) string { return section + "\x00" + name }

func (s *memStore) GetInt(section, name string) (int32, bool, error) {
	v, ok := s.ints[key(section, name)]
	return v, ok, nil
}
func (s *memStore) SetInt(section, name string, value int32) error {
	s.ints[key(section, name)] = value
	return nil
}
func (s *memStore) GetString(section, name string) (string, bool, error) {
	v, ok := s.strings[key(section, name)]
	return v, ok, nil
}
func (s *memStore) SetString(section, name, value string) error {
	s.strings[key(section, name)] = value
	return nil
}
func (s *memStore) GetBinary(section, name string) ([]byte, bool, error) {
	v, ok := s.binary[key(section, name)]
	return v, ok, nil
}
func (s *memStore) SetBinary(section, name string, value []byte) error {
	s.binary[key(section, name)] = value
	return nil
}
func (s *memStore) Remove(section, name string) error {
	delete(s.ints, key(section, name))
	delete(s.strings, key(section, name))
	delete(s.binary, key(section, name))
	return nil
}
func (s *memStore) RemoveSection(section string) error { return nil }
func (s *memStore) EnumIntValues(section string) ([]string, error) {
	return nil, nil
}
func (s *memStore) EnumStringValues(section string) ([]string, error) {
	return nil, nil
}

func newTestMod() *LoadedMod {
	logger := logging.New(logrus.New(), logging.Silent)
	return NewLoadedMod("demo-mod", api.HookIdentity(1), nil, newMemStore(), newMemStore(), logger)
}

func TestLifecycleHappyPath(t *testing.T) {
	m := newTestMod()
	require.Equal(t, api.StateCreated, m.State())

	require.NoError(t, m.Init())
	require.Equal(t, api.StateInitialized, m.State())
	require.True(t, m.HooksAllowed())

	require.NoError(t, m.AfterInit())
	require.True(t, m.HooksAllowed())

	require.NoError(t, m.BeforeUninit())
	require.False(t, m.HooksAllowed())

	require.NoError(t, m.Uninit())
	require.NoError(t, m.Destroy())
}

func TestLifecycleRejectsOutOfOrderTransition(t *testing.T) {
	m := newTestMod()
	err := m.AfterInit()
	require.ErrorIs(t, err, api.ErrModLifecycle)
}

func TestCodeRange(t *testing.T) {
	m := newTestMod()
	m.SetModule(0x10000, 0x2000)
	base, end := m.CodeRange()
	require.Equal(t, uintptr(0x10000), base)
	require.Equal(t, uintptr(0x12000), end)
}
