//go:build !windows

package settings

import "github.com/ramensoftware/windhawk-go/api"

// NewRegistryStore is unavailable off Windows; every method on the returned
// Store fails with api.ErrUnsupportedPlatform.
func NewRegistryStore(root uintptr, base string) Store {
	return unsupportedStore{}
}

type unsupportedStore struct{}

func (unsupportedStore) GetInt(string, string) (int32, bool, error) {
	return 0, false, api.ErrUnsupportedPlatform
}
func (unsupportedStore) SetInt(string, string, int32) error { return api.ErrUnsupportedPlatform }
func (unsupportedStore) GetString(string, string) (string, bool, error) {
	return "", false, api.ErrUnsupportedPlatform
}
func (unsupportedStore) SetString(string, string, string) error { return api.ErrUnsupportedPlatform }
func (unsupportedStore) GetBinary(string, string) ([]byte, bool, error) {
	return nil, false, api.ErrUnsupportedPlatform
}
func (unsupportedStore) SetBinary(string, string, []byte) error { return api.ErrUnsupportedPlatform }
func (unsupportedStore) Remove(string, string) error            { return api.ErrUnsupportedPlatform }
func (unsupportedStore) RemoveSection(string) error             { return api.ErrUnsupportedPlatform }
func (unsupportedStore) EnumIntValues(string) ([]string, error) {
	return nil, api.ErrUnsupportedPlatform
}
func (unsupportedStore) EnumStringValues(string) ([]string, error) {
	return nil, api.ErrUnsupportedPlatform
}

// ParseRegistryKey/ParseRegistryRoot/EnumSubkeyNames are unavailable off
// Windows; the root type degrades to uintptr, matching NewRegistryStore's
// own non-Windows signature above.
func ParseRegistryKey(full string) (uintptr, string, error) {
	return 0, "", api.ErrUnsupportedPlatform
}

func ParseRegistryRoot(name string) (uintptr, error) {
	return 0, api.ErrUnsupportedPlatform
}

func EnumSubkeyNames(root uintptr, base string) ([]string, error) {
	return nil, api.ErrUnsupportedPlatform
}
