//go:build windows

package settings

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sys/windows/registry"
)

// registryStore is the registry backend of spec.md §4.1. One section maps
// to one registry key under root; REG_DWORD <-> int32, REG_SZ <-> string,
// REG_BINARY <-> []byte.
//
// Keys are always opened with the 64-bit view (registry.WOW64_64KEY)
// regardless of the caller's own architecture, so a 32-bit orchestrator and
// the 64-bit engine agree on one view of the tree (spec.md §4.1).
type registryStore struct {
	mu   sync.Mutex
	root registry.Key // e.g. registry.LOCAL_MACHINE
	base string       // e.g. `SOFTWARE\Windhawk`
}

// NewRegistryStore opens a store rooted at base under root (typically
// registry.LOCAL_MACHINE).
func NewRegistryStore(root registry.Key, base string) Store {
	return &registryStore{root: root, base: base}
}

// ParseRegistryKey splits a fully-qualified registry path, as stored in
// engine.ini's RegistryKey setting (spec.md §6, e.g.
// `HKEY_LOCAL_MACHINE\SOFTWARE\Windhawk`), into a root hive constant and the
// subkey path beneath it.
func ParseRegistryKey(full string) (registry.Key, string, error) {
	parts := strings.SplitN(full, `\`, 2)
	root, err := ParseRegistryRoot(parts[0])
	if err != nil {
		return 0, "", err
	}
	if len(parts) == 1 {
		return root, "", nil
	}
	return root, parts[1], nil
}

// ParseRegistryRoot maps a hive name to its registry.Key constant. Both the
// full ("HKEY_LOCAL_MACHINE") and abbreviated ("HKLM") spellings are
// accepted, matching how Windows tooling commonly renders hive roots.
func ParseRegistryRoot(name string) (registry.Key, error) {
	switch strings.ToUpper(name) {
	case "HKEY_LOCAL_MACHINE", "HKLM":
		return registry.LOCAL_MACHINE, nil
	case "HKEY_CURRENT_USER", "HKCU":
		return registry.CURRENT_USER, nil
	case "HKEY_CLASSES_ROOT", "HKCR":
		return registry.CLASSES_ROOT, nil
	case "HKEY_USERS", "HKU":
		return registry.USERS, nil
	case "HKEY_CURRENT_CONFIG", "HKCC":
		return registry.CURRENT_CONFIG, nil
	default:
		return 0, fmt.Errorf("%w: unrecognized registry hive %q", ErrStorageIO, name)
	}
}

// EnumSubkeyNames lists the immediate subkey names directly under base
// (e.g. the mod names under `<registrySubKey>\Mods`), used by the storage
// manager's registry-mode EnumMods (spec.md §4.10). Returns nil, nil if
// base does not exist.
func EnumSubkeyNames(root registry.Key, base string) ([]string, error) {
	k, err := registry.OpenKey(root, base, registry.ENUMERATE_SUB_KEYS|registry.WOW64_64KEY)
	if isNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, storageErr(err)
	}
	defer k.Close()
	names, err := k.ReadSubKeyNames(-1)
	if err != nil {
		return nil, storageErr(err)
	}
	return names, nil
}

func (s *registryStore) sectionPath(section string) string {
	if section == "" {
		return s.base
	}
	return s.base + `\` + section
}

func (s *registryStore) openRead(section string) (registry.Key, error) {
	k, err := registry.OpenKey(s.root, s.sectionPath(section), registry.QUERY_VALUE|registry.WOW64_64KEY)
	if err != nil {
		return 0, err
	}
	return k, nil
}

// openWrite opens (creating if absent) with write permission up front, per
// spec.md §4.1: "write operations open with write permission up front".
func (s *registryStore) openWrite(section string) (registry.Key, error) {
	k, _, err := registry.CreateKey(s.root, s.sectionPath(section), registry.SET_VALUE|registry.WOW64_64KEY)
	if err != nil {
		return 0, fmt.Errorf("%w: create key %s: %v", ErrStorageIO, s.sectionPath(section), err)
	}
	return k, nil
}

func (s *registryStore) GetInt(section, name string) (int32, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k, err := s.openRead(section)
	if isNotExist(err) {
		return 0, false, nil
	} else if err != nil {
		return 0, false, fmt.Errorf("%w: %v", ErrStorageIO, err)
	}
	defer k.Close()

	v, _, err := k.GetIntegerValue(name)
	if err == nil {
		return int32(v), true, nil
	}
	if err == registry.ErrUnexpectedType {
		// Integer may be read from a string-typed value by parsing with
		// standard C integer semantics (spec.md §4.1).
		str, _, serr := getStringRetrying(k, name)
		if serr != nil {
			return 0, false, storageErr(serr)
		}
		parsed, perr := strconv.ParseInt(strings.TrimSpace(str), 10, 32)
		if perr != nil {
			return 0, false, fmt.Errorf("%w: %s/%s is not an integer: %v", ErrStorageIO, section, name, perr)
		}
		return int32(parsed), true, nil
	}
	if isNotExist(err) {
		return 0, false, nil
	}
	return 0, false, storageErr(err)
}

func (s *registryStore) SetInt(section, name string, value int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, err := s.openWrite(section)
	if err != nil {
		return err
	}
	defer k.Close()
	if err := k.SetDWordValue(name, uint32(uint32(int32(value)))); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageIO, err)
	}
	return nil
}

func (s *registryStore) GetString(section, name string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k, err := s.openRead(section)
	if isNotExist(err) {
		return "", false, nil
	} else if err != nil {
		return "", false, storageErr(err)
	}
	defer k.Close()

	str, _, err := getStringRetrying(k, name)
	if err == nil {
		return str, true, nil
	}
	if err == registry.ErrUnexpectedType {
		// Strings may be read from an integer-typed value by decimal
		// formatting (spec.md §4.1).
		v, _, ierr := k.GetIntegerValue(name)
		if ierr != nil {
			return "", false, storageErr(ierr)
		}
		return strconv.FormatUint(v, 10), true, nil
	}
	if isNotExist(err) {
		return "", false, nil
	}
	return "", false, storageErr(err)
}

func (s *registryStore) SetString(section, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, err := s.openWrite(section)
	if err != nil {
		return err
	}
	defer k.Close()
	if err := k.SetStringValue(name, value); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageIO, err)
	}
	return nil
}

func (s *registryStore) GetBinary(section, name string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k, err := s.openRead(section)
	if isNotExist(err) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, storageErr(err)
	}
	defer k.Close()

	buf, _, err := getBinaryRetrying(k, name)
	if isNotExist(err) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, storageErr(err)
	}
	return buf, true, nil
}

func (s *registryStore) SetBinary(section, name string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, err := s.openWrite(section)
	if err != nil {
		return err
	}
	defer k.Close()
	if err := k.SetBinaryValue(name, value); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageIO, err)
	}
	return nil
}

func (s *registryStore) Remove(section, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, err := s.openRead(section)
	if isNotExist(err) {
		return nil
	} else if err != nil {
		return storageErr(err)
	}
	k.Close()

	k2, err := registry.OpenKey(s.root, s.sectionPath(section), registry.SET_VALUE|registry.WOW64_64KEY)
	if err != nil {
		return storageErr(err)
	}
	defer k2.Close()
	if err := k2.DeleteValue(name); err != nil && !isNotExist(err) {
		return storageErr(err)
	}
	return nil
}

func (s *registryStore) RemoveSection(section string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := registry.DeleteKey(s.root, s.sectionPath(section))
	if err != nil && !isNotExist(err) {
		return storageErr(err)
	}
	return nil
}

func (s *registryStore) EnumIntValues(section string) ([]string, error) {
	return s.enumKind(section, registry.DWORD)
}

func (s *registryStore) EnumStringValues(section string) ([]string, error) {
	return s.enumKind(section, registry.SZ)
}

func (s *registryStore) enumKind(section string, kind uint32) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k, err := s.openRead(section)
	if isNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, storageErr(err)
	}
	defer k.Close()

	// Fetch all value names of the section in one call with a growing
	// buffer, matching the platform API's enumeration convention (spec.md
	// §4.1), then inspect each value's type individually.
	names, err := k.ReadValueNames(-1)
	if err != nil {
		return nil, storageErr(err)
	}
	var out []string
	for _, name := range names {
		_, valType, err := k.GetValue(name, nil)
		if err != nil && err != registry.ErrShortBuffer {
			continue
		}
		if valType == kind {
			out = append(out, name)
		}
	}
	return out, nil
}

// getStringRetrying reads a REG_SZ value, re-querying on ERROR_MORE_DATA to
// tolerate a concurrent writer growing the value between the size probe and
// the read (spec.md §4.1).
func getStringRetrying(k registry.Key, name string) (string, uint32, error) {
	for {
		s, valType, err := k.GetStringValue(name)
		if err == registry.ErrShortBuffer {
			continue
		}
		return s, valType, err
	}
}

func getBinaryRetrying(k registry.Key, name string) ([]byte, uint32, error) {
	for {
		b, valType, err := k.GetBinaryValue(name)
		if err == registry.ErrShortBuffer {
			continue
		}
		return b, valType, err
	}
}

func isNotExist(err error) bool {
	return err == registry.ErrNotExist
}

func storageErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrStorageIO, err)
}
