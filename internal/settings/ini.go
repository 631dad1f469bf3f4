package settings

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/ini.v1"
)

// iniStore is the INI backend of spec.md §4.1. One section maps to one
// "[SectionName]"; every value is stored as a string. Integers round-trip
// via decimal formatting; bytes round-trip via uppercase hex pairs with no
// separator (spec.md §3) — an odd-length hex string is a storage-io fault on
// read, never a silent truncation.
//
// Grounded on gopkg.in/ini.v1, the library vendored by several repos in the
// retrieval pack for exactly this kind of flat key/value config
// (DataDog-datadog-agent, k3s-io-k3s, grafana-k6 all require it).
type iniStore struct {
	mu   sync.Mutex
	path string
}

// NewINIStore opens (without yet creating) the INI file at path.
func NewINIStore(path string) Store {
	return &iniStore{path: path}
}

// load reads the file if present, or returns a fresh empty ini.File if it
// does not exist yet — matching GetPrivateProfileString's tolerance of a
// missing file on read.
func (s *iniStore) load() (*ini.File, bool, error) {
	_, err := os.Stat(s.path)
	if os.IsNotExist(err) {
		f := ini.Empty()
		return f, false, nil
	} else if err != nil {
		return nil, false, fmt.Errorf("%w: stat %s: %v", ErrStorageIO, s.path, err)
	}
	f, err := ini.LoadSources(ini.LoadOptions{AllowBooleanKeys: true}, s.path)
	if err != nil {
		return nil, false, fmt.Errorf("%w: load %s: %v", ErrStorageIO, s.path, err)
	}
	return f, true, nil
}

// save writes the file back. On first write to a non-existent file, the
// platform backend would stamp a UTF-16LE BOM so GetPrivateProfileString
// treats it as Unicode; since this backend never calls that Win32 API
// directly, it instead writes a UTF-8 BOM ahead of ini.v1's output, which is the
// closest portable equivalent and is still round-trip-stable for every
// value this store ever writes (decimal digits and uppercase hex are pure
// ASCII). See DESIGN.md, "Open Question: INI BOM".
func (s *iniStore) save(f *ini.File, existed bool) error {
	if !existed {
		if err := os.MkdirAll(dirOf(s.path), 0o700); err != nil {
			return fmt.Errorf("%w: mkdir for %s: %v", ErrStorageIO, s.path, err)
		}
		out, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666)
		if err != nil {
			return fmt.Errorf("%w: save %s: %v", ErrStorageIO, s.path, err)
		}
		defer out.Close()
		if _, err := out.WriteString("\xef\xbb\xbf"); err != nil {
			return fmt.Errorf("%w: save %s: %v", ErrStorageIO, s.path, err)
		}
		if _, err := f.WriteTo(out); err != nil {
			return fmt.Errorf("%w: save %s: %v", ErrStorageIO, s.path, err)
		}
		return nil
	}
	if err := f.SaveTo(s.path); err != nil {
		return fmt.Errorf("%w: save %s: %v", ErrStorageIO, s.path, err)
	}
	return nil
}

func dirOf(p string) string {
	i := strings.LastIndexAny(p, `/\`)
	if i < 0 {
		return "."
	}
	return p[:i]
}

func (s *iniStore) GetInt(section, name string) (int32, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, _, err := s.load()
	if err != nil {
		return 0, false, err
	}
	sec := f.Section(section)
	if !sec.HasKey(name) {
		return 0, false, nil
	}
	raw := sec.Key(name).String()
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 32)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %s/%s is not an integer: %v", ErrStorageIO, section, name, err)
	}
	return int32(v), true, nil
}

func (s *iniStore) SetInt(section, name string, value int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, existed, err := s.load()
	if err != nil {
		return err
	}
	f.Section(section).Key(name).SetValue(strconv.FormatInt(int64(value), 10))
	return s.save(f, existed)
}

func (s *iniStore) GetString(section, name string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, _, err := s.load()
	if err != nil {
		return "", false, err
	}
	sec := f.Section(section)
	if !sec.HasKey(name) {
		return "", false, nil
	}
	return sec.Key(name).String(), true, nil
}

func (s *iniStore) SetString(section, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, existed, err := s.load()
	if err != nil {
		return err
	}
	f.Section(section).Key(name).SetValue(value)
	return s.save(f, existed)
}

func (s *iniStore) GetBinary(section, name string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, _, err := s.load()
	if err != nil {
		return nil, false, err
	}
	sec := f.Section(section)
	if !sec.HasKey(name) {
		return nil, false, nil
	}
	raw := sec.Key(name).String()
	if len(raw)%2 != 0 {
		return nil, false, fmt.Errorf("%w: %s/%s has odd-length hex payload", ErrStorageIO, section, name)
	}
	decoded, err := hex.DecodeString(strings.ToUpper(raw))
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s/%s is not valid hex: %v", ErrStorageIO, section, name, err)
	}
	return decoded, true, nil
}

func (s *iniStore) SetBinary(section, name string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, existed, err := s.load()
	if err != nil {
		return err
	}
	f.Section(section).Key(name).SetValue(strings.ToUpper(hex.EncodeToString(value)))
	return s.save(f, existed)
}

func (s *iniStore) Remove(section, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, existed, err := s.load()
	if err != nil {
		return err
	}
	if !existed {
		return nil
	}
	f.Section(section).DeleteKey(name)
	return s.save(f, existed)
}

func (s *iniStore) RemoveSection(section string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, existed, err := s.load()
	if err != nil {
		return err
	}
	if !existed {
		return nil
	}
	f.DeleteSection(section)
	return s.save(f, existed)
}

func (s *iniStore) EnumIntValues(section string) ([]string, error) {
	return s.enumKindMatching(section, func(raw string) bool {
		_, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 32)
		return err == nil
	})
}

func (s *iniStore) EnumStringValues(section string) ([]string, error) {
	// Every INI value is string-backed, so this enumerates every key in
	// section; callers wanting only "genuinely stringy" values should use
	// GetInt/GetBinary to filter, same as the registry backend does
	// implicitly via value type.
	return s.enumKindMatching(section, func(string) bool { return true })
}

func (s *iniStore) enumKindMatching(section string, match func(string) bool) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, existed, err := s.load()
	if err != nil {
		return nil, err
	}
	if !existed || !f.HasSection(section) {
		return nil, nil
	}
	var names []string
	for _, k := range f.Section(section).Keys() {
		if match(k.String()) {
			names = append(names, k.Name())
		}
	}
	return names, nil
}
