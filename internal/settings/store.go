// Package settings implements the portable key/value store described in
// spec.md §4.1 (C1): uniform get/set/enum access over either a registry
// subtree or an INI file, bit-compatible on round-trip between the two.
package settings

import "errors"

// ErrStorageIO wraps any underlying registry or file IO fault. Absent values
// are never errors — every getter returns ok=false instead.
var ErrStorageIO = errors.New("settings: storage io fault")

// Store is one rooted settings tree. A Store is safe for concurrent use.
//
// Implementations: registryStore (Windows registry backend) and iniStore
// (INI file backend). Both satisfy identical round-trip semantics for the
// three value kinds described in spec.md §3.
type Store interface {
	// GetInt reads a 32-bit signed integer from name in section. If the
	// stored value is string-typed, it is parsed with standard C integer
	// semantics (strconv.ParseInt base 10, spec.md §4.1).
	GetInt(section, name string) (value int32, ok bool, err error)
	SetInt(section, name string, value int32) error

	// GetString reads a string from name in section. If the stored value
	// is integer-typed, it is read back by decimal formatting.
	GetString(section, name string) (value string, ok bool, err error)
	SetString(section, name string, value string) error

	// GetBinary reads an opaque byte buffer. Bytes are only ever readable
	// as bytes (spec.md §3): no fallback conversion from int or string.
	GetBinary(section, name string) (value []byte, ok bool, err error)
	SetBinary(section, name string, value []byte) error

	// Remove deletes one value. Removing an absent value is not an error.
	Remove(section, name string) error

	// RemoveSection deletes an entire section (and everything under it for
	// the registry backend). Removing an absent section is not an error.
	RemoveSection(section string) error

	// EnumIntValues and EnumStringValues enumerate the names of every
	// value of the given kind directly under section. Order is
	// backend-defined (spec.md §3).
	EnumIntValues(section string) ([]string, error)
	EnumStringValues(section string) ([]string, error)
}

// Kind discriminates the three value types a settings node can hold.
type Kind int

const (
	KindInt Kind = iota
	KindString
	KindBinary
)
