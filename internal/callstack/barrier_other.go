//go:build !windows

package callstack

import "github.com/ramensoftware/windhawk-go/api"

// ThreadScanner stub: stack-frame scanning is inherently Windows-specific.
type ThreadScanner struct{}

func NewThreadScanner() *ThreadScanner { return &ThreadScanner{} }

func (s *ThreadScanner) AnyThreadInRegions(regions []Region) (bool, error) {
	return false, api.ErrUnsupportedPlatform
}
