//go:build !windows

package procscan

import "github.com/ramensoftware/windhawk-go/api"

// Scanner is the non-Windows stub; process scanning is a Win32-only concern.
type Scanner struct{}

func New(opts Options) (*Scanner, error) { return nil, api.ErrUnsupportedPlatform }

func (s *Scanner) Close() error { return nil }

func (s *Scanner) Sweep(engineDLLPath string, logVerbosity int32) error {
	return api.ErrUnsupportedPlatform
}
