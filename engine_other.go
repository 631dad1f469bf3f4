//go:build !windows

package windhawk

import (
	"github.com/ramensoftware/windhawk-go/api"
	"github.com/ramensoftware/windhawk-go/internal/session"
)

func (e *Engine) currentProcessID() (uint32, error) {
	return 0, api.ErrUnsupportedPlatform
}

func (e *Engine) buildSessionConfig(args InjectInitArgs) (session.Config, error) {
	return session.Config{}, api.ErrUnsupportedPlatform
}
