//go:build !windows

package modapi

import (
	"context"

	"github.com/ramensoftware/windhawk-go/api"
)

// WinHTTPFetcher stub: WinHTTP has no portable equivalent off Windows.
type WinHTTPFetcher struct{}

func (WinHTTPFetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	return nil, api.ErrUnsupportedPlatform
}

func (WinHTTPFetcher) GetToFile(ctx context.Context, rawURL, destPath string) error {
	return api.ErrUnsupportedPlatform
}
