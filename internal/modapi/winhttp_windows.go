//go:build windows

package modapi

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

// modwinhttp is resolved lazily rather than imported via a package-level Go
// binding: the engine must not carry a static import on winhttp.dll so it
// still loads inside sandboxed processes that block it (spec.md §4.9
// "get_url_content"), the same NewLazySystemDLL-plus-NewProc idiom used for
// undocumented exports elsewhere in this module (see
// internal/interceptor's CreateProcessInternalW resolution).
var (
	modwinhttp = windows.NewLazySystemDLL("winhttp.dll")

	procWinHttpOpen            = modwinhttp.NewProc("WinHttpOpen")
	procWinHttpConnect         = modwinhttp.NewProc("WinHttpConnect")
	procWinHttpOpenRequest     = modwinhttp.NewProc("WinHttpOpenRequest")
	procWinHttpSendRequest     = modwinhttp.NewProc("WinHttpSendRequest")
	procWinHttpReceiveResponse = modwinhttp.NewProc("WinHttpReceiveResponse")
	procWinHttpQueryDataAvail  = modwinhttp.NewProc("WinHttpQueryDataAvailable")
	procWinHttpReadData        = modwinhttp.NewProc("WinHttpReadData")
	procWinHttpCloseHandle     = modwinhttp.NewProc("WinHttpCloseHandle")
)

const (
	winHTTPAccessTypeDefaultProxy = 0
	winHTTPFlagSecure             = 0x00800000
)

// WinHTTPFetcher implements URLFetcher over the dynamically-resolved WinHTTP
// API (spec.md §4.9 "get_url_content": "Synchronous HTTP GET via WinHTTP").
type WinHTTPFetcher struct{}

func (WinHTTPFetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	var out []byte
	err := winHTTPGet(rawURL, func(chunk []byte) error {
		out = append(out, chunk...)
		return nil
	})
	return out, err
}

func (WinHTTPFetcher) GetToFile(ctx context.Context, rawURL, destPath string) error {
	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("modapi: creating %s: %w", destPath, err)
	}
	defer f.Close()
	return winHTTPGet(rawURL, func(chunk []byte) error {
		_, err := f.Write(chunk)
		return err
	})
}

func winHTTPGet(rawURL string, onChunk func([]byte) error) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("modapi: parsing url %q: %w", rawURL, err)
	}
	secure := u.Scheme == "https"

	session, _, _ := procWinHttpOpen.Call(
		uintptr(unsafe.Pointer(windows.StringToUTF16Ptr("windhawk"))),
		uintptr(winHTTPAccessTypeDefaultProxy),
		0, 0, 0,
	)
	if session == 0 {
		return fmt.Errorf("modapi: WinHttpOpen failed")
	}
	defer procWinHttpCloseHandle.Call(session)

	port := 80
	if secure {
		port = 443
	}
	connect, _, _ := procWinHttpConnect.Call(
		session,
		uintptr(unsafe.Pointer(windows.StringToUTF16Ptr(u.Hostname()))),
		uintptr(port),
		0,
	)
	if connect == 0 {
		return fmt.Errorf("modapi: WinHttpConnect failed for %s", u.Hostname())
	}
	defer procWinHttpCloseHandle.Call(connect)

	path := u.EscapedPath()
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	var flags uintptr
	if secure {
		flags = winHTTPFlagSecure
	}
	request, _, _ := procWinHttpOpenRequest.Call(
		connect,
		uintptr(unsafe.Pointer(windows.StringToUTF16Ptr("GET"))),
		uintptr(unsafe.Pointer(windows.StringToUTF16Ptr(path))),
		0, 0, 0,
		flags,
	)
	if request == 0 {
		return fmt.Errorf("modapi: WinHttpOpenRequest failed")
	}
	defer procWinHttpCloseHandle.Call(request)

	ok, _, _ := procWinHttpSendRequest.Call(request, 0, 0, 0, 0, 0, 0)
	if ok == 0 {
		return fmt.Errorf("modapi: WinHttpSendRequest failed")
	}
	ok, _, _ = procWinHttpReceiveResponse.Call(request, 0)
	if ok == 0 {
		return fmt.Errorf("modapi: WinHttpReceiveResponse failed")
	}

	for {
		var avail uint32
		ok, _, _ := procWinHttpQueryDataAvail.Call(request, uintptr(unsafe.Pointer(&avail)))
		if ok == 0 {
			return fmt.Errorf("modapi: WinHttpQueryDataAvailable failed")
		}
		if avail == 0 {
			return nil
		}
		buf := make([]byte, avail)
		var read uint32
		ok, _, _ = procWinHttpReadData.Call(
			request,
			uintptr(unsafe.Pointer(&buf[0])),
			uintptr(avail),
			uintptr(unsafe.Pointer(&read)),
		)
		if ok == 0 {
			return fmt.Errorf("modapi: WinHttpReadData failed")
		}
		if err := onChunk(buf[:read]); err != nil {
			return err
		}
	}
}
