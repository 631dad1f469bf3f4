//go:build !windows

package ipc

import "github.com/ramensoftware/windhawk-go/api"

// Server is the non-Windows stub; named pipes are a Win32-only concept
// here (spec.md §4.3, Non-goals).
type Server struct{}

func Listen(pid uint32, h Handler) (*Server, error) { return nil, api.ErrUnsupportedPlatform }

func (s *Server) Serve() error { return api.ErrUnsupportedPlatform }

func (s *Server) Close() error { return api.ErrUnsupportedPlatform }
