//go:build windows

package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"

	winio "github.com/Microsoft/go-winio"
)

// Server accepts connections on the engine's named pipe and dispatches
// each newline-delimited request to a Handler.
type Server struct {
	listener net.Listener
	handler  Handler
}

// Listen opens the named pipe for pid, restricted to its owner (the engine
// session and the CLI invoking it always run as the same user in this
// exercise's threat model; spec.md's Non-goals exclude cross-user IPC
// hardening). Grounded on winio.ListenPipe/PipeConfig as used by
// moby-moby's own named-pipe integration test.
func Listen(pid uint32, h Handler) (*Server, error) {
	l, err := winio.ListenPipe(PipeName(pid), &winio.PipeConfig{
		SecurityDescriptor: "D:P(A;;GA;;;OW)",
	})
	if err != nil {
		return nil, fmt.Errorf("ipc: listening on %s: %w", PipeName(pid), err)
	}
	return &Server{listener: l, handler: h}, nil
}

// Serve accepts connections until Close is called.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return err
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	enc := json.NewEncoder(conn)
	for scanner.Scan() {
		var req Request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			enc.Encode(Response{Error: fmt.Sprintf("malformed request: %v", err)}) //nolint:errcheck // best-effort reply on a malformed line
			continue
		}
		enc.Encode(Dispatch(s.handler, req)) //nolint:errcheck // client disconnecting mid-reply is not actionable here
	}
}

// Close stops accepting connections.
func (s *Server) Close() error { return s.listener.Close() }
