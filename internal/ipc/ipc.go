// Package ipc implements the local control-plane protocol between the
// operator CLI (cmd/windhawkctl) and a running engine session (C11):
// newline-delimited JSON requests over a named pipe, each answered in turn
// with exactly one matching response; one connection may carry several.
package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// PipeName is the well-known pipe name for the engine session running in
// the process with the given pid. Grounded on moby-moby's own
// \\.\pipe\docker-cli-test-pipe-<id> naming convention for go-winio named
// pipes (integration-cli/docker_api_containers_windows_test.go).
func PipeName(pid uint32) string {
	return fmt.Sprintf(`\\.\pipe\windhawk-engine-%d`, pid)
}

// Command identifies one operation the engine's IPC server understands.
type Command string

const (
	CommandListMods    Command = "list-mods"
	CommandReload      Command = "reload"
	CommandDumpSession Command = "dump-session"
)

// Request is one message sent to the server.
type Request struct {
	ID      string  `json:"id"`
	Command Command `json:"command"`
}

// NewRequest stamps a fresh request with a random correlation id, so a
// client can check that the response it reads answers the request it sent.
func NewRequest(cmd Command) Request {
	return Request{ID: uuid.NewString(), Command: cmd}
}

// Response is the answer to a Request of the same ID.
type Response struct {
	ID    string          `json:"id"`
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// ModStatus is one entry of a CommandListMods response (spec.md §4.10).
type ModStatus struct {
	Name  string `json:"name"`
	State string `json:"state"`
}

// SessionStatus is the Data payload of a CommandDumpSession response
// (spec.md §4.11).
type SessionStatus struct {
	OrchPID uint32      `json:"orchPid"`
	Mods    []ModStatus `json:"mods"`
}

// Handler answers one IPC command against a live session. Implemented by
// the root engine package; kept as a collaborator interface here so this
// package never imports modsmanager/session directly.
type Handler interface {
	ListMods() ([]ModStatus, error)
	Reload() error
	DumpSession() (SessionStatus, error)
}

// Dispatch routes req to the matching Handler method and shapes the result
// into a Response, regardless of transport. Shared by the Windows server
// so the dispatch logic itself is platform-independent and testable.
func Dispatch(h Handler, req Request) Response {
	switch req.Command {
	case CommandListMods:
		mods, err := h.ListMods()
		return respond(req.ID, mods, err)
	case CommandReload:
		err := h.Reload()
		return respond(req.ID, nil, err)
	case CommandDumpSession:
		status, err := h.DumpSession()
		return respond(req.ID, status, err)
	default:
		return Response{ID: req.ID, Error: fmt.Sprintf("unknown command %q", req.Command)}
	}
}

func respond(id string, data interface{}, err error) Response {
	if err != nil {
		return Response{ID: id, Error: err.Error()}
	}
	if data == nil {
		return Response{ID: id, OK: true}
	}
	raw, marshalErr := json.Marshal(data)
	if marshalErr != nil {
		return Response{ID: id, Error: marshalErr.Error()}
	}
	return Response{ID: id, OK: true, Data: raw}
}
