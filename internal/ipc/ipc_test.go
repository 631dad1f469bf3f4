package ipc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeHandler struct {
	mods     []ModStatus
	reloaded int
	failWith error
}

func (h *fakeHandler) ListMods() ([]ModStatus, error) {
	if h.failWith != nil {
		return nil, h.failWith
	}
	return h.mods, nil
}

func (h *fakeHandler) Reload() error {
	h.reloaded++
	return h.failWith
}

func (h *fakeHandler) DumpSession() (SessionStatus, error) {
	if h.failWith != nil {
		return SessionStatus{}, h.failWith
	}
	return SessionStatus{OrchPID: 1234, Mods: h.mods}, nil
}

func TestDispatchListMods(t *testing.T) {
	h := &fakeHandler{mods: []ModStatus{{Name: "demo-mod", State: "after-init-done"}}}
	resp := Dispatch(h, NewRequest(CommandListMods))
	require.True(t, resp.OK)
	require.JSONEq(t, `[{"name":"demo-mod","state":"after-init-done"}]`, string(resp.Data))
}

func TestDispatchReloadPropagatesFailure(t *testing.T) {
	h := &fakeHandler{failWith: errors.New("mods directory unreadable")}
	req := NewRequest(CommandReload)
	resp := Dispatch(h, req)
	require.False(t, resp.OK)
	require.Equal(t, req.ID, resp.ID)
	require.Contains(t, resp.Error, "mods directory unreadable")
	require.Equal(t, 1, h.reloaded)
}

func TestDispatchDumpSession(t *testing.T) {
	h := &fakeHandler{mods: []ModStatus{{Name: "demo-mod", State: "initialized"}}}
	resp := Dispatch(h, NewRequest(CommandDumpSession))
	require.True(t, resp.OK)
	require.JSONEq(t, `{"orchPid":1234,"mods":[{"name":"demo-mod","state":"initialized"}]}`, string(resp.Data))
}

func TestDispatchUnknownCommand(t *testing.T) {
	resp := Dispatch(&fakeHandler{}, Request{ID: "abc", Command: "bogus"})
	require.False(t, resp.OK)
	require.Contains(t, resp.Error, "unknown command")
}

func TestPipeNameIncludesPID(t *testing.T) {
	require.Equal(t, `\\.\pipe\windhawk-engine-4242`, PipeName(4242))
}
