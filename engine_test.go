package windhawk

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ramensoftware/windhawk-go/api"
)

func TestListModsWithNoActiveSessionErrors(t *testing.T) {
	e := NewEngine(&Config{}, nil, nil, nil)
	_, err := e.ListMods()
	require.Error(t, err)
}

func TestReloadWithNoActiveSessionErrors(t *testing.T) {
	e := NewEngine(&Config{}, nil, nil, nil)
	require.Error(t, e.Reload())
}

func TestDumpSessionWithNoActiveSessionErrors(t *testing.T) {
	e := NewEngine(&Config{}, nil, nil, nil)
	_, err := e.DumpSession()
	require.Error(t, err)
}

func TestGlobalHookSessionEndUnknownHandleErrors(t *testing.T) {
	e := NewEngine(&Config{}, nil, nil, nil)
	err := e.GlobalHookSessionEnd(999)
	require.Error(t, err)
}

func TestGlobalHookSessionHandleNewProcessesUnknownHandleErrors(t *testing.T) {
	e := NewEngine(&Config{HostArch: api.ArchAMD64}, nil, nil, nil)
	err := e.GlobalHookSessionHandleNewProcesses(999)
	require.Error(t, err)
}
