package modapi

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ramensoftware/windhawk-go/api"
)

type fakeEngine struct {
	hooked   []uintptr
	unhooked []uintptr
	applied  []api.HookIdentity
}

func (e *fakeEngine) QueueHook(identity api.HookIdentity, target, detour uintptr, original *uintptr) error {
	e.hooked = append(e.hooked, target)
	if original != nil {
		*original = target + 5
	}
	return nil
}
func (e *fakeEngine) QueueUnhook(identity api.HookIdentity, target uintptr) error {
	e.unhooked = append(e.unhooked, target)
	return nil
}
func (e *fakeEngine) ApplyQueued(identity api.HookIdentity) error {
	e.applied = append(e.applied, identity)
	return nil
}

func TestSetFunctionHookRejectedBeforeInit(t *testing.T) {
	m := newTestMod()
	err := m.SetFunctionHook(0x1000, 0x2000, nil)
	require.ErrorIs(t, err, api.ErrModLifecycle)
}

func TestApplyHookOperationsFlushesQueue(t *testing.T) {
	engine := &fakeEngine{}
	m := newTestMod()
	m.engine = engine
	require.NoError(t, m.Init())

	var original uintptr
	require.NoError(t, m.SetFunctionHook(0x1000, 0x2000, &original))
	require.NoError(t, m.RemoveFunctionHook(0x3000))
	require.NoError(t, m.ApplyHookOperations())

	require.Equal(t, []uintptr{0x1000}, engine.hooked)
	require.Equal(t, []uintptr{0x3000}, engine.unhooked)
	require.Equal(t, uintptr(0x1005), original)
	require.Len(t, engine.applied, 1)
}

func TestRemoveFunctionHookRejectedAfterBeforeUninit(t *testing.T) {
	m := newTestMod()
	require.NoError(t, m.Init())
	require.NoError(t, m.AfterInit())
	require.NoError(t, m.BeforeUninit())

	err := m.RemoveFunctionHook(0x3000)
	require.ErrorIs(t, err, api.ErrModLifecycle)
}
