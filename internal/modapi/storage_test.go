package modapi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStorageRoundTrip(t *testing.T) {
	m := newTestMod()

	require.True(t, m.SetIntValue("count", 42))
	require.Equal(t, int32(42), m.GetIntValue("count", -1))
	require.Equal(t, int32(-1), m.GetIntValue("missing", -1))

	require.True(t, m.SetStringValue("name", "hello"))
	require.Equal(t, "hello", m.GetStringValue("name", "fallback"))
	require.Equal(t, "fallback", m.GetStringValue("missing", "fallback"))

	require.True(t, m.SetBinaryValue("blob", []byte{1, 2, 3}))
	v, ok := m.GetBinaryValue("blob")
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3}, v)

	require.True(t, m.DeleteValue("count"))
	require.Equal(t, int32(-1), m.GetIntValue("count", -1))
}
