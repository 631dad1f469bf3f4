package namespace

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestName(t *testing.T) {
	require.Equal(t, "WindhawkSession1234", Name(1234))
}

func TestObjectName(t *testing.T) {
	require.Equal(t, `\WindhawkSession1234\ProcessInitAPCMutex-pid=5678`, ObjectName(1234, "ProcessInitAPCMutex-pid=5678"))
}
