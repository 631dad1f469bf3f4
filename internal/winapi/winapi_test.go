package winapi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProcessAccessForInjectIncludesSynchronize(t *testing.T) {
	require.NotZero(t, ProcessAccessForInject&processSynchronize)
	require.NotZero(t, ProcessAccessForInject&processCreateThread)
	require.NotZero(t, ProcessAccessForInject&processVMWrite)
}
