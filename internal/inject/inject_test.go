package inject

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequestZeroValueHasNoAPCThread(t *testing.T) {
	var req Request
	require.Zero(t, req.SuspendedThreadForAPC)
}
