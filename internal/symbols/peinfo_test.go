package symbols

import (
	"testing"

	"github.com/saferwall/pe"
	"github.com/stretchr/testify/require"
)

func TestMachineArchName(t *testing.T) {
	require.Equal(t, "x86", machineArchName(pe.ImageFileHeaderMachineType(pe.ImageFileMachineI386)))
	require.Equal(t, "x64", machineArchName(pe.ImageFileHeaderMachineType(pe.ImageFileMachineAMD64)))
	require.Equal(t, "ARM64", machineArchName(pe.ImageFileHeaderMachineType(pe.ImageFileMachineARM64)))
	require.Equal(t, "unknown", machineArchName(pe.ImageFileHeaderMachineType(0x9999)))
}
