package shellcode

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/windows"
)

func TestParamBlockMarshalFixedLayout(t *testing.T) {
	pb := &ParamBlock{
		LogVerbosity:          VerbosityVerbose,
		RunningFromAPC:        true,
		ThreadAttachExempt:    false,
		SessionManagerProcess: windows.Handle(0x1234),
		SessionMutex:          windows.Handle(0x5678),
		DLLName:               "windhawk.dll",
	}
	buf, err := pb.Marshal()
	require.NoError(t, err)
	require.Equal(t, pb.Size(), len(buf))

	require.Equal(t, uint32(VerbosityVerbose), binary.LittleEndian.Uint32(buf[0:4]))
	require.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[4:8]))
	require.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[8:12]))
	require.Equal(t, uint64(0x1234), binary.LittleEndian.Uint64(buf[12:20]))
	require.Equal(t, uint64(0x5678), binary.LittleEndian.Uint64(buf[20:28]))

	name, err := windows.UTF16FromString("windhawk.dll")
	require.NoError(t, err)
	require.Equal(t, len(name)*2, len(buf)-FixedSize)
}

func TestParamBlockHandleSlotsPaddedTo64Bits(t *testing.T) {
	// Offsets must not depend on GOARCH: the slots are always 8 bytes wide.
	require.Equal(t, 28, FixedSize)
}
