package symbols

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHybridInfoPrefixForAddress(t *testing.T) {
	h := NewHybridInfo([]Range{
		{Start: 0x1000, End: 0x2000, Arch: HybridX86},
		{Start: 0x2000, End: 0x3000, Arch: HybridARM64EC},
	})

	require.Equal(t, `arch=x86\`, h.PrefixForAddress(0x1500, "??1CLink@@UEAA@XZ"))
	require.Equal(t, `tag=ARM64EC\arch=ARM64EC\`, h.PrefixForAddress(0x2500, "??1CLink@@$$hUEAA@XZ"))
	require.Equal(t, "", h.PrefixForAddress(0x5000, "anything"))
}
