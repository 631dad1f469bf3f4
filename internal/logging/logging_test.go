package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestBaseVerbosity(t *testing.T) {
	l := New(logrus.New(), Errors)
	require.True(t, l.Enabled())
	require.False(t, l.effective() >= Verbose)

	l.SetBase(Silent)
	require.False(t, l.Enabled())
}

func TestScopedVerbosityRaisesThenRestores(t *testing.T) {
	l := New(logrus.New(), Silent)
	require.False(t, l.Enabled())

	restore, ok := l.ScopedVerbosity(Verbose)
	require.True(t, ok)
	require.Equal(t, Verbose, l.effective())

	restore()
	require.Equal(t, Silent, l.effective())
}

func TestScopedVerbosityRejectsReentry(t *testing.T) {
	l := New(logrus.New(), Silent)

	restore, ok := l.ScopedVerbosity(Verbose)
	require.True(t, ok)
	defer restore()

	_, ok2 := l.ScopedVerbosity(Verbose)
	require.False(t, ok2, "re-entrant scoped verbosity on the same thread must be rejected")
}

func TestLogfTruncatesAt1024(t *testing.T) {
	var buf bytes.Buffer
	out := logrus.New()
	out.SetOutput(&buf)
	out.SetLevel(logrus.DebugLevel)
	l := New(out, Verbose)
	long := make([]byte, 2000)
	for i := range long {
		long[i] = 'x'
	}
	require.True(t, l.Logf("demo-mod", "%s", string(long)))
	require.Equal(t, 1024, strings.Count(buf.String(), "x"))
}

func TestLogfNoopWhenDisabled(t *testing.T) {
	l := New(logrus.New(), Silent)
	require.False(t, l.Logf("demo-mod", "hello"))
}
