package interceptor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ramensoftware/windhawk-go/internal/pattern"
	"github.com/ramensoftware/windhawk-go/internal/procscan"
)

func TestOptionsCarriesPatterns(t *testing.T) {
	opts := Options{
		Patterns: procscan.Patterns{
			Include: pattern.Compile("*.exe"),
		},
		OrchPID: 42,
	}
	require.EqualValues(t, 42, opts.OrchPID)
	require.False(t, opts.Patterns.Include.Empty())
}
