package callstack

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeScanner struct {
	results []bool
	calls   int
}

func (s *fakeScanner) AnyThreadInRegions(regions []Region) (bool, error) {
	i := s.calls
	if i >= len(s.results) {
		i = len(s.results) - 1
	}
	s.calls++
	return s.results[i], nil
}

func TestWaitForRegionsReturnsAsSoonAsClear(t *testing.T) {
	s := &fakeScanner{results: []bool{true, true, false}}
	busy, err := WaitForRegions(s, []Region{{Start: 1, End: 2}}, time.Millisecond, time.Second)
	require.NoError(t, err)
	require.False(t, busy)
	require.Equal(t, 3, s.calls)
}

func TestWaitForRegionsTimesOutStillBusy(t *testing.T) {
	s := &fakeScanner{results: []bool{true}}
	busy, err := WaitForRegions(s, []Region{{Start: 1, End: 2}}, time.Millisecond, 5*time.Millisecond)
	require.NoError(t, err)
	require.True(t, busy)
}

func TestWaitForRegionsNoopWithoutRegions(t *testing.T) {
	s := &fakeScanner{}
	busy, err := WaitForRegions(s, nil, time.Millisecond, time.Second)
	require.NoError(t, err)
	require.False(t, busy)
	require.Equal(t, 0, s.calls)
}
