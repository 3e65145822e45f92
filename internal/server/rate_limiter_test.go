package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimiterBurst(t *testing.T) {
	rl := newRateLimiter(3, time.Hour)

	for i := 0; i < 3; i++ {
		require.True(t, rl.allow(), "request %d should pass within burst", i+1)
	}
	require.False(t, rl.allow())
}

func TestRateLimiterRefills(t *testing.T) {
	rl := newRateLimiter(1, 20*time.Millisecond)
	require.True(t, rl.allow())
	require.False(t, rl.allow())

	time.Sleep(30 * time.Millisecond)
	require.True(t, rl.allow())
}

func TestSenderLimitersAreIndependent(t *testing.T) {
	sl := newSenderLimiters(1, time.Hour)

	require.True(t, sl.allow("anna"))
	require.False(t, sl.allow("anna"))
	require.True(t, sl.allow("bernd"))
}
