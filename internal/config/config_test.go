package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "MAX_ITERATIONS", "ATTEMPT_LIMIT", "GUESS_TIMEOUT"} {
		t.Setenv(k, "")
	}
	c := FromEnv()
	require.Equal(t, "5175", c.Port)
	require.Equal(t, 50, c.MaxIterations)
	require.True(t, c.AttemptLimit)
	require.Equal(t, 6, c.MaxAttempts)
	require.Equal(t, 30*time.Second, c.GuessTimeout)
}

func TestOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("MAX_ITERATIONS", "12")
	t.Setenv("ATTEMPT_LIMIT", "false")
	t.Setenv("GUESS_TIMEOUT", "2s")
	t.Setenv("SESSION_TTL", "90m")
	c := FromEnv()
	require.Equal(t, "8080", c.Port)
	require.Equal(t, 12, c.MaxIterations)
	require.False(t, c.AttemptLimit)
	require.Equal(t, 2*time.Second, c.GuessTimeout)
	require.Equal(t, 90*time.Minute, c.SessionTTL)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("MAX_ITERATIONS", "lots")
	t.Setenv("ATTEMPT_LIMIT", "maybe")
	t.Setenv("GUESS_TIMEOUT", "soon")
	c := FromEnv()
	require.Equal(t, 50, c.MaxIterations)
	require.True(t, c.AttemptLimit)
	require.Equal(t, 30*time.Second, c.GuessTimeout)
}
