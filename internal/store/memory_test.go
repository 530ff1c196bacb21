package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordlebot/internal/game"
)

func TestSaveGetDelete(t *testing.T) {
	ctx := context.Background()
	ctrl, err := game.New("WIDEN")
	require.NoError(t, err)

	st := NewMemoryStore()
	s := NewSession(ctrl, "p1")
	require.NotEmpty(t, s.ID)
	require.NoError(t, st.Save(ctx, s))
	require.Equal(t, 1, st.Len())

	got, err := st.Get(ctx, s.ID)
	require.NoError(t, err)
	require.Same(t, s, got)

	require.NoError(t, st.Delete(ctx, s.ID))
	_, err = st.Get(ctx, s.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSessionSerializesGuesses(t *testing.T) {
	ctrl, err := game.New("WIDEN", game.WithAttemptLimit(false))
	require.NoError(t, err)
	s := NewSession(ctrl, "")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Do(func(c *game.Controller) {
				_, _ = c.SubmitGuess(game.GuessFromWord("BLAST"))
			})
		}()
	}
	wg.Wait()

	s.Do(func(c *game.Controller) {
		require.Equal(t, 50, c.AttemptCount())
		require.Len(t, c.Snapshot().History, 50)
	})
}

func TestSweepDropsStaleSessions(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	now := time.Now().UTC()

	for i, age := range []time.Duration{3 * time.Hour, 2 * time.Hour, time.Minute} {
		ctrl, err := game.New("WIDEN")
		require.NoError(t, err, i)
		s := NewSession(ctrl, "")
		s.StartedAt = now.Add(-age)
		require.NoError(t, st.Save(ctx, s))
	}

	require.Equal(t, 2, st.Sweep(ctx, now.Add(-time.Hour)))
	require.Equal(t, 1, st.Len())
	require.Zero(t, st.Sweep(ctx, now.Add(-time.Hour)))
}
