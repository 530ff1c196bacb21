package guesser

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordlebot/internal/game"
)

func attempt(t *testing.T, target, word string) game.Attempt {
	t.Helper()
	g := game.GuessFromWord(word)
	fb, err := game.Score(target, g)
	require.NoError(t, err)
	return game.Attempt{Guess: g, Feedback: fb}
}

func TestCandidatesFiltersByFeedback(t *testing.T) {
	list := []string{"WIDEN", "WIDER", "BLAST", "ALLOY", "WOMEN"}
	h := []game.Attempt{attempt(t, "WIDEN", "WIDER")}
	require.Equal(t, []string{"WIDEN"}, Candidates(list, h))
}

func TestCandidatesDropsTriedWords(t *testing.T) {
	list := []string{"BLAST", "CRANE"}
	h := []game.Attempt{attempt(t, "WIDEN", "BLAST")}
	require.NotContains(t, Candidates(list, h), "BLAST")
}

func TestSolverFindsTarget(t *testing.T) {
	list := []string{"BLAST", "CRANE", "WIDER", "WOMEN", "WIDEN", "ALLOY"}
	s := NewSolver(list, 0)
	ctrl, err := game.New("WIDEN")
	require.NoError(t, err)

	for !ctrl.IsOver() {
		g, err := s.NextGuess(context.Background(), ctrl.Snapshot().History)
		require.NoError(t, err)
		_, err = ctrl.SubmitGuess(g)
		require.NoError(t, err)
	}
	require.Equal(t, game.Succeeded, ctrl.State())
}

func TestSolverSeededPicksCandidate(t *testing.T) {
	list := []string{"WIDEN", "WIDER", "BLAST"}
	s := NewSolver(list, 42)
	g, err := s.NextGuess(context.Background(), nil)
	require.NoError(t, err)
	require.Contains(t, list, g.Word())
}

func TestSolverExhausted(t *testing.T) {
	s := NewSolver([]string{"BLAST"}, 0)
	_, err := s.NextGuess(context.Background(), []game.Attempt{attempt(t, "WIDEN", "BLAST")})
	require.ErrorIs(t, err, ErrExhausted)
}

func TestScripted(t *testing.T) {
	s := NewScripted("CRANE", "widen")
	ctx := context.Background()
	g, err := s.NextGuess(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, "CRANE", g.Word())

	g, err = s.NextGuess(ctx, nil)
	require.NoError(t, err)
	require.True(t, game.IsMalformed(g.Validate()))

	_, err = s.NextGuess(ctx, nil)
	require.ErrorIs(t, err, ErrExhausted)
}

func TestPrompt(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompt(strings.NewReader(" crane \n\nwiden\n"), &out)
	ctx := context.Background()

	g, err := p.NextGuess(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, "CRANE", g.Word())

	g, err = p.NextGuess(ctx, make([]game.Attempt, 1))
	require.NoError(t, err)
	require.Equal(t, "WIDEN", g.Word())

	_, err = p.NextGuess(ctx, nil)
	require.ErrorIs(t, err, ErrExhausted)
	require.Contains(t, out.String(), "guess 2> ")
}

func TestPromptCancelled(t *testing.T) {
	r, _ := blockingReader()
	p := NewPrompt(r, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.NextGuess(ctx, nil)
	require.ErrorIs(t, err, context.Canceled)
}

type blocking struct{ ch chan struct{} }

func (b blocking) Read([]byte) (int, error) {
	<-b.ch
	return 0, nil
}

func blockingReader() (blocking, func()) {
	b := blocking{ch: make(chan struct{})}
	return b, func() { close(b.ch) }
}
