package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func statuses(fb Feedback) []LetterStatus {
	out := make([]LetterStatus, len(fb))
	for i, lf := range fb {
		out[i] = lf.Status
	}
	return out
}

func mustScore(t *testing.T, target, word string) Feedback {
	t.Helper()
	fb, err := Score(target, GuessFromWord(word))
	require.NoError(t, err)
	return fb
}

func TestScore(t *testing.T) {
	tests := []struct {
		name   string
		target string
		guess  string
		want   []LetterStatus
	}{
		{"exact match", "WIDEN", "WIDEN", []LetterStatus{Green, Green, Green, Green, Green}},
		{"no shared letters", "WIDEN", "BLAST", []LetterStatus{Red, Red, Red, Red, Red}},
		{"repeated guess letter capped by supply", "WIDEN", "EERIE", []LetterStatus{Yellow, Red, Red, Yellow, Red}},
		{"green consumes before yellow", "ALLOY", "LLAMA", []LetterStatus{Yellow, Green, Yellow, Red, Red}},
		{"later green wins over earlier yellow", "ABBEY", "BBBBB", []LetterStatus{Red, Green, Green, Red, Red}},
		{"mixed", "APPLE", "ALLEY", []LetterStatus{Green, Yellow, Red, Yellow, Red}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, statuses(mustScore(t, tt.target, tt.guess)))
		})
	}
}

func TestScoreKeepsLetterOrder(t *testing.T) {
	g := GuessFromWord("CRANE")
	fb, err := Score("REACT", g)
	require.NoError(t, err)
	require.Len(t, fb, len(g))
	for i := range g {
		require.Equal(t, g[i], fb[i].Letter)
	}
}

func TestScoreUsesPositionsNotSliceOrder(t *testing.T) {
	// Letters listed out of order still land on their own slots.
	g := Guess{
		{Position: 4, Char: 'N'},
		{Position: 0, Char: 'W'},
		{Position: 3, Char: 'E'},
		{Position: 1, Char: 'I'},
		{Position: 2, Char: 'D'},
	}
	fb, err := Score("WIDEN", g)
	require.NoError(t, err)
	require.True(t, fb.Solved())
	require.Equal(t, 'N', fb[0].Letter.Char)
}

func TestScoreDuplicateLetterCap(t *testing.T) {
	fb := mustScore(t, "ALLOY", "LLAMA")
	marked := 0
	for _, lf := range fb {
		if lf.Letter.Char == 'L' && lf.Status != Red {
			marked++
		}
	}
	require.LessOrEqual(t, marked, 2)
}

func TestScoreIsPure(t *testing.T) {
	a := mustScore(t, "ALLOY", "LLAMA")
	b := mustScore(t, "ALLOY", "LLAMA")
	require.Equal(t, a, b)
}

func TestScoreInvalidLength(t *testing.T) {
	_, err := Score("WIDEN", GuessFromWord("WIDE"))
	var le *InvalidLengthError
	require.ErrorAs(t, err, &le)
	require.Equal(t, 5, le.Target)
	require.Equal(t, 4, le.Guess)
}

func TestScoreConcurrent(t *testing.T) {
	want := mustScore(t, "ALLOY", "LLAMA")
	done := make(chan Feedback, 16)
	for i := 0; i < 16; i++ {
		go func() {
			fb, _ := Score("ALLOY", GuessFromWord("LLAMA"))
			done <- fb
		}()
	}
	for i := 0; i < 16; i++ {
		require.Equal(t, want, <-done)
	}
}
