package guesser

import (
	"context"
	"sync"

	"github.com/robalobadob/wordlebot/internal/game"
)

// Scripted replays a fixed list of words in order.
type Scripted struct {
	mu    sync.Mutex
	words []string
	next  int
}

// NewScripted builds a scripted source. Words are passed through as-is so
// malformed entries reach the controller and get rejected there.
func NewScripted(words ...string) *Scripted {
	return &Scripted{words: append([]string(nil), words...)}
}

// NextGuess implements driver.GuessSource.
func (s *Scripted) NextGuess(ctx context.Context, _ []game.Attempt) (game.Guess, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.words) {
		return nil, ErrExhausted
	}
	w := s.words[s.next]
	s.next++
	return game.GuessFromWord(w), nil
}
