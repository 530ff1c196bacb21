package guesser

import (
	"context"
	"sync"

	"github.com/samber/lo"
	"golang.org/x/exp/rand"

	"github.com/robalobadob/wordlebot/internal/game"
)

// Solver guesses words that are still consistent with every piece of
// feedback seen so far. A word is consistent with an attempt when scoring
// the attempt's guess against that word reproduces the recorded statuses.
type Solver struct {
	mu    sync.Mutex
	words []string
	rng   *rand.Rand // nil: always take the first candidate
}

// NewSolver builds a solver over words. A zero seed makes it deterministic
// (first consistent word); any other seed picks randomly among candidates.
func NewSolver(words []string, seed uint64) *Solver {
	s := &Solver{words: append([]string(nil), words...)}
	if seed != 0 {
		s.rng = rand.New(rand.NewSource(seed))
	}
	return s
}

// NextGuess implements driver.GuessSource.
func (s *Solver) NextGuess(ctx context.Context, history []game.Attempt) (game.Guess, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cands := Candidates(s.words, history)
	if len(cands) == 0 {
		return nil, ErrExhausted
	}
	pick := cands[0]
	if s.rng != nil {
		s.mu.Lock()
		pick = cands[s.rng.Intn(len(cands))]
		s.mu.Unlock()
	}
	return game.GuessFromWord(pick), nil
}

// Candidates filters words down to those consistent with history and not
// already guessed.
func Candidates(words []string, history []game.Attempt) []string {
	tried := lo.SliceToMap(history, func(a game.Attempt) (string, struct{}) {
		return a.Guess.Word(), struct{}{}
	})
	return lo.Filter(words, func(w string, _ int) bool {
		if _, ok := tried[w]; ok {
			return false
		}
		for _, a := range history {
			if !consistent(w, a) {
				return false
			}
		}
		return true
	})
}

func consistent(word string, a game.Attempt) bool {
	fb, err := game.Score(word, a.Guess)
	if err != nil || len(fb) != len(a.Feedback) {
		return false
	}
	for i := range fb {
		if fb[i].Status != a.Feedback[i].Status {
			return false
		}
	}
	return true
}
