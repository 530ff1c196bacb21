// internal/game/types.go
//
// Core type definitions for the word-guessing engine.
// Defines:
//   - Letter / Guess: one candidate word, letter by letter.
//   - LetterStatus / Feedback: per-letter result of scoring a guess.
//   - State: the controller's turn state machine.
//   - GameState / Turn / TurnResult: read-only views handed to callers.

package game

import (
	"encoding/json"
	"sort"
	"strings"
)

// WordLength is the number of letters in every target and guess.
const WordLength = 5

// DefaultMaxAttempts is the attempt budget used when the limit is enabled.
const DefaultMaxAttempts = 6

// Letter is a single character placed at a position within a guess.
type Letter struct {
	Position int
	Char     rune
}

// MarshalJSON renders the character as a one-letter string.
func (l Letter) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Position int    `json:"position"`
		Letter   string `json:"letter"`
	}{l.Position, string(l.Char)})
}

// Guess is one candidate word. Letters are expected to cover positions
// 0..WordLength-1 exactly once; Validate reports when they do not.
type Guess []Letter

// GuessFromWord builds a guess from a word without validating it.
func GuessFromWord(word string) Guess {
	g := make(Guess, 0, len(word))
	for i, r := range []rune(word) {
		g = append(g, Letter{Position: i, Char: r})
	}
	return g
}

// ParseGuess builds a guess from word and validates its shape.
func ParseGuess(word string) (Guess, error) {
	g := GuessFromWord(word)
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate checks length, alphabet (A–Z) and that positions form a
// permutation of 0..WordLength-1.
func (g Guess) Validate() error {
	if len(g) != WordLength {
		return &MalformedGuessError{Reason: "guess must have 5 letters"}
	}
	var seen [WordLength]bool
	for _, l := range g {
		if l.Position < 0 || l.Position >= WordLength {
			return &MalformedGuessError{Reason: "letter position out of range"}
		}
		if seen[l.Position] {
			return &MalformedGuessError{Reason: "duplicate letter position"}
		}
		seen[l.Position] = true
		if l.Char < 'A' || l.Char > 'Z' {
			return &MalformedGuessError{Reason: "letters must be A-Z"}
		}
	}
	return nil
}

// Word renders the guess ordered by position.
func (g Guess) Word() string {
	ls := g.clone()
	sort.Slice(ls, func(i, j int) bool { return ls[i].Position < ls[j].Position })
	var b strings.Builder
	for _, l := range ls {
		b.WriteRune(l.Char)
	}
	return b.String()
}

func (g Guess) clone() Guess {
	if g == nil {
		return nil
	}
	out := make(Guess, len(g))
	copy(out, g)
	return out
}

// LetterStatus is the evaluation of one guessed letter.
type LetterStatus int

const (
	Red    LetterStatus = iota // absent from the target
	Yellow                     // present elsewhere in the target
	Green                      // present at this exact position
)

func (s LetterStatus) String() string {
	switch s {
	case Red:
		return "red"
	case Yellow:
		return "yellow"
	case Green:
		return "green"
	}
	return "unknown"
}

// MarshalText renders the status as red/yellow/green in JSON payloads.
func (s LetterStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// LetterFeedback pairs a guessed letter with its status.
type LetterFeedback struct {
	Letter Letter       `json:"letter"`
	Status LetterStatus `json:"status"`
}

// Feedback is aligned index-for-index with the guess it scores.
type Feedback []LetterFeedback

// Solved reports whether every entry is Green.
func (f Feedback) Solved() bool {
	if len(f) == 0 {
		return false
	}
	for _, lf := range f {
		if lf.Status != Green {
			return false
		}
	}
	return true
}

func (f Feedback) clone() Feedback {
	if f == nil {
		return nil
	}
	out := make(Feedback, len(f))
	copy(out, f)
	return out
}

// Attempt is one completed guess/feedback cycle.
type Attempt struct {
	Guess    Guess    `json:"guess"`
	Feedback Feedback `json:"feedback"`
}

func (a Attempt) clone() Attempt {
	return Attempt{Guess: a.Guess.clone(), Feedback: a.Feedback.clone()}
}

// State is a node of the controller's turn state machine.
type State int

const (
	AwaitingGuess State = iota
	Evaluating
	Continuing
	Succeeded
	Exhausted
)

func (s State) String() string {
	switch s {
	case AwaitingGuess:
		return "AWAITING_GUESS"
	case Evaluating:
		return "EVALUATING"
	case Continuing:
		return "CONTINUING"
	case Succeeded:
		return "SUCCEEDED"
	case Exhausted:
		return "EXHAUSTED"
	}
	return "UNKNOWN"
}

// MarshalText renders the state name in JSON payloads.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool { return s == Succeeded || s == Exhausted }

// GameState is a read-only copy of a controller's state.
type GameState struct {
	Target              string    `json:"target"`
	AttemptCount        int       `json:"attemptCount"`
	AttemptLimitEnabled bool      `json:"attemptLimitEnabled"`
	MaxAttempts         int       `json:"maxAttempts"`
	State               State     `json:"state"`
	History             []Attempt `json:"history"`
}

// TurnResult is returned by SubmitGuess.
type TurnResult struct {
	Feedback Feedback `json:"feedback"`
	State    State    `json:"state"`
}

// Turn is the latest (guess, feedback, attempt count, state) tuple exposed
// to observers after each accepted guess.
type Turn struct {
	Guess        Guess    `json:"guess"`
	Feedback     Feedback `json:"feedback"`
	AttemptCount int      `json:"attemptCount"`
	State        State    `json:"state"`
}
