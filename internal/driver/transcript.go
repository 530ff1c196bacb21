package driver

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/robalobadob/wordlebot/internal/game"
)

// Transcript is an append-only log of the conversation with a guesser.
// It is owned by whoever drives the game and is kept apart from the
// controller's state.
type Transcript struct {
	mu       sync.Mutex
	messages []string
}

// NewTranscript starts a transcript with optional opening messages.
func NewTranscript(opening ...string) *Transcript {
	return &Transcript{messages: append([]string(nil), opening...)}
}

// Append adds a message.
func (t *Transcript) Append(msg string) {
	t.mu.Lock()
	t.messages = append(t.messages, msg)
	t.mu.Unlock()
}

// OnTurn records the guess and its feedback.
func (t *Transcript) OnTurn(turn game.Turn) {
	n := turn.AttemptCount - 1
	t.Append(fmt.Sprintf("Attempt %d: %s", n, turn.Guess.Word()))
	t.Append(FormatFeedback(n, turn.Feedback))
}

// OnRejected records a guess that failed validation.
func (t *Transcript) OnRejected(g game.Guess, err error) {
	t.Append(fmt.Sprintf("Rejected %q: %v", g.Word(), err))
}

// OnSourceFailure records a failed guess fetch.
func (t *Transcript) OnSourceFailure(err error) {
	t.Append(fmt.Sprintf("No guess produced: %v", err))
}

// Messages returns a copy of the log.
func (t *Transcript) Messages() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.messages...)
}

// WriteTo writes one message per line.
func (t *Transcript) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, m := range t.Messages() {
		n, err := io.WriteString(w, m+"\n")
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// FormatFeedback renders feedback as one "Position i: X is status" line per letter.
func FormatFeedback(attempt int, fb game.Feedback) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Feedback for Attempt %d:", attempt)
	for _, lf := range fb {
		fmt.Fprintf(&b, "\nPosition %d: %c is %s", lf.Letter.Position, lf.Letter.Char, lf.Status)
	}
	return b.String()
}
