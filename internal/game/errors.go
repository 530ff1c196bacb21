package game

import (
	"errors"
	"fmt"
)

var (
	// ErrGameAlreadyOver is returned when a guess arrives after a terminal state.
	ErrGameAlreadyOver = errors.New("game: already over")
	// ErrInvalidTarget is returned by New for targets that are not 5 letters A–Z.
	ErrInvalidTarget = errors.New("game: target must be 5 letters A-Z")
)

// MalformedGuessError reports a guess that failed shape validation.
// The guess is rejected and the controller state is left untouched.
type MalformedGuessError struct {
	Reason string
}

func (e *MalformedGuessError) Error() string {
	return "game: malformed guess: " + e.Reason
}

// InvalidLengthError reports a Score call whose target and guess differ in length.
type InvalidLengthError struct {
	Target int
	Guess  int
}

func (e *InvalidLengthError) Error() string {
	return fmt.Sprintf("game: target has %d letters, guess has %d", e.Target, e.Guess)
}

// IsMalformed reports whether err carries a *MalformedGuessError.
func IsMalformed(err error) bool {
	var m *MalformedGuessError
	return errors.As(err, &m)
}
