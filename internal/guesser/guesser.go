// Package guesser provides GuessSource implementations: a candidate
// elimination solver, a scripted replay, and an interactive prompt.
package guesser

import "errors"

// ErrExhausted is returned when a source has no guess left to offer.
var ErrExhausted = errors.New("guesser: no guesses left")
