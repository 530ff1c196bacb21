package guesser

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/robalobadob/wordlebot/internal/game"
)

// Prompt reads guesses line by line, e.g. from a person at a terminal.
// Input is trimmed and upper-cased; shape checks are left to the controller.
type Prompt struct {
	lines chan string
	errc  chan error
	out   io.Writer
}

// NewPrompt starts reading r in the background. If out is non-nil a short
// prompt is written before each guess.
func NewPrompt(r io.Reader, out io.Writer) *Prompt {
	p := &Prompt{lines: make(chan string), errc: make(chan error, 1), out: out}
	go p.read(r)
	return p
}

func (p *Prompt) read(r io.Reader) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.ToUpper(strings.TrimSpace(sc.Text()))
		if line == "" {
			continue
		}
		p.lines <- line
	}
	err := sc.Err()
	if err == nil {
		err = ErrExhausted
	}
	p.errc <- err
	close(p.lines)
}

// NextGuess implements driver.GuessSource.
func (p *Prompt) NextGuess(ctx context.Context, history []game.Attempt) (game.Guess, error) {
	if p.out != nil {
		fmt.Fprintf(p.out, "guess %d> ", len(history)+1)
	}
	select {
	case line, ok := <-p.lines:
		if !ok {
			return nil, p.closedErr()
		}
		return game.GuessFromWord(line), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Prompt) closedErr() error {
	select {
	case err := <-p.errc:
		p.errc <- err
		return err
	default:
		return ErrExhausted
	}
}
