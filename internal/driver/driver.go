// internal/driver/driver.go
//
// Driver runs the guess/feedback loop for one game:
//
//	ask the GuessSource → SubmitGuess → notify observers → repeat
//
// It stops when the controller reaches a terminal state, the iteration
// ceiling is hit, the source fails too many times in a row, or ctx ends.
// The ceiling guards against runaway loops and is independent of the
// game's attempt budget.

package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordlebot/internal/game"
)

// Defaults applied to zero Config fields.
const (
	DefaultMaxIterations     = 50
	DefaultGuessTimeout      = 30 * time.Second
	DefaultMaxSourceFailures = 3
)

// ErrIterationLimit is returned when the loop ceiling is reached before the
// game ends.
var ErrIterationLimit = errors.New("driver: iteration limit reached")

// GuessSource supplies the next guess given the visible history.
//
// The driver never overlaps NextGuess calls on one source. A call abandoned
// after GuessTimeout must return before the next one starts, and waiting for
// it counts against the next call's timeout.
type GuessSource interface {
	NextGuess(ctx context.Context, history []game.Attempt) (game.Guess, error)
}

// GuessSourceFunc adapts a function to GuessSource.
type GuessSourceFunc func(ctx context.Context, history []game.Attempt) (game.Guess, error)

func (f GuessSourceFunc) NextGuess(ctx context.Context, history []game.Attempt) (game.Guess, error) {
	return f(ctx, history)
}

// Observer receives every accepted turn.
type Observer interface {
	OnTurn(game.Turn)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(game.Turn)

func (f ObserverFunc) OnTurn(t game.Turn) { f(t) }

// GuessSourceError reports that the source could not produce a guess. The
// game is left paused in its current state.
type GuessSourceError struct {
	Failures int
	Err      error
}

func (e *GuessSourceError) Error() string {
	return fmt.Sprintf("driver: guess source failed %d time(s): %v", e.Failures, e.Err)
}

func (e *GuessSourceError) Unwrap() error { return e.Err }

// Config bounds the loop.
type Config struct {
	MaxIterations     int           // loop ceiling
	GuessTimeout      time.Duration // per NextGuess call; <0 disables
	MaxSourceFailures int           // consecutive failed fetches before giving up
}

func (c Config) withDefaults() Config {
	if c.MaxIterations <= 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	if c.GuessTimeout == 0 {
		c.GuessTimeout = DefaultGuessTimeout
	}
	if c.MaxSourceFailures <= 0 {
		c.MaxSourceFailures = DefaultMaxSourceFailures
	}
	return c
}

// Outcome summarizes one Play call.
type Outcome struct {
	State          game.State     `json:"state"`
	AttemptCount   int            `json:"attemptCount"`
	History        []game.Attempt `json:"history"`
	Iterations     int            `json:"iterations"`
	Rejected       int            `json:"rejected"`
	SourceFailures int            `json:"sourceFailures"`
}

// Driver connects a GuessSource to a game controller.
type Driver struct {
	source    GuessSource
	cfg       Config
	observers []Observer
	logger    zerolog.Logger
}

// Option configures a Driver.
type Option func(*Driver)

// WithObserver registers an observer; observers run in registration order.
func WithObserver(o Observer) Option {
	return func(d *Driver) { d.observers = append(d.observers, o) }
}

// WithLogger replaces the global zerolog logger.
func WithLogger(l zerolog.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// New builds a Driver.
func New(source GuessSource, cfg Config, opts ...Option) *Driver {
	d := &Driver{source: source, cfg: cfg.withDefaults(), logger: log.Logger}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Play drives ctrl until it ends or the loop has to stop. The returned
// Outcome is valid even when err is non-nil.
func (d *Driver) Play(ctx context.Context, ctrl *game.Controller) (Outcome, error) {
	var (
		out      Outcome
		failures int
		inflight chan fetchResult
	)

	for !ctrl.IsOver() {
		if out.Iterations >= d.cfg.MaxIterations {
			d.logger.Warn().Int("iterations", out.Iterations).Msg("iteration ceiling reached")
			return d.finish(out, ctrl), ErrIterationLimit
		}
		if err := ctx.Err(); err != nil {
			return d.finish(out, ctrl), err
		}
		out.Iterations++

		g, err := d.fetch(ctx, ctrl.Snapshot().History, &inflight)
		if err != nil {
			if ctx.Err() != nil {
				return d.finish(out, ctrl), ctx.Err()
			}
			failures++
			out.SourceFailures++
			d.logger.Warn().Err(err).Int("consecutive", failures).Msg("guess source failed")
			d.notifyFailure(err)
			if failures >= d.cfg.MaxSourceFailures {
				return d.finish(out, ctrl), &GuessSourceError{Failures: failures, Err: err}
			}
			continue
		}
		failures = 0

		res, err := ctrl.SubmitGuess(g)
		switch {
		case game.IsMalformed(err):
			out.Rejected++
			d.logger.Warn().Err(err).Str("guess", g.Word()).Msg("guess rejected")
			d.notifyRejected(g, err)
			continue
		case errors.Is(err, game.ErrGameAlreadyOver):
			return d.finish(out, ctrl), nil
		case err != nil:
			return d.finish(out, ctrl), err
		}

		turn, _ := ctrl.Last()
		d.logger.Debug().
			Int("attempt", turn.AttemptCount).
			Str("guess", g.Word()).
			Str("state", res.State.String()).
			Msg("turn scored")
		for _, o := range d.observers {
			o.OnTurn(turn)
		}
	}

	out = d.finish(out, ctrl)
	d.logger.Info().
		Str("state", out.State.String()).
		Int("attempts", out.AttemptCount).
		Msg("game over")
	return out, nil
}

// fetchResult carries one NextGuess return.
type fetchResult struct {
	g   game.Guess
	err error
}

// fetch asks the source for a guess under the per-call timeout. A call
// that outlives its timeout is left in *inflight; the next fetch drains it
// before asking again.
func (d *Driver) fetch(ctx context.Context, history []game.Attempt, inflight *chan fetchResult) (game.Guess, error) {
	if d.cfg.GuessTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.GuessTimeout)
		defer cancel()
	}

	if *inflight != nil {
		select {
		case <-*inflight:
			*inflight = nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	ch := make(chan fetchResult, 1)
	go func() {
		g, err := d.source.NextGuess(ctx, history)
		ch <- fetchResult{g, err}
	}()

	select {
	case r := <-ch:
		return r.g, r.err
	case <-ctx.Done():
		*inflight = ch
		return nil, ctx.Err()
	}
}

func (d *Driver) finish(out Outcome, ctrl *game.Controller) Outcome {
	s := ctrl.Snapshot()
	out.State = s.State
	out.AttemptCount = s.AttemptCount
	out.History = s.History
	return out
}

// rejectionObserver is implemented by observers that also track rejected
// guesses and failed fetches.
type rejectionObserver interface {
	OnRejected(game.Guess, error)
	OnSourceFailure(error)
}

func (d *Driver) notifyRejected(g game.Guess, err error) {
	for _, o := range d.observers {
		if ro, ok := o.(rejectionObserver); ok {
			ro.OnRejected(g, err)
		}
	}
}

func (d *Driver) notifyFailure(err error) {
	for _, o := range d.observers {
		if ro, ok := o.(rejectionObserver); ok {
			ro.OnSourceFailure(err)
		}
	}
}
