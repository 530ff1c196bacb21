// internal/game/controller.go
//
// Controller owns the state of a single game and drives its turn state
// machine:
//
//	AWAITING_GUESS --guess--> EVALUATING --scored--> CONTINUING | SUCCEEDED
//	CONTINUING --limit check--> AWAITING_GUESS | EXHAUSTED
//
// Success is decided before the limit check, so a correct guess on the last
// allowed attempt ends SUCCEEDED. A Controller is not safe for concurrent
// use; callers serialize access to it.

package game

import "strings"

// transitions lists the legal edges of the state machine.
var transitions = map[State][]State{
	AwaitingGuess: {Evaluating},
	Evaluating:    {Continuing, Succeeded},
	Continuing:    {AwaitingGuess, Exhausted},
}

// Controller evaluates guesses against a hidden target.
type Controller struct {
	target       string
	limitEnabled bool
	maxAttempts  int
	attempts     int
	state        State
	history      []Attempt
}

// Option configures a Controller.
type Option func(*Controller)

// WithAttemptLimit enables or disables the attempt budget.
func WithAttemptLimit(enabled bool) Option {
	return func(c *Controller) { c.limitEnabled = enabled }
}

// WithMaxAttempts sets the attempt budget. Non-positive values are ignored.
func WithMaxAttempts(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// New starts a game for target. The target is upper-cased and must be
// WordLength letters A–Z.
func New(target string, opts ...Option) (*Controller, error) {
	t := strings.ToUpper(strings.TrimSpace(target))
	if len(t) != WordLength {
		return nil, ErrInvalidTarget
	}
	for _, r := range t {
		if idx(r) < 0 {
			return nil, ErrInvalidTarget
		}
	}
	c := &Controller{
		target:       t,
		limitEnabled: true,
		maxAttempts:  DefaultMaxAttempts,
		state:        AwaitingGuess,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// SubmitGuess validates, scores and records one guess.
//
// A malformed guess returns *MalformedGuessError and changes nothing.
// Guesses after a terminal state return ErrGameAlreadyOver.
func (c *Controller) SubmitGuess(g Guess) (TurnResult, error) {
	if c.state.Terminal() {
		return TurnResult{State: c.state}, ErrGameAlreadyOver
	}
	if err := g.Validate(); err != nil {
		return TurnResult{State: c.state}, err
	}
	c.advance(Evaluating)

	fb, err := Score(c.target, g)
	if err != nil {
		// Unreachable with a validated target and guess.
		c.state = AwaitingGuess
		return TurnResult{State: c.state}, err
	}
	c.history = append(c.history, Attempt{Guess: g.clone(), Feedback: fb})
	c.attempts++

	if fb.Solved() {
		c.advance(Succeeded)
	} else {
		c.advance(Continuing)
		if c.limitReached() {
			c.advance(Exhausted)
		} else {
			c.advance(AwaitingGuess)
		}
	}
	return TurnResult{Feedback: fb.clone(), State: c.state}, nil
}

// limitReached reports whether the budget is used up. With a budget of 6,
// the sixth wrong guess exhausts the game.
func (c *Controller) limitReached() bool {
	return c.limitEnabled && c.attempts >= c.maxAttempts
}

func (c *Controller) advance(to State) {
	for _, s := range transitions[c.state] {
		if s == to {
			c.state = to
			return
		}
	}
	panic("game: illegal transition " + c.state.String() + " -> " + to.String())
}

// IsOver reports whether the game reached SUCCEEDED or EXHAUSTED.
func (c *Controller) IsOver() bool { return c.state.Terminal() }

// State returns the current state.
func (c *Controller) State() State { return c.state }

// AttemptCount returns the number of accepted guesses.
func (c *Controller) AttemptCount() int { return c.attempts }

// Snapshot returns a deep copy of the game state.
func (c *Controller) Snapshot() GameState {
	h := make([]Attempt, len(c.history))
	for i, a := range c.history {
		h[i] = a.clone()
	}
	return GameState{
		Target:              c.target,
		AttemptCount:        c.attempts,
		AttemptLimitEnabled: c.limitEnabled,
		MaxAttempts:         c.maxAttempts,
		State:               c.state,
		History:             h,
	}
}

// Last returns the most recent turn, or false before the first accepted guess.
func (c *Controller) Last() (Turn, bool) {
	if len(c.history) == 0 {
		return Turn{}, false
	}
	a := c.history[len(c.history)-1].clone()
	return Turn{Guess: a.Guess, Feedback: a.Feedback, AttemptCount: c.attempts, State: c.state}, true
}
