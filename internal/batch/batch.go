// internal/batch/batch.go
//
// Batch harness: one independent game per target word, run on a bounded
// worker pool. Each game owns its controller, driver and guess source, so
// nothing mutable is shared between workers. A failing word is recorded
// in its result and never stops the batch.

package batch

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/wordlebot/internal/driver"
	"github.com/robalobadob/wordlebot/internal/game"
)

// SourceFactory returns a fresh guess source for one target.
type SourceFactory func(target string) driver.GuessSource

// Recorder persists finished results. Recording errors are logged only.
type Recorder interface {
	RecordResult(ctx context.Context, runID string, r Result) error
}

// Options configures Run.
type Options struct {
	RunID     string
	Workers   int
	NewSource SourceFactory
	Driver    driver.Config
	Game      []game.Option
	Recorder  Recorder
	Logger    *zerolog.Logger

	// Transcripts keeps each game's guesser transcript in its Result.
	Transcripts bool
}

// Result is the outcome of one target word.
type Result struct {
	Target       string         `json:"target"`
	State        game.State     `json:"state"`
	AttemptCount int            `json:"attemptCount"`
	History      []game.Attempt `json:"history"`
	Rejected     int            `json:"rejected,omitempty"`
	Error        string         `json:"error,omitempty"`
	Elapsed      time.Duration  `json:"elapsedNs"`
	Transcript   []string       `json:"transcript,omitempty"`
}

// Failed reports whether the game ended with an error.
func (r Result) Failed() bool { return r.Error != "" }

// Report lists results in input order.
type Report struct {
	RunID   string   `json:"runId"`
	Results []Result `json:"results"`
}

// Run plays every target and returns once all games have finished or ctx
// is done. Results keep the order of targets.
func Run(ctx context.Context, targets []string, opts Options) Report {
	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}

	rep := Report{RunID: opts.RunID, Results: make([]Result, len(targets))}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			wl := logger.With().Str("target", target).Int("index", i).Logger()
			r := playOne(gctx, target, opts, wl)
			if r.Failed() {
				wl.Warn().Str("error", r.Error).Msg("game failed")
			}
			if opts.Recorder != nil {
				if err := opts.Recorder.RecordResult(gctx, opts.RunID, r); err != nil {
					wl.Warn().Err(err).Msg("record result")
				}
			}
			rep.Results[i] = r
			return nil
		})
	}
	_ = g.Wait()
	return rep
}

func playOne(ctx context.Context, target string, opts Options, logger zerolog.Logger) Result {
	start := time.Now()
	r := Result{Target: target}

	ctrl, err := game.New(target, opts.Game...)
	if err != nil {
		r.Error = err.Error()
		r.Elapsed = time.Since(start)
		return r
	}
	var src driver.GuessSource
	if opts.NewSource != nil {
		src = opts.NewSource(ctrl.Snapshot().Target)
	}
	if src == nil {
		r.Error = "batch: no guess source"
		r.State = ctrl.State()
		r.Elapsed = time.Since(start)
		return r
	}

	dopts := []driver.Option{driver.WithLogger(logger)}
	var tr *driver.Transcript
	if opts.Transcripts {
		tr = driver.NewTranscript()
		dopts = append(dopts, driver.WithObserver(tr))
	}
	out, err := driver.New(src, opts.Driver, dopts...).Play(ctx, ctrl)
	if tr != nil {
		r.Transcript = tr.Messages()
	}
	r.State = out.State
	r.AttemptCount = out.AttemptCount
	r.History = out.History
	r.Rejected = out.Rejected
	if err != nil {
		r.Error = err.Error()
	}
	r.Elapsed = time.Since(start)
	return r
}

// Summary aggregates a report.
type Summary struct {
	Games        int     `json:"games"`
	Succeeded    int     `json:"succeeded"`
	Exhausted    int     `json:"exhausted"`
	Errored      int     `json:"errored"`
	MeanAttempts float64 `json:"meanAttempts"` // over succeeded games
}

// Summary computes totals over all results.
func (r Report) Summary() Summary {
	won := lo.Filter(r.Results, func(x Result, _ int) bool { return x.State == game.Succeeded && !x.Failed() })
	s := Summary{
		Games:     len(r.Results),
		Succeeded: len(won),
		Exhausted: lo.CountBy(r.Results, func(x Result) bool { return x.State == game.Exhausted && !x.Failed() }),
		Errored:   lo.CountBy(r.Results, func(x Result) bool { return x.Failed() }),
	}
	if len(won) > 0 {
		total := lo.SumBy(won, func(x Result) int { return x.AttemptCount })
		s.MeanAttempts = float64(total) / float64(len(won))
	}
	return s
}

// WriteJSON writes the report and its summary as indented JSON.
func (r Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Report
		Summary Summary `json:"summary"`
	}{r, r.Summary()})
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, runID string, r Result) error

func (f RecorderFunc) RecordResult(ctx context.Context, runID string, r Result) error {
	return f(ctx, runID, r)
}
