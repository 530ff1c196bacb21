package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/wordlebot/internal/driver"
	"github.com/robalobadob/wordlebot/internal/game"
	"github.com/robalobadob/wordlebot/internal/guesser"
)

var list = []string{"BLAST", "CRANE", "WIDER", "WOMEN", "WIDEN", "ALLOY", "LLAMA"}

func solverFactory(string) driver.GuessSource { return guesser.NewSolver(list, 0) }

func nop() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

type memRecorder struct {
	mu   sync.Mutex
	seen []string
}

func (m *memRecorder) RecordResult(_ context.Context, runID string, r Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen = append(m.seen, runID+":"+r.Target)
	if r.Target == "ALLOY" {
		return errors.New("disk full")
	}
	return nil
}

func TestRunKeepsOrderAndContinuesPastErrors(t *testing.T) {
	rec := &memRecorder{}
	targets := []string{"WIDEN", "BAD", "ALLOY", "LLAMA"}
	rep := Run(context.Background(), targets, Options{
		RunID:     "r1",
		Workers:   3,
		NewSource: solverFactory,
		Recorder:  rec,
		Logger:    nop(),
	})

	require.Len(t, rep.Results, len(targets))
	for i, tgt := range targets {
		require.Equal(t, tgt, rep.Results[i].Target)
	}
	require.Equal(t, game.Succeeded, rep.Results[0].State)
	require.True(t, rep.Results[1].Failed())
	require.Contains(t, rep.Results[1].Error, "target")
	require.Equal(t, game.Succeeded, rep.Results[2].State)
	require.Equal(t, game.Succeeded, rep.Results[3].State)
	require.Len(t, rec.seen, 4)

	s := rep.Summary()
	require.Equal(t, 4, s.Games)
	require.Equal(t, 3, s.Succeeded)
	require.Equal(t, 1, s.Errored)
	require.Greater(t, s.MeanAttempts, 0.0)
}

func TestRunExhaustion(t *testing.T) {
	rep := Run(context.Background(), []string{"WIDEN"}, Options{
		NewSource: func(string) driver.GuessSource {
			return driver.GuessSourceFunc(func(context.Context, []game.Attempt) (game.Guess, error) {
				return game.GuessFromWord("BLAST"), nil
			})
		},
		Logger: nop(),
	})
	r := rep.Results[0]
	require.Equal(t, game.Exhausted, r.State)
	require.Equal(t, 6, r.AttemptCount)
	require.Len(t, r.History, 6)
	require.False(t, r.Failed())
	require.Equal(t, 1, rep.Summary().Exhausted)
}

func TestRunSourceFailureIsPerWord(t *testing.T) {
	rep := Run(context.Background(), []string{"WIDEN", "ALLOY"}, Options{
		NewSource: func(target string) driver.GuessSource {
			if target == "WIDEN" {
				return guesser.NewScripted()
			}
			return guesser.NewSolver(list, 0)
		},
		Driver: driver.Config{MaxSourceFailures: 1},
		Logger: nop(),
	})
	require.True(t, rep.Results[0].Failed())
	require.Equal(t, game.AwaitingGuess, rep.Results[0].State)
	require.Zero(t, rep.Results[0].AttemptCount)
	require.Equal(t, game.Succeeded, rep.Results[1].State)
}

func TestRunWithoutSource(t *testing.T) {
	rep := Run(context.Background(), []string{"WIDEN"}, Options{Logger: nop()})
	require.True(t, rep.Results[0].Failed())
}

func TestWriteJSON(t *testing.T) {
	rep := Run(context.Background(), []string{"WIDEN"}, Options{NewSource: solverFactory, Logger: nop()})
	var buf bytes.Buffer
	require.NoError(t, rep.WriteJSON(&buf))

	var decoded struct {
		Results []struct {
			Target string `json:"target"`
			State  string `json:"state"`
		} `json:"results"`
		Summary Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, "WIDEN", decoded.Results[0].Target)
	require.Equal(t, "SUCCEEDED", decoded.Results[0].State)
	require.Equal(t, 1, decoded.Summary.Succeeded)
}

func TestRunKeepsTranscripts(t *testing.T) {
	script := func(string) driver.GuessSource { return guesser.NewScripted("wide", "BLAST", "WIDEN") }

	rep := Run(context.Background(), []string{"WIDEN"}, Options{NewSource: script, Logger: nop()})
	require.Nil(t, rep.Results[0].Transcript)

	rep = Run(context.Background(), []string{"WIDEN"}, Options{NewSource: script, Logger: nop(), Transcripts: true})
	tr := rep.Results[0].Transcript
	require.Equal(t, game.Succeeded, rep.Results[0].State)
	require.Len(t, tr, 5)
	require.True(t, strings.HasPrefix(tr[0], "Rejected "))
	require.Equal(t, "Attempt 0: BLAST", tr[1])
	require.Equal(t, "Attempt 1: WIDEN", tr[3])
	require.Contains(t, tr[4], "Position 0: W is green")

	var buf bytes.Buffer
	require.NoError(t, rep.WriteJSON(&buf))
	require.Contains(t, buf.String(), `"transcript"`)
}
