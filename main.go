// Command wordlebot plays the word-guessing game.
//
//	wordlebot play  [-target WORD] [-guesses A,B,...] [-solver] [-unlimited] [-transcript]
//	wordlebot batch [-in targets.txt] [-out report.json] [-record] [-transcripts]
//	wordlebot serve
//
// Configuration comes from the environment (and .env); see internal/config.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordlebot/internal/auth"
	"github.com/robalobadob/wordlebot/internal/batch"
	"github.com/robalobadob/wordlebot/internal/config"
	"github.com/robalobadob/wordlebot/internal/driver"
	"github.com/robalobadob/wordlebot/internal/game"
	"github.com/robalobadob/wordlebot/internal/guesser"
	"github.com/robalobadob/wordlebot/internal/httpserver"
	"github.com/robalobadob/wordlebot/internal/storage"
	"github.com/robalobadob/wordlebot/internal/store"
	"github.com/robalobadob/wordlebot/internal/words"
)

const usage = "usage: wordlebot <play|batch|serve> [flags]"

func main() {
	cfg := config.Load()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err := words.Init(cfg.WordsAnswersFile, cfg.WordsAllowedFile); err != nil {
		log.Fatal().Err(err).Msg("failed to load word lists")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "play":
		err = runPlay(ctx, cfg, os.Args[2:])
	case "batch":
		err = runBatch(ctx, cfg, os.Args[2:])
	case "serve":
		err = runServe(ctx, cfg)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", os.Args[1]).Msg("command failed")
	}
}

func driverConfig(cfg config.Config) driver.Config {
	return driver.Config{
		MaxIterations:     cfg.MaxIterations,
		GuessTimeout:      cfg.GuessTimeout,
		MaxSourceFailures: cfg.MaxSourceFailures,
	}
}

func gameOptions(cfg config.Config, unlimited bool) []game.Option {
	return []game.Option{
		game.WithAttemptLimit(cfg.AttemptLimit && !unlimited),
		game.WithMaxAttempts(cfg.MaxAttempts),
	}
}

// runPlay plays one game against a solver, a scripted list or stdin.
func runPlay(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	target := fs.String("target", "", "target word (default: random answer)")
	daily := fs.Bool("daily", false, "play the word of the day")
	script := fs.String("guesses", "", "comma-separated guesses to replay")
	solver := fs.Bool("solver", false, "let the built-in solver play")
	seed := fs.Uint64("seed", 0, "solver seed (0 = deterministic)")
	unlimited := fs.Bool("unlimited", false, "disable the attempt budget")
	transcript := fs.Bool("transcript", false, "print the full guesser transcript to stderr when done")
	_ = fs.Parse(args)

	word := *target
	switch {
	case word != "":
	case *daily:
		word = words.DailyAnswer(time.Now(), cfg.DailySalt)
	default:
		word = words.RandomAnswer()
	}
	ctrl, err := game.New(word, gameOptions(cfg, *unlimited)...)
	if err != nil {
		return err
	}

	var src driver.GuessSource
	switch {
	case *script != "":
		src = guesser.NewScripted(strings.Split(*script, ",")...)
	case *solver:
		src = guesser.NewSolver(words.Allowed(), *seed)
	default:
		src = guesser.NewPrompt(os.Stdin, os.Stdout)
	}

	tr := driver.NewTranscript(fmt.Sprintf("New game: %d letters, target hidden.", game.WordLength))
	dcfg := driverConfig(cfg)
	if _, interactive := src.(*guesser.Prompt); interactive {
		dcfg.GuessTimeout = -1
	}
	d := driver.New(src, dcfg,
		driver.WithObserver(tr),
		driver.WithObserver(driver.ObserverFunc(func(t game.Turn) {
			fmt.Println(driver.FormatFeedback(t.AttemptCount-1, t.Feedback))
		})),
	)
	out, err := d.Play(ctx, ctrl)
	fmt.Printf("%s after %d attempt(s); target was %s\n", out.State, out.AttemptCount, ctrl.Snapshot().Target)
	if *transcript {
		if _, werr := tr.WriteTo(os.Stderr); werr != nil {
			log.Warn().Err(werr).Msg("write transcript")
		}
	}
	return err
}

// runBatch plays one game per target line and writes a JSON report.
func runBatch(ctx context.Context, cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	in := fs.String("in", "-", "targets file, one word per line (- for stdin)")
	outPath := fs.String("out", "-", "report file (- for stdout)")
	record := fs.Bool("record", false, "store results in the database")
	seed := fs.Uint64("seed", 0, "solver seed (0 = deterministic)")
	unlimited := fs.Bool("unlimited", false, "disable the attempt budget")
	transcripts := fs.Bool("transcripts", false, "include each game's transcript in the report")
	_ = fs.Parse(args)

	var r io.Reader = os.Stdin
	if *in != "-" {
		f, err := os.Open(*in)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	targets, err := words.ReadTargets(r)
	if err != nil {
		return fmt.Errorf("read targets: %w", err)
	}

	opts := batch.Options{
		RunID:   uuid.NewString(),
		Workers: cfg.BatchWorkers,
		NewSource: func(string) driver.GuessSource {
			return guesser.NewSolver(words.Allowed(), *seed)
		},
		Driver:      driverConfig(cfg),
		Game:        gameOptions(cfg, *unlimited),
		Transcripts: *transcripts,
	}
	if *record {
		db, err := storage.Open(ctx, cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()
		opts.Recorder = recorder(db, *unlimited || !cfg.AttemptLimit, cfg.MaxAttempts)
	}

	log.Info().Str("runId", opts.RunID).Int("targets", len(targets)).Msg("starting batch")
	rep := batch.Run(ctx, targets, opts)
	sum := rep.Summary()
	log.Info().
		Int("succeeded", sum.Succeeded).
		Int("exhausted", sum.Exhausted).
		Int("errored", sum.Errored).
		Float64("meanAttempts", sum.MeanAttempts).
		Msg("batch complete")

	var w io.Writer = os.Stdout
	if *outPath != "-" {
		f, err := os.Create(*outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return rep.WriteJSON(w)
}

// recorder stores batch results as game rows tagged with the run id.
func recorder(db *storage.Store, unlimited bool, maxAttempts int) batch.Recorder {
	return batch.RecorderFunc(func(ctx context.Context, runID string, r batch.Result) error {
		guesses := make([]string, len(r.History))
		for i, a := range r.History {
			guesses[i] = a.Guess.Word()
		}
		now := time.Now().UTC()
		return db.SaveGame(ctx, storage.GameRecord{
			ID:           uuid.NewString(),
			RunID:        runID,
			Target:       r.Target,
			State:        r.State.String(),
			Attempts:     r.AttemptCount,
			AttemptLimit: !unlimited,
			MaxAttempts:  maxAttempts,
			Guesses:      guesses,
			Error:        r.Error,
			StartedAt:    now.Add(-r.Elapsed),
			FinishedAt:   now,
		})
	})
}

// runServe starts the HTTP surface.
func runServe(ctx context.Context, cfg config.Config) error {
	db, err := storage.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	srv := httpserver.New(store.NewMemoryStore(), db,
		auth.NewIssuer(cfg.JWTSecret, time.Duration(cfg.JWTExpiresDays)*24*time.Hour),
		httpserver.Options{
			AttemptLimit:   cfg.AttemptLimit,
			MaxAttempts:    cfg.MaxAttempts,
			DailySalt:      cfg.DailySalt,
			RateLimitRPS:   cfg.RateLimitRPS,
			RateLimitBurst: cfg.RateLimitBurst,
			SessionTTL:     cfg.SessionTTL,
		})
	a, g := words.Stats()
	log.Info().Str("port", cfg.Port).Int("answers", a).Int("allowed", g).Msg("starting wordlebot server")
	if err := srv.Start(ctx, ":"+cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
