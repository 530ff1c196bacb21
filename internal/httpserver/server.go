// internal/httpserver/server.go
//
// HTTP surface for remote guessers.
// Responsibilities:
//   - Router + middleware (JSON, request IDs, panic recovery, timeouts,
//     per-client rate limit, request logging).
//   - Public endpoints: "/health", "/leaderboard".
//   - Player registration and token issue: /auth/register, /auth/token.
//   - Game endpoints (optional auth): POST /game/new, POST /game/guess,
//     GET /game/{id}.
//
// Each game lives in the session store while it is being played; guesses
// on one game are serialized through its Session. A finished game is written
// to the database (when one is configured) and dropped from the store, so
// later reads are served from its record. A janitor started by Start sweeps
// abandoned sessions and idle rate-limit buckets.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordlebot/internal/auth"
	"github.com/robalobadob/wordlebot/internal/game"
	"github.com/robalobadob/wordlebot/internal/storage"
	"github.com/robalobadob/wordlebot/internal/store"
	"github.com/robalobadob/wordlebot/internal/words"
)

// Options tunes the server.
type Options struct {
	AttemptLimit   bool
	MaxAttempts    int
	DailySalt      string
	RateLimitRPS   int // <=0 disables rate limiting
	RateLimitBurst int
	SessionTTL     time.Duration // unfinished games older than this are dropped; <=0 uses 24h
	Logger         *zerolog.Logger
}

const (
	defaultSessionTTL = 24 * time.Hour
	limiterIdle       = 10 * time.Minute
)

// Server bundles router, session store, database and token issuer.
type Server struct {
	r      *chi.Mux
	store   store.Store
	db      *storage.Store // nil: no persistence, no accounts
	issuer  *auth.Issuer
	limiter *clientLimiter // nil when rate limiting is off
	opts    Options
	logger  zerolog.Logger
	now     func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, db *storage.Store, issuer *auth.Issuer, opts Options) *Server {
	s := &Server{r: chi.NewRouter(), store: st, db: db, issuer: issuer, opts: opts, logger: log.Logger, now: time.Now}
	if opts.Logger != nil {
		s.logger = *opts.Logger
	}
	if s.opts.MaxAttempts <= 0 {
		s.opts.MaxAttempts = game.DefaultMaxAttempts
	}
	if s.opts.SessionTTL <= 0 {
		s.opts.SessionTTL = defaultSessionTTL
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(requestLogger(s.logger))
	if opts.RateLimitRPS > 0 {
		s.limiter = newClientLimiter(opts.RateLimitRPS, opts.RateLimitBurst)
		s.r.Use(s.limiter.middleware)
	}

	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "games": s.store.Len()})
	})
	s.r.Get("/leaderboard", s.handleLeaderboard)

	s.r.Post("/auth/register", s.handleRegister)
	s.r.Post("/auth/token", s.handleToken)

	s.r.Route("/game", func(r chi.Router) {
		r.Use(s.withOptionalAuth)
		r.Post("/new", s.handleNewGame)
		r.Post("/guess", s.handleGuess)
		r.Get("/{id}", s.handleGetGame)
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})
	return s
}

// Router exposes the router (useful for tests and http.Server wiring).
func (s *Server) Router() http.Handler { return s.r }

// Start serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	go s.janitor(ctx)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// janitor sweeps on a fixed interval until ctx is done.
func (s *Server) janitor(ctx context.Context) {
	every := min(s.opts.SessionTTL/4, time.Minute)
	if every <= 0 {
		every = time.Second
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.sweep(ctx)
		}
	}
}

// sweep drops sessions older than SessionTTL and forgets idle clients.
func (s *Server) sweep(ctx context.Context) {
	now := s.now()
	if n := s.store.Sweep(ctx, now.Add(-s.opts.SessionTTL)); n > 0 {
		s.logger.Info().Int("sessions", n).Msg("expired abandoned games")
	}
	if s.limiter != nil {
		s.limiter.sweep(now.Add(-limiterIdle))
	}
}

// ------------------------------ GAME ---------------------------------------

type newGameReq struct {
	Answer    string `json:"answer"`    // optional fixed target (testing)
	Unlimited bool   `json:"unlimited"` // disable the attempt budget
	Daily     bool   `json:"daily"`     // play the word of the day
}

type newGameRes struct {
	GameID       string `json:"gameId"`
	MaxAttempts  int    `json:"maxAttempts"`
	AttemptLimit bool   `json:"attemptLimit"`
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}

	target := req.Answer
	switch {
	case target != "":
	case req.Daily:
		target = words.DailyAnswer(s.now(), s.opts.DailySalt)
	default:
		target = words.RandomAnswer()
	}

	limit := s.opts.AttemptLimit && !req.Unlimited
	ctrl, err := game.New(target, game.WithAttemptLimit(limit), game.WithMaxAttempts(s.opts.MaxAttempts))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_answer")
		return
	}
	sess := store.NewSession(ctrl, playerID(r))
	if err := s.store.Save(r.Context(), sess); err != nil {
		s.logger.Error().Err(err).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	s.logger.Debug().Str("gameId", sess.ID).Bool("daily", req.Daily).Msg("game started")
	writeJSON(w, http.StatusOK, newGameRes{GameID: sess.ID, MaxAttempts: s.opts.MaxAttempts, AttemptLimit: limit})
}

type guessReq struct {
	GameID string `json:"gameId"`
	Guess  string `json:"guess"`
}

type feedbackItem struct {
	Position int    `json:"position"`
	Letter   string `json:"letter"`
	Status   string `json:"status"`
}

type guessRes struct {
	Feedback     []feedbackItem `json:"feedback"`
	State        string         `json:"state"`
	AttemptCount int            `json:"attemptCount"`
	Answer       string         `json:"answer,omitempty"` // revealed once the game is over
}

// handleGuess submits one guess. Input is taken verbatim: a lower-case or
// short guess is rejected as malformed, exactly as the controller decides.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	sess, err := s.store.Get(r.Context(), req.GameID)
	if err != nil {
		// Finished games leave the store; their record still answers 409.
		if _, ok := s.finishedGame(w, r, req.GameID); ok {
			writeError(w, http.StatusConflict, "game_over")
		}
		return
	}
	if !ownedBy(sess.PlayerID, r) {
		writeError(w, http.StatusForbidden, "not_your_game")
		return
	}

	var (
		res      game.TurnResult
		snap     game.GameState
		guessErr error
	)
	sess.Do(func(c *game.Controller) {
		res, guessErr = c.SubmitGuess(game.GuessFromWord(strings.TrimSpace(req.Guess)))
		snap = c.Snapshot()
	})

	switch {
	case game.IsMalformed(guessErr):
		writeError(w, http.StatusBadRequest, guessErr.Error())
		return
	case errors.Is(guessErr, game.ErrGameAlreadyOver):
		writeError(w, http.StatusConflict, "game_over")
		return
	case guessErr != nil:
		s.logger.Error().Err(guessErr).Str("gameId", sess.ID).Msg("submit guess")
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}

	out := guessRes{Feedback: toItems(res.Feedback), State: res.State.String(), AttemptCount: snap.AttemptCount}
	if res.State.Terminal() {
		out.Answer = snap.Target
		s.persist(r.Context(), sess, snap)
		_ = s.store.Delete(r.Context(), sess.ID)
	}
	writeJSON(w, http.StatusOK, out)
}

type gameView struct {
	GameID       string        `json:"gameId"`
	State        string        `json:"state"`
	AttemptCount int           `json:"attemptCount"`
	MaxAttempts  int           `json:"maxAttempts"`
	AttemptLimit bool          `json:"attemptLimit"`
	History      []attemptView `json:"history"`
	Answer       string        `json:"answer,omitempty"`
}

type attemptView struct {
	Guess    string         `json:"guess"`
	Feedback []feedbackItem `json:"feedback"`
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.store.Get(r.Context(), id)
	if err != nil {
		if rec, ok := s.finishedGame(w, r, id); ok {
			writeJSON(w, http.StatusOK, recordView(rec))
		}
		return
	}
	if !ownedBy(sess.PlayerID, r) {
		writeError(w, http.StatusForbidden, "not_your_game")
		return
	}
	var snap game.GameState
	sess.Do(func(c *game.Controller) { snap = c.Snapshot() })

	v := gameView{
		GameID:       sess.ID,
		State:        snap.State.String(),
		AttemptCount: snap.AttemptCount,
		MaxAttempts:  snap.MaxAttempts,
		AttemptLimit: snap.AttemptLimitEnabled,
		History:      make([]attemptView, 0, len(snap.History)),
	}
	for _, a := range snap.History {
		v.History = append(v.History, attemptView{Guess: a.Guess.Word(), Feedback: toItems(a.Feedback)})
	}
	if snap.State.Terminal() {
		v.Answer = snap.Target
	}
	writeJSON(w, http.StatusOK, v)
}

// finishedGame looks up a game that has left the session store. It writes
// the 404 or 403 itself and reports whether the caller may use the record.
func (s *Server) finishedGame(w http.ResponseWriter, r *http.Request, id string) (*storage.GameRecord, bool) {
	if s.db == nil || id == "" {
		writeError(w, http.StatusNotFound, "not_found")
		return nil, false
	}
	rec, err := s.db.GameByID(r.Context(), id)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().Err(err).Str("gameId", id).Msg("load finished game")
		}
		writeError(w, http.StatusNotFound, "not_found")
		return nil, false
	}
	if !ownedBy(rec.PlayerID, r) {
		writeError(w, http.StatusForbidden, "not_your_game")
		return nil, false
	}
	return rec, true
}

// recordView rebuilds the snapshot view of a stored game. Feedback is
// recomputed from the target, since only the guesses are stored.
func recordView(rec *storage.GameRecord) gameView {
	v := gameView{
		GameID:       rec.ID,
		State:        rec.State,
		AttemptCount: rec.Attempts,
		MaxAttempts:  rec.MaxAttempts,
		AttemptLimit: rec.AttemptLimit,
		History:      make([]attemptView, 0, len(rec.Guesses)),
		Answer:       rec.Target,
	}
	for _, g := range rec.Guesses {
		fb, err := game.Score(rec.Target, game.GuessFromWord(g))
		if err != nil {
			continue
		}
		v.History = append(v.History, attemptView{Guess: g, Feedback: toItems(fb)})
	}
	return v
}

// persist writes a finished game; failures are logged, never surfaced.
func (s *Server) persist(ctx context.Context, sess *store.Session, snap game.GameState) {
	if s.db == nil {
		return
	}
	guesses := make([]string, len(snap.History))
	for i, a := range snap.History {
		guesses[i] = a.Guess.Word()
	}
	err := s.db.SaveGame(ctx, storage.GameRecord{
		ID:           sess.ID,
		PlayerID:     sess.PlayerID,
		Target:       snap.Target,
		State:        snap.State.String(),
		Attempts:     snap.AttemptCount,
		AttemptLimit: snap.AttemptLimitEnabled,
		MaxAttempts:  snap.MaxAttempts,
		Guesses:      guesses,
		StartedAt:    sess.StartedAt,
		FinishedAt:   s.now().UTC(),
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("gameId", sess.ID).Msg("persist game")
	}
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeJSON(w, http.StatusOK, []storage.LeaderboardRow{})
		return
	}
	rows, err := s.db.Leaderboard(r.Context(), 20)
	if err != nil {
		s.logger.Error().Err(err).Msg("leaderboard")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func toItems(fb game.Feedback) []feedbackItem {
	out := make([]feedbackItem, len(fb))
	for i, lf := range fb {
		out[i] = feedbackItem{Position: lf.Letter.Position, Letter: string(lf.Letter.Char), Status: lf.Status.String()}
	}
	return out
}

// ------------------------------- AUTH --------------------------------------

type credentials struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type tokenRes struct {
	PlayerID  string    `json:"playerId"`
	Name      string    `json:"name"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if s.db == nil || s.issuer == nil {
		writeError(w, http.StatusNotImplemented, "accounts_disabled")
		return
	}
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if err := auth.ValidateRegistration(body.Name, body.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	hash, err := auth.HashPassword(body.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "hash_failed")
		return
	}
	p := storage.Player{ID: uuid.NewString(), Name: body.Name, PasswordHash: hash}
	if err := s.db.CreatePlayer(r.Context(), p); err != nil {
		if errors.Is(err, storage.ErrNameTaken) {
			writeError(w, http.StatusConflict, "name_taken")
			return
		}
		s.logger.Error().Err(err).Msg("create player")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	s.writeToken(w, p.ID, p.Name)
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if s.db == nil || s.issuer == nil {
		writeError(w, http.StatusNotImplemented, "accounts_disabled")
		return
	}
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	p, err := s.db.PlayerByName(r.Context(), strings.TrimSpace(body.Name))
	if err != nil || auth.CheckPassword(p.PasswordHash, body.Password) != nil {
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}
	s.writeToken(w, p.ID, p.Name)
}

func (s *Server) writeToken(w http.ResponseWriter, id, name string) {
	tok, exp, err := s.issuer.Issue(id, name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	writeJSON(w, http.StatusOK, tokenRes{PlayerID: id, Name: name, Token: tok, ExpiresAt: exp})
}

// ctxPlayerKey is the context key for the authenticated player id.
type ctxPlayerKey struct{}

// withOptionalAuth attaches the player id when a valid bearer token is
// present. It never rejects; guests may play.
func (s *Server) withOptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.issuer != nil {
			if tok := auth.BearerToken(r.Header.Get("Authorization")); tok != "" {
				if c, err := s.issuer.Parse(tok); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), ctxPlayerKey{}, c.Subject))
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

func playerID(r *http.Request) string {
	id, _ := r.Context().Value(ctxPlayerKey{}).(string)
	return id
}

// ownedBy reports whether r may act on a game owned by owner. Guest games
// are open to anyone holding the id.
func ownedBy(owner string, r *http.Request) bool {
	return owner == "" || owner == playerID(r)
}

// ------------------------------- small util --------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
