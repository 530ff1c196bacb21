package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000Z"

// GameRecord is a finished (or abandoned) game.
type GameRecord struct {
	ID           string    `json:"id"`
	PlayerID     string    `json:"playerId,omitempty"`
	RunID        string    `json:"runId,omitempty"`
	Target       string    `json:"target"`
	State        string    `json:"state"`
	Attempts     int       `json:"attempts"`
	AttemptLimit bool      `json:"attemptLimit"`
	MaxAttempts  int       `json:"maxAttempts"`
	Guesses      []string  `json:"guesses"`
	Error        string    `json:"error,omitempty"`
	StartedAt    time.Time `json:"startedAt"`
	FinishedAt   time.Time `json:"finishedAt"`
}

// SaveGame inserts or replaces a game row.
func (s *Store) SaveGame(ctx context.Context, g GameRecord) error {
	if g.FinishedAt.IsZero() {
		g.FinishedAt = time.Now().UTC()
	}
	if g.StartedAt.IsZero() {
		g.StartedAt = g.FinishedAt
	}
	if g.MaxAttempts <= 0 {
		g.MaxAttempts = 6
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT OR REPLACE INTO games
            (id, player_id, run_id, target, state, attempts, attempt_limit, max_attempts, guesses, error, started_at, finished_at)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		g.ID, nullable(g.PlayerID), nullable(g.RunID), g.Target, g.State, g.Attempts,
		g.AttemptLimit, g.MaxAttempts, strings.Join(g.Guesses, ","), g.Error,
		g.StartedAt.UTC().Format(timeLayout), g.FinishedAt.UTC().Format(timeLayout),
	)
	return err
}

// GameByID returns one stored game or ErrNotFound.
func (s *Store) GameByID(ctx context.Context, id string) (*GameRecord, error) {
	games, err := s.queryGames(ctx, `WHERE id=? LIMIT ?`, id, 1)
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, ErrNotFound
	}
	return &games[0], nil
}

// RecentGames returns a player's latest games, newest first.
func (s *Store) RecentGames(ctx context.Context, playerID string, limit int) ([]GameRecord, error) {
	return s.queryGames(ctx, `WHERE player_id=? ORDER BY finished_at DESC LIMIT ?`, playerID, clampLimit(limit))
}

// RunGames returns every game of a batch run in insertion order.
func (s *Store) RunGames(ctx context.Context, runID string) ([]GameRecord, error) {
	return s.queryGames(ctx, `WHERE run_id=? ORDER BY rowid ASC LIMIT ?`, runID, -1)
}

func (s *Store) queryGames(ctx context.Context, where string, args ...any) ([]GameRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, COALESCE(player_id,''), COALESCE(run_id,''), target, state, attempts,
               attempt_limit, max_attempts, guesses, error, started_at, finished_at
        FROM games `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []GameRecord{}
	for rows.Next() {
		var g GameRecord
		var guesses, started, finished string
		if err := rows.Scan(&g.ID, &g.PlayerID, &g.RunID, &g.Target, &g.State, &g.Attempts,
			&g.AttemptLimit, &g.MaxAttempts, &guesses, &g.Error, &started, &finished); err != nil {
			return nil, err
		}
		if guesses != "" {
			g.Guesses = strings.Split(guesses, ",")
		}
		g.StartedAt, _ = time.Parse(timeLayout, started)
		g.FinishedAt, _ = time.Parse(timeLayout, finished)
		out = append(out, g)
	}
	return out, rows.Err()
}

// LeaderboardRow aggregates one player's games.
type LeaderboardRow struct {
	PlayerID     string  `json:"playerId"`
	Name         string  `json:"name"`
	Games        int     `json:"games"`
	Wins         int     `json:"wins"`
	MeanAttempts float64 `json:"meanAttempts"` // over wins
}

// Leaderboard ranks players by wins, then by fewest mean attempts per win.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT p.id, p.name, COUNT(g.id),
               SUM(CASE WHEN g.state='SUCCEEDED' THEN 1 ELSE 0 END),
               COALESCE(AVG(CASE WHEN g.state='SUCCEEDED' THEN g.attempts END), 0)
        FROM players p JOIN games g ON g.player_id = p.id
        GROUP BY p.id, p.name
        ORDER BY 4 DESC, 5 ASC, p.name ASC
        LIMIT ?`, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []LeaderboardRow{}
	for rows.Next() {
		var r LeaderboardRow
		if err := rows.Scan(&r.PlayerID, &r.Name, &r.Games, &r.Wins, &r.MeanAttempts); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func clampLimit(n int) int {
	if n <= 0 || n > 100 {
		return 20
	}
	return n
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
