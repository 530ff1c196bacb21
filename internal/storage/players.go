package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("storage: not found")
	// ErrNameTaken is returned by CreatePlayer for a duplicate name.
	ErrNameTaken = errors.New("storage: name taken")
)

// Player is a registered guesser.
type Player struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CreatePlayer inserts p. Names are unique regardless of case.
func (s *Store) CreatePlayer(ctx context.Context, p Player) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO players (id, name, password_hash, created_at) VALUES (?,?,?,?)`,
		p.ID, p.Name, p.PasswordHash, p.CreatedAt.UTC().Format(time.RFC3339))
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return ErrNameTaken
	}
	return err
}

// PlayerByName looks a player up by case-insensitive name.
func (s *Store) PlayerByName(ctx context.Context, name string) (*Player, error) {
	return scanPlayer(s.db.QueryRowContext(ctx,
		`SELECT id, name, password_hash, created_at FROM players WHERE name=?`, name))
}

// PlayerByID looks a player up by ID.
func (s *Store) PlayerByID(ctx context.Context, id string) (*Player, error) {
	return scanPlayer(s.db.QueryRowContext(ctx,
		`SELECT id, name, password_hash, created_at FROM players WHERE id=?`, id))
}

func scanPlayer(row *sql.Row) (*Player, error) {
	var p Player
	var created string
	if err := row.Scan(&p.ID, &p.Name, &p.PasswordHash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &p, nil
}
