// Package profile is the read-only boundary onto player ratings. It is kept
// separate from queueindex to make the "external, read-only" nature of the
// player-profile system explicit: this package never writes.
package profile

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store resolves a player's current rating.
type Store interface {
	// Rating returns playerID's rating, or defaultRating if the player has
	// no row or the lookup fails. Rating never returns an error: per the
	// failure policy, a lookup problem falls back to defaultRating so
	// matchmaking availability never depends on profile-store health.
	Rating(ctx context.Context, playerID string, defaultRating int) int
}

// PGStore reads the rating column of a players table via pgxpool.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore connects to Postgres for read-only rating lookups.
func NewPGStore(ctx context.Context, databaseURL string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	slog.Info("connected to Postgres", "tag", "profile")
	return &PGStore{pool: pool}, nil
}

func (s *PGStore) Close() {
	s.pool.Close()
}

// Rating reads players.rating for playerID, falling back to defaultRating on
// a missing row or any infrastructure failure.
func (s *PGStore) Rating(ctx context.Context, playerID string, defaultRating int) int {
	var rating int
	err := s.pool.QueryRow(ctx, `SELECT rating FROM players WHERE player_id = $1`, playerID).Scan(&rating)
	if err != nil {
		if err != pgx.ErrNoRows {
			slog.Warn("profile lookup failed, falling back to default rating", "tag", "profile", "player_id", playerID, "err", err)
		}
		return defaultRating
	}
	return rating
}

var _ Store = (*PGStore)(nil)
