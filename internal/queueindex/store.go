package queueindex

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"matchserver/internal/matcherrors"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS queue_entries (
	bucket_key   TEXT NOT NULL,
	player_id    TEXT NOT NULL,
	time_control TEXT NOT NULL,
	rating       INT  NOT NULL,
	joined_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	status       TEXT NOT NULL DEFAULT 'waiting',
	matched_at   TIMESTAMPTZ,
	PRIMARY KEY (bucket_key, player_id)
);
CREATE INDEX IF NOT EXISTS idx_queue_entries_bucket_waiting
	ON queue_entries(bucket_key) WHERE status = 'waiting';

CREATE TABLE IF NOT EXISTS games (
	game_id         TEXT PRIMARY KEY,
	white_player_id TEXT NOT NULL,
	black_player_id TEXT NOT NULL,
	time_control    TEXT NOT NULL,
	status          TEXT NOT NULL DEFAULT 'active',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// PGStore is the PostgreSQL-backed Store implementation.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore connects to Postgres and ensures the queue_entries and games
// tables exist.
func NewPGStore(ctx context.Context, databaseURL string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, err
	}
	slog.Info("connected to Postgres", "tag", "queueindex")
	return &PGStore{pool: pool}, nil
}

func (s *PGStore) Close() {
	s.pool.Close()
}

// Put inserts entry if (bucket_key, player_id) is not already present.
func (s *PGStore) Put(ctx context.Context, entry Entry) error {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO queue_entries (bucket_key, player_id, time_control, rating, joined_at, status)
		VALUES ($1, $2, $3, $4, $5, 'waiting')
		ON CONFLICT (bucket_key, player_id) DO NOTHING
	`, entry.BucketKey, entry.PlayerID, entry.TimeControl, entry.Rating, entry.JoinedAt)
	if err != nil {
		return matcherrors.New(matcherrors.KindIndexWriteFailed, err)
	}
	if tag.RowsAffected() == 0 {
		return matcherrors.New(matcherrors.KindAlreadyQueued, nil)
	}
	return nil
}

// Delete removes the entry for (bucketKey, playerID), waiting or matched.
// Idempotent.
func (s *PGStore) Delete(ctx context.Context, bucketKey, playerID string) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM queue_entries WHERE bucket_key = $1 AND player_id = $2
	`, bucketKey, playerID)
	if err != nil {
		return matcherrors.New(matcherrors.KindIndexWriteFailed, err)
	}
	return nil
}

// ScanBucket returns all waiting entries in bucketKey.
func (s *PGStore) ScanBucket(ctx context.Context, bucketKey string) ([]Entry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT bucket_key, player_id, time_control, rating, joined_at, status, matched_at
		FROM queue_entries
		WHERE bucket_key = $1 AND status = 'waiting'
	`, bucketKey)
	if err != nil {
		return nil, matcherrors.New(matcherrors.KindTransient, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var status string
		if err := rows.Scan(&e.BucketKey, &e.PlayerID, &e.TimeControl, &e.Rating, &e.JoinedAt, &status, &e.MatchedAt); err != nil {
			return nil, matcherrors.New(matcherrors.KindTransient, err)
		}
		e.Status = Status(status)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, matcherrors.New(matcherrors.KindTransient, err)
	}
	return entries, nil
}

// PairTxn atomically transitions waiterA and waiterB to matched and inserts
// game. Any condition miss rolls back the whole transaction and is reported
// as KindConflictingWaiter (a waiter was no longer waiting) or KindTransient
// (infra failure).
func (s *PGStore) PairTxn(ctx context.Context, waiterA, waiterB Entry, game Game) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return matcherrors.New(matcherrors.KindTransient, err)
	}
	defer tx.Rollback(ctx)

	for _, w := range []Entry{waiterA, waiterB} {
		tag, err := tx.Exec(ctx, `
			UPDATE queue_entries
			SET status = 'matched', matched_at = now()
			WHERE bucket_key = $1 AND player_id = $2
			  AND status = 'waiting' AND matched_at IS NULL
		`, w.BucketKey, w.PlayerID)
		if err != nil {
			return matcherrors.New(matcherrors.KindTransient, err)
		}
		if tag.RowsAffected() == 0 {
			return matcherrors.New(matcherrors.KindConflictingWaiter, nil)
		}
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO games (game_id, white_player_id, black_player_id, time_control, status, created_at)
		VALUES ($1, $2, $3, $4, 'active', $5)
		ON CONFLICT (game_id) DO NOTHING
	`, game.GameID, game.WhitePlayerID, game.BlackPlayerID, game.TimeControl, game.CreatedAt)
	if err != nil {
		return matcherrors.New(matcherrors.KindTransient, err)
	}
	if tag.RowsAffected() == 0 {
		return matcherrors.New(matcherrors.KindConflictingWaiter, nil)
	}

	if err := tx.Commit(ctx); err != nil {
		return matcherrors.New(matcherrors.KindTransient, err)
	}
	return nil
}

var _ Store = (*PGStore)(nil)
