// Package queueindex implements the Queue Index (C1): a partitioned,
// bucket-keyed table of waiting players and the Game table, backed by
// PostgreSQL. The ordered change feed of insertions is in changestream.
package queueindex

import "time"

// Status is a QueueEntry's lifecycle state. It transitions strictly
// Waiting -> Matched; there is no reverse transition.
type Status string

const (
	Waiting Status = "waiting"
	Matched Status = "matched"
)

// Entry is one row per waiting player per time control, keyed by
// (BucketKey, PlayerID).
type Entry struct {
	BucketKey   string
	PlayerID    string
	TimeControl string
	Rating      int
	JoinedAt    time.Time
	Status      Status
	MatchedAt   *time.Time
}

// Game is one row per pairing, created exclusively by PairTxn.
type Game struct {
	GameID        string
	WhitePlayerID string
	BlackPlayerID string
	TimeControl   string
	Status        string
	CreatedAt     time.Time
}
