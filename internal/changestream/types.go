// Package changestream implements the Queue Index's ordered change feed on
// top of Redis Streams. Each bucket key hashes to one of N shard streams;
// the Matcher holds one consumer group member per shard, giving FIFO
// delivery per shard and at-least-once redelivery for stuck entries.
package changestream

import "context"

// EventKind mirrors the three DynamoDB-style stream event kinds the Matcher
// cares about. Only Insert events carry waiters into the matching loop;
// Modify and Remove are recorded for completeness but otherwise ignored.
type EventKind string

const (
	Insert EventKind = "INSERT"
	Modify EventKind = "MODIFY"
	Remove EventKind = "REMOVE"
)

// Event is one change-stream record: a waiter insertion, mutation, or
// removal on the Queue Index.
type Event struct {
	ID          string // stream entry id, used to Ack
	Kind        EventKind
	BucketKey   string
	PlayerID    string
	TimeControl string
	Rating      int
}

// Publisher appends events to the shard stream selected by bucket key.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Consumer reads events from one shard in FIFO order, and supports
// acknowledging processed events plus reclaiming ones stuck on a dead
// worker.
type Consumer interface {
	// Read returns the next batch of events on the assigned shard. It may
	// return an empty batch (the Redis consumer after a bounded block, the
	// Fake whenever its queue is empty); callers simply read again.
	Read(ctx context.Context) ([]Event, error)

	// Ack marks ev as fully processed so it will not be redelivered.
	Ack(ctx context.Context, ev Event) error

	// Shard returns the shard index this consumer is bound to.
	Shard() int
}
