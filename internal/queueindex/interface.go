package queueindex

import "context"

// Store abstracts the Queue Index's capability set so the Matcher and
// Admission Gateway can be tested against a fake without a live Postgres
// instance. The Postgres-backed implementation in store.go satisfies this.
type Store interface {
	// Put inserts entry if (BucketKey, PlayerID) is not already present.
	// Returns matcherrors.KindAlreadyQueued if it is.
	Put(ctx context.Context, entry Entry) error

	// Delete removes the entry for (bucketKey, playerID) whatever its status.
	// Idempotent: deleting an absent or already-matched entry is not an error.
	Delete(ctx context.Context, bucketKey, playerID string) error

	// ScanBucket returns all entries in bucketKey with status=waiting.
	ScanBucket(ctx context.Context, bucketKey string) ([]Entry, error)

	// PairTxn atomically transitions waiterA and waiterB from waiting to
	// matched and inserts game, or fails wholly. Distinguishes
	// matcherrors.KindConflictingWaiter (one side was no longer waiting) from
	// matcherrors.KindTransient (retryable infra failure).
	PairTxn(ctx context.Context, waiterA, waiterB Entry, game Game) error

	Close()
}
