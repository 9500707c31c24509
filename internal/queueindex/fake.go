package queueindex

import (
	"context"
	"sync"

	"matchserver/internal/matcherrors"
)

// Fake is an in-memory Store used by tests for the Matcher and Admission
// Gateway, so their unit tests don't need a live Postgres instance.
type Fake struct {
	mu      sync.Mutex
	entries map[string]Entry // key: bucket_key + "\x00" + player_id
	games   map[string]Game
}

// NewFake returns an empty in-memory Store.
func NewFake() *Fake {
	return &Fake{
		entries: make(map[string]Entry),
		games:   make(map[string]Game),
	}
}

func entryKey(bucketKey, playerID string) string {
	return bucketKey + "\x00" + playerID
}

func (f *Fake) Put(ctx context.Context, entry Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := entryKey(entry.BucketKey, entry.PlayerID)
	if _, ok := f.entries[k]; ok {
		return matcherrors.New(matcherrors.KindAlreadyQueued, nil)
	}
	entry.Status = Waiting
	entry.MatchedAt = nil
	f.entries[k] = entry
	return nil
}

func (f *Fake) Delete(ctx context.Context, bucketKey, playerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, entryKey(bucketKey, playerID))
	return nil
}

func (f *Fake) ScanBucket(ctx context.Context, bucketKey string) ([]Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Entry
	for _, e := range f.entries {
		if e.BucketKey == bucketKey && e.Status == Waiting {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *Fake) PairTxn(ctx context.Context, waiterA, waiterB Entry, game Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	ka, kb := entryKey(waiterA.BucketKey, waiterA.PlayerID), entryKey(waiterB.BucketKey, waiterB.PlayerID)
	ea, okA := f.entries[ka]
	eb, okB := f.entries[kb]
	if !okA || ea.Status != Waiting || ea.MatchedAt != nil {
		return matcherrors.New(matcherrors.KindConflictingWaiter, nil)
	}
	if !okB || eb.Status != Waiting || eb.MatchedAt != nil {
		return matcherrors.New(matcherrors.KindConflictingWaiter, nil)
	}
	if _, exists := f.games[game.GameID]; exists {
		return matcherrors.New(matcherrors.KindConflictingWaiter, nil)
	}

	ea.Status = Matched
	eb.Status = Matched
	f.entries[ka] = ea
	f.entries[kb] = eb
	f.games[game.GameID] = game
	return nil
}

// Entry exposes a snapshot read for assertions in tests.
func (f *Fake) Entry(bucketKey, playerID string) (Entry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[entryKey(bucketKey, playerID)]
	return e, ok
}

// Game exposes a snapshot read for assertions in tests.
func (f *Fake) Game(gameID string) (Game, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.games[gameID]
	return g, ok
}

func (f *Fake) Close() {}

var _ Store = (*Fake)(nil)
