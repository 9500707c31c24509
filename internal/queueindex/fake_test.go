package queueindex

import (
	"context"
	"testing"
	"time"

	"matchserver/internal/matcherrors"
)

func TestPutRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	store := NewFake()
	entry := Entry{BucketKey: "blitz#1200", PlayerID: "alice", TimeControl: "blitz", Rating: 1200, JoinedAt: time.Now()}

	if err := store.Put(ctx, entry); err != nil {
		t.Fatalf("first Put: %v", err)
	}
	err := store.Put(ctx, entry)
	if !matcherrors.Is(err, matcherrors.KindAlreadyQueued) {
		t.Fatalf("second Put: got %v, want KindAlreadyQueued", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewFake()
	if err := store.Delete(ctx, "blitz#1200", "nobody"); err != nil {
		t.Fatalf("Delete on absent entry: %v", err)
	}

	entry := Entry{BucketKey: "blitz#1200", PlayerID: "alice", TimeControl: "blitz", Rating: 1200, JoinedAt: time.Now()}
	if err := store.Put(ctx, entry); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Delete(ctx, "blitz#1200", "alice"); err != nil {
		t.Fatalf("first Delete: %v", err)
	}
	if err := store.Delete(ctx, "blitz#1200", "alice"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if _, ok := store.Entry("blitz#1200", "alice"); ok {
		t.Fatal("expected entry to be gone after delete")
	}
}

func TestScanBucketExcludesMatched(t *testing.T) {
	ctx := context.Background()
	store := NewFake()
	a := Entry{BucketKey: "blitz#1200", PlayerID: "a", TimeControl: "blitz", Rating: 1200, JoinedAt: time.Now()}
	b := Entry{BucketKey: "blitz#1200", PlayerID: "b", TimeControl: "blitz", Rating: 1205, JoinedAt: time.Now()}
	if err := store.Put(ctx, a); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(ctx, b); err != nil {
		t.Fatal(err)
	}

	game := Game{GameID: "g1", WhitePlayerID: "a", BlackPlayerID: "b", TimeControl: "blitz", CreatedAt: time.Now()}
	if err := store.PairTxn(ctx, a, b, game); err != nil {
		t.Fatalf("PairTxn: %v", err)
	}

	entries, err := store.ScanBucket(ctx, "blitz#1200")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected matched entries excluded from scan, got %d", len(entries))
	}
}

func TestPairTxnConflictingWaiterWhenAlreadyMatched(t *testing.T) {
	ctx := context.Background()
	store := NewFake()
	a := Entry{BucketKey: "blitz#1200", PlayerID: "a", TimeControl: "blitz", Rating: 1200, JoinedAt: time.Now()}
	b := Entry{BucketKey: "blitz#1200", PlayerID: "b", TimeControl: "blitz", Rating: 1205, JoinedAt: time.Now()}
	c := Entry{BucketKey: "blitz#1200", PlayerID: "c", TimeControl: "blitz", Rating: 1210, JoinedAt: time.Now()}
	for _, e := range []Entry{a, b, c} {
		if err := store.Put(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	game1 := Game{GameID: "g1", WhitePlayerID: "a", BlackPlayerID: "b", TimeControl: "blitz", CreatedAt: time.Now()}
	if err := store.PairTxn(ctx, a, b, game1); err != nil {
		t.Fatalf("first PairTxn: %v", err)
	}

	game2 := Game{GameID: "g2", WhitePlayerID: "a", BlackPlayerID: "c", TimeControl: "blitz", CreatedAt: time.Now()}
	err := store.PairTxn(ctx, a, c, game2)
	if !matcherrors.Is(err, matcherrors.KindConflictingWaiter) {
		t.Fatalf("second PairTxn: got %v, want KindConflictingWaiter", err)
	}
	if _, ok := store.Game("g2"); ok {
		t.Fatal("expected conflicting pair_txn not to create a game row")
	}
	cEntry, ok := store.Entry("blitz#1200", "c")
	if !ok || cEntry.Status != Waiting {
		t.Fatalf("expected c to remain waiting after conflicting pair_txn, got %+v ok=%v", cEntry, ok)
	}
}

func TestPairTxnRollsBackWhollyOnConditionMiss(t *testing.T) {
	ctx := context.Background()
	store := NewFake()
	a := Entry{BucketKey: "blitz#1200", PlayerID: "a", TimeControl: "blitz", Rating: 1200, JoinedAt: time.Now()}
	if err := store.Put(ctx, a); err != nil {
		t.Fatal(err)
	}
	missing := Entry{BucketKey: "blitz#1200", PlayerID: "ghost", TimeControl: "blitz", Rating: 1200, JoinedAt: time.Now()}

	game := Game{GameID: "g1", WhitePlayerID: "a", BlackPlayerID: "ghost", TimeControl: "blitz", CreatedAt: time.Now()}
	err := store.PairTxn(ctx, a, missing, game)
	if !matcherrors.Is(err, matcherrors.KindConflictingWaiter) {
		t.Fatalf("got %v, want KindConflictingWaiter", err)
	}

	aEntry, ok := store.Entry("blitz#1200", "a")
	if !ok || aEntry.Status != Waiting {
		t.Fatalf("expected a's entry untouched after rolled-back pair_txn, got %+v ok=%v", aEntry, ok)
	}
	if _, ok := store.Game("g1"); ok {
		t.Fatal("expected no game row after rolled-back pair_txn")
	}
}
