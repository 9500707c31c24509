package notifier

import (
	"context"
	"errors"
	"testing"

	"matchserver/internal/matcherrors"
	"matchserver/internal/session"
)

func TestNotifyDelivered(t *testing.T) {
	ctx := context.Background()
	sessions := session.NewFake()
	_ = sessions.Open(ctx, "ep-1", "alice")
	pusher := NewFakePusher()
	n := New(sessions, pusher)

	if err := n.Notify(ctx, "alice", map[string]string{"action": "game_matched"}); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(pusher.Sent) != 1 || pusher.Sent[0].Endpoint != "ep-1" {
		t.Fatalf("unexpected sends: %+v", pusher.Sent)
	}
}

func TestNotifyNotConnected(t *testing.T) {
	ctx := context.Background()
	sessions := session.NewFake()
	pusher := NewFakePusher()
	n := New(sessions, pusher)

	err := n.Notify(ctx, "alice", "payload")
	if !matcherrors.Is(err, matcherrors.KindNotConnected) {
		t.Fatalf("got %v, want KindNotConnected", err)
	}
	if len(pusher.Sent) != 0 {
		t.Fatalf("expected no send attempt, got %d", len(pusher.Sent))
	}
}

func TestNotifyGoneDropsBinding(t *testing.T) {
	ctx := context.Background()
	sessions := session.NewFake()
	_ = sessions.Open(ctx, "ep-1", "alice")
	pusher := NewFakePusher()
	pusher.Refuse["ep-1"] = true
	n := New(sessions, pusher)

	err := n.Notify(ctx, "alice", "payload")
	if !matcherrors.Is(err, matcherrors.KindGone) {
		t.Fatalf("got %v, want KindGone", err)
	}
	if _, ok, _ := sessions.Lookup(ctx, "alice"); ok {
		t.Fatal("expected stale binding to be dropped on Gone")
	}
}

func TestNotifyTransientOnPushError(t *testing.T) {
	ctx := context.Background()
	sessions := session.NewFake()
	_ = sessions.Open(ctx, "ep-1", "alice")
	pusher := NewFakePusher()
	pusher.ErrFor["ep-1"] = errors.New("connection reset")
	n := New(sessions, pusher)

	err := n.Notify(ctx, "alice", "payload")
	if !matcherrors.Is(err, matcherrors.KindTransient) {
		t.Fatalf("got %v, want KindTransient", err)
	}
}
