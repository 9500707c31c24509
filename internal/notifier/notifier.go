// Package notifier implements the Notifier (C2): pushing a small JSON
// message to a specific player's live session.
package notifier

import (
	"context"
	"log/slog"

	"matchserver/internal/matcherrors"
	"matchserver/internal/session"
)

// Pusher sends payload to a specific live connection. It is satisfied by the
// ws package's Hub, and is the only part of Notifier that touches the wire.
type Pusher interface {
	// Send attempts one delivery to endpoint. ok is false if the endpoint is
	// stale and should be considered Gone (its binding should be dropped).
	Send(endpoint string, payload any) (ok bool, err error)
}

// Notifier resolves a player's session binding and delivers one payload,
// best-effort. Delivery is at-most-once; a missed notification is not
// retried (the Matcher treats all non-Delivered outcomes as best-effort
// done).
type Notifier struct {
	sessions session.Store
	pusher   Pusher
}

// New builds a Notifier over the given session-binding store and push
// transport.
func New(sessions session.Store, pusher Pusher) *Notifier {
	return &Notifier{sessions: sessions, pusher: pusher}
}

// Notify delivers payload to playerID's active session, if any.
func (n *Notifier) Notify(ctx context.Context, playerID string, payload any) error {
	endpoint, ok, err := n.sessions.Lookup(ctx, playerID)
	if err != nil {
		return matcherrors.New(matcherrors.KindTransient, err)
	}
	if !ok {
		return matcherrors.New(matcherrors.KindNotConnected, nil)
	}

	delivered, err := n.pusher.Send(endpoint, payload)
	if err != nil {
		return matcherrors.New(matcherrors.KindTransient, err)
	}
	if !delivered {
		if err := n.sessions.Close(ctx, endpoint); err != nil {
			slog.Warn("failed to drop stale session binding", "tag", "notifier", "endpoint", endpoint, "err", err)
		}
		return matcherrors.New(matcherrors.KindGone, nil)
	}
	return nil
}
